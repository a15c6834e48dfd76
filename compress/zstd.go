package compress

// ZstdCompressor handles Zstandard frames.
//
// The default build uses the pure Go klauspost/compress implementation with pooled
// encoders and decoders. Building with the gozstd tag switches to the cgo binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
