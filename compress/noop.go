package compress

// NoOpCompressor stores blocks uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a pass-through codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns a copy of data.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return append([]byte(nil), data...), nil
}

// Decompress returns a copy of data, validating its length against size.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 && size <= 0 {
		return nil, nil
	}

	return checkSize(MethodNone, append([]byte(nil), data...), size)
}
