// Package compress provides the block codecs used by container chunks and auxiliary
// payload streams.
//
// Containers name their compression methods in a per-container table; each block then
// refers to that table by index. ForMethod maps such a name to a Codec:
//
//	None   stored as is
//	Zlib   zlib-wrapped deflate (klauspost/compress/zlib)
//	Gzip   gzip-framed deflate (klauspost/compress/gzip)
//	LZ4    raw LZ4 block (pierrec/lz4)
//	Zstd   Zstandard frame (klauspost/compress/zstd, or valyala/gozstd with -tags gozstd)
//
// Oodle is recognized but not supported and fails with errs.ErrUnsupportedCompression,
// as does any unknown name.
//
// # Size Hints
//
// Every block records its decompressed size, so Decompress takes it as a hint. With a
// positive hint the output is allocated once and its final length is checked; a
// mismatch fails with errs.ErrDecompressedSize. A hint <= 0 disables the check.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Encoders and decoders
// with internal state are pooled.
package compress
