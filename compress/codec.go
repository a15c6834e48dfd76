package compress

import (
	"fmt"
	"strings"

	"github.com/arloliu/iopkg/errs"
)

// Compressor compresses one block.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one block.
//
// size is the expected decompressed size as recorded by the container, or a value <= 0
// when the caller does not know it. Implementations that can use the hint allocate the
// output exactly once.
//
// Thread Safety: implementations are safe for concurrent use.
type Decompressor interface {
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Method is a compression method name as written in a container's method table.
type Method string

const (
	MethodNone  Method = "None"
	MethodZlib  Method = "Zlib"
	MethodGzip  Method = "Gzip"
	MethodLZ4   Method = "LZ4"
	MethodZstd  Method = "Zstd"
	MethodOodle Method = "Oodle"
)

var builtinCodecs = map[Method]Codec{
	MethodNone: NewNoOpCompressor(),
	MethodZlib: NewZlibCompressor(),
	MethodGzip: NewGzipCompressor(),
	MethodLZ4:  NewLZ4Compressor(),
	MethodZstd: NewZstdCompressor(),
}

// ForMethod returns the built-in codec for a method name, compared case-insensitively.
// An empty name selects MethodNone.
func ForMethod(name string) (Codec, error) {
	if name == "" {
		return builtinCodecs[MethodNone], nil
	}
	for method, codec := range builtinCodecs {
		if strings.EqualFold(string(method), name) {
			return codec, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, name)
}

func checkSize(method Method, got []byte, size int) ([]byte, error) {
	if size > 0 && len(got) != size {
		return nil, fmt.Errorf("%w: %s produced %d bytes, expected %d", errs.ErrDecompressedSize, method, len(got), size)
	}

	return got, nil
}
