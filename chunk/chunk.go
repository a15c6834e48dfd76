// Package chunk assembles container chunks from compressed blocks.
//
// A chunk is stored as a run of independently compressed blocks. Each block names its
// method by a 1-based index into the container's method table; index 0 means the block
// is stored uncompressed.
package chunk

import (
	"fmt"

	"github.com/arloliu/iopkg/compress"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/internal/pool"
)

// DefaultBlockSize is the uncompressed size of every block but the last.
const DefaultBlockSize = 64 * 1024

// Block locates one compressed block inside a chunk's stored bytes.
type Block struct {
	Offset           int64
	CompressedSize   uint32
	UncompressedSize uint32
	Method           uint8
}

// Decode decompresses blocks from data into one contiguous buffer.
//
// methods is the container method table; Block.Method indexes it starting at 1.
func Decode(data []byte, blocks []Block, methods []string) ([]byte, error) {
	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	for i, b := range blocks {
		end := b.Offset + int64(b.CompressedSize)
		if b.Offset < 0 || end > int64(len(data)) {
			return nil, fmt.Errorf("%w: block %d spans [%d, %d) of %d bytes", errs.ErrInvalidOffset, i, b.Offset, end, len(data))
		}

		codec, err := codecFor(b.Method, methods)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}

		out, err := codec.Decompress(data[b.Offset:end], int(b.UncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if len(out) != int(b.UncompressedSize) {
			return nil, fmt.Errorf("%w: block %d produced %d bytes, expected %d", errs.ErrDecompressedSize, i, len(out), b.UncompressedSize)
		}
		_, _ = buf.Write(out)
	}

	return buf.Detach(), nil
}

// Encode splits data into blockSize blocks compressed with methods[method-1], or stored
// as is when method is 0. A block that does not shrink is stored uncompressed.
func Encode(data []byte, blockSize int, method uint8, methods []string) ([]byte, []Block, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	codec, err := codecFor(method, methods)
	if err != nil {
		return nil, nil, err
	}

	buf := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(buf)

	blocks := make([]Block, 0, (len(data)+blockSize-1)/blockSize)
	for start := 0; start < len(data); start += blockSize {
		raw := data[start:min(start+blockSize, len(data))]

		stored, m := raw, uint8(0)
		if method != 0 {
			packed, err := codec.Compress(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("block %d: %w", len(blocks), err)
			}
			if len(packed) < len(raw) {
				stored, m = packed, method
			}
		}

		blocks = append(blocks, Block{
			Offset:           int64(buf.Len()),
			CompressedSize:   uint32(len(stored)), //nolint: gosec
			UncompressedSize: uint32(len(raw)),    //nolint: gosec
			Method:           m,
		})
		_, _ = buf.Write(stored)
	}

	return buf.Detach(), blocks, nil
}

// UncompressedSize returns the total decompressed size of blocks.
func UncompressedSize(blocks []Block) int64 {
	var n int64
	for _, b := range blocks {
		n += int64(b.UncompressedSize)
	}

	return n
}

func codecFor(method uint8, methods []string) (compress.Codec, error) {
	if method == 0 {
		return compress.ForMethod(string(compress.MethodNone))
	}
	if int(method) > len(methods) {
		return nil, fmt.Errorf("%w: method index %d, container has %d methods", errs.ErrUnsupportedCompression, method, len(methods))
	}

	return compress.ForMethod(methods[method-1])
}
