package names

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/go-faster/city"

	"github.com/arloliu/iopkg/archive"
	"github.com/arloliu/iopkg/errs"
)

const (
	headerSize = 2
	wideFlag   = 0x80

	// HashAlgorithmID is the algorithm id written in front of name hashes.
	HashAlgorithmID uint64 = 0xC1640000
)

// Header is the 2-byte prefix describing one serialized name.
type Header struct {
	Wide   bool
	Length int // characters, not bytes
}

// ByteLen returns the size of the string data that follows the header.
func (h Header) ByteLen() int {
	if h.Wide {
		return h.Length * 2
	}

	return h.Length
}

// ParseHeader decodes a name header. Bit 7 of the first byte marks UTF-16 data; the
// remaining 15 bits hold the length, high byte first.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, fmt.Errorf("%w: name header needs %d bytes, have %d", errs.ErrInvalidNameHeader, headerSize, len(b))
	}

	return Header{
		Wide:   b[0]&wideFlag != 0,
		Length: int(b[0]&^wideFlag)<<8 | int(b[1]),
	}, nil
}

// AppendTo appends the on-disk form of h to buf.
func (h Header) AppendTo(buf []byte) []byte {
	hi := byte(h.Length >> 8 & 0x7F)
	if h.Wide {
		hi |= wideFlag
	}

	return append(buf, hi, byte(h.Length))
}

// Hash returns the stored hash of a name: CityHash64 of its lowercase form.
func Hash(text string) uint64 {
	return city.Hash64([]byte(strings.ToLower(text)))
}

func readHeader(r *archive.Reader) (Header, error) {
	b, err := r.ReadBytes(headerSize)
	if err != nil {
		return Header{}, fmt.Errorf("name header: %w", err)
	}

	return ParseHeader(b)
}

func readText(r *archive.Reader, h Header) (string, error) {
	b, err := r.ReadBytes(h.ByteLen())
	if err != nil {
		return "", fmt.Errorf("name data: %w", err)
	}
	if !h.Wide {
		return string(b), nil
	}

	units := make([]uint16, h.Length)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}

	return string(utf16.Decode(units)), nil
}

// ReadHashes reads a legacy hash block: a u64 algorithm id followed by count hashes.
func ReadHashes(r *archive.Reader, count int) (algorithm uint64, hashes []uint64, err error) {
	if algorithm, err = r.ReadUint64(); err != nil {
		return 0, nil, fmt.Errorf("name hash algorithm: %w", err)
	}
	if hashes, err = r.ReadUint64Array(count); err != nil {
		return 0, nil, fmt.Errorf("name hashes: %w", err)
	}

	return algorithm, hashes, nil
}

// LoadLegacyBatch reads count names at the cursor, each header immediately followed by
// its string. hashes may be nil; otherwise it must hold one hash per name.
func LoadLegacyBatch(r *archive.Reader, count int, hashes []uint64) (*Table, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d names", errs.ErrInvalidCount, count)
	}
	if hashes != nil && len(hashes) != count {
		return nil, fmt.Errorf("%w: %d hashes for %d names", errs.ErrInvalidCount, len(hashes), count)
	}
	if int64(count)*headerSize > r.Remaining() {
		return nil, fmt.Errorf("%w: %d names need at least %d bytes, have %d", errs.ErrTruncated, count, count*headerSize, r.Remaining())
	}

	entries := make([]Entry, count)
	for i := range entries {
		h, err := readHeader(r)
		if err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		if entries[i].Text, err = readText(r, h); err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		if hashes != nil {
			entries[i].Hash = hashes[i]
		}
	}

	return newTable(entries), nil
}

// LoadZenBatch reads a self-describing name batch at the cursor:
//
//	i32 count (0 ends the batch), u32 string bytes, u64 hash version,
//	count u64 hashes, count headers, then the strings back to back.
func LoadZenBatch(r *archive.Reader) (*Table, error) {
	count, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("name batch count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: %d names", errs.ErrInvalidCount, count)
	}
	if count == 0 {
		return newTable(nil), nil
	}

	stringBytes, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("name batch size: %w", err)
	}
	if _, err = r.ReadUint64(); err != nil {
		return nil, fmt.Errorf("name batch hash version: %w", err)
	}

	hashes, err := r.ReadUint64Array(int(count))
	if err != nil {
		return nil, fmt.Errorf("name batch hashes: %w", err)
	}
	headers, err := archive.ReadArray(r, int(count), headerSize, readHeader)
	if err != nil {
		return nil, fmt.Errorf("name batch headers: %w", err)
	}

	start := r.Position()
	entries := make([]Entry, count)
	for i, h := range headers {
		if h.Wide && (r.Position()-start)%2 != 0 {
			if err := r.Skip(1); err != nil {
				return nil, fmt.Errorf("name %d: %w", i, err)
			}
		}
		if entries[i].Text, err = readText(r, h); err != nil {
			return nil, fmt.Errorf("name %d: %w", i, err)
		}
		entries[i].Hash = hashes[i]
	}

	if used := r.Position() - start; used > int64(stringBytes) {
		return nil, fmt.Errorf("%w: strings use %d bytes, batch declares %d", errs.ErrInvalidNameHeader, used, stringBytes)
	}
	// The declared size may include trailing padding.
	if err := r.Seek(start + int64(stringBytes)); err != nil {
		return nil, fmt.Errorf("name batch end: %w", err)
	}

	return newTable(entries), nil
}
