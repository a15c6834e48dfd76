// Package archive provides the positioned cursor used to decode container packages.
//
// A Reader is a read-only view over an in-memory byte slice with a settable absolute
// position. Reads never copy more than they return and never read past the active
// limit: by default the limit is the end of the data, and Limit can shrink it so that a
// per-export deserializer cannot consume more than the export's declared size.
//
// Clones share the underlying data and payload attachments but have their own position,
// limit and absolute offset, so a clone can be repositioned freely by a deserializer.
package archive

import (
	"context"
	"fmt"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
)

// Reader is a positioned little-endian cursor over a byte slice.
//
// Note: A Reader is NOT safe for concurrent use. Clone it for each goroutine.
type Reader struct {
	// Name identifies the stream in error messages.
	Name string
	// Versions describes the engine and package versions of the stream.
	Versions *version.Versions
	// AbsoluteOffset maps positions to offsets in the original uncompressed package:
	// AbsolutePosition returns Position plus AbsoluteOffset.
	AbsoluteOffset int64

	ctx      context.Context
	data     []byte
	pos      int64
	limit    int64
	limited  bool
	engine   endian.EndianEngine
	payloads *payloadSet
}

// NewReader creates a reader over data positioned at zero.
//
// A nil versions descriptor is replaced with an empty one.
func NewReader(name string, data []byte, versions *version.Versions) *Reader {
	if versions == nil {
		versions = &version.Versions{}
	}

	return &Reader{
		Name:     name,
		Versions: versions,
		data:     data,
		limit:    int64(len(data)),
		engine:   endian.GetLittleEndianEngine(),
		payloads: newPayloadSet(),
	}
}

// Clone returns an independent cursor over the same data.
//
// The clone shares payload attachments and the versions descriptor with r.
func (r *Reader) Clone() *Reader {
	c := *r
	return &c
}

// Context returns the context attached with WithContext, or context.Background.
func (r *Reader) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}

	return r.ctx
}

// WithContext returns a clone of r carrying ctx.
//
// The loader uses it to pass per-export state to deserializers.
func (r *Reader) WithContext(ctx context.Context) *Reader {
	c := r.Clone()
	c.ctx = ctx

	return c
}

// Position returns the current absolute position in the data.
func (r *Reader) Position() int64 {
	return r.pos
}

// AbsolutePosition returns the position translated by AbsoluteOffset.
func (r *Reader) AbsolutePosition() int64 {
	return r.pos + r.AbsoluteOffset
}

// Size returns the total length of the underlying data.
func (r *Reader) Size() int64 {
	return int64(len(r.data))
}

// Remaining returns the number of bytes readable before the active limit.
func (r *Reader) Remaining() int64 {
	return r.limit - r.pos
}

// Seek sets the absolute position. Seeking to the end of the data is allowed.
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(r.data)) {
		return fmt.Errorf("%w: seek to %d in %q of size %d", errs.ErrInvalidOffset, pos, r.Name, len(r.data))
	}
	r.pos = pos

	return nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n

	return nil
}

// Limit restricts reads to positions before end.
//
// Reads that would cross the limit fail with errs.ErrSerialOverrun.
func (r *Reader) Limit(end int64) error {
	if end < r.pos || end > int64(len(r.data)) {
		return fmt.Errorf("%w: limit %d outside [%d, %d] in %q", errs.ErrInvalidOffset, end, r.pos, len(r.data), r.Name)
	}
	r.limit = end
	r.limited = true

	return nil
}

// Limited reports whether Limit was called on this cursor.
func (r *Reader) Limited() bool {
	return r.limited
}

func (r *Reader) need(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative read of %d bytes at %d in %q", errs.ErrInvalidCount, n, r.pos, r.Name)
	}
	if r.pos+n <= r.limit {
		return nil
	}
	if r.Limited() {
		return fmt.Errorf("%w: %d bytes at %d, limit %d in %q", errs.ErrSerialOverrun, n, r.pos, r.limit, r.Name)
	}

	return fmt.Errorf("%w: %d bytes at %d of %d in %q", errs.ErrTruncated, n, r.pos, len(r.data), r.Name)
}

// ReadBytes returns the next n bytes.
//
// The returned slice aliases the reader's data and must not be modified.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(int64(n)); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+int64(n)]
	r.pos += int64(n)

	return b, nil
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

// ReadInt32 reads a little-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err //nolint: gosec
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

// ReadInt64 reads a little-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err //nolint: gosec
}

// ReadBool reads a 32-bit boolean; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint32()
	return v != 0, err
}

// ReadGUID reads a 16-byte GUID.
func (r *Reader) ReadGUID() (version.GUID, error) {
	var g version.GUID
	for i := range g {
		v, err := r.ReadUint32()
		if err != nil {
			return version.GUID{}, err
		}
		g[i] = v
	}

	return g, nil
}

// ReadUint64Array reads n consecutive little-endian uint64 values.
func (r *Reader) ReadUint64Array(n int) ([]uint64, error) {
	if err := r.need(int64(n) * 8); err != nil {
		return nil, err
	}

	out := make([]uint64, n)
	for i := range out {
		out[i] = r.engine.Uint64(r.data[r.pos:])
		r.pos += 8
	}

	return out, nil
}

// ReadArray reads n fixed records with read.
//
// It checks up front that n*recordSize bytes are available so a corrupt count fails
// fast instead of allocating a huge slice.
func ReadArray[T any](r *Reader, n int, recordSize int, read func(*Reader) (T, error)) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative array length %d in %q", errs.ErrInvalidCount, n, r.Name)
	}
	if err := r.need(int64(n) * int64(recordSize)); err != nil {
		return nil, err
	}

	out := make([]T, n)
	for i := range out {
		v, err := read(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = v
	}

	return out, nil
}
