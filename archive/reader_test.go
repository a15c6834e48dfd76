package archive

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
	"github.com/arloliu/iopkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() []byte {
	engine := endian.GetLittleEndianEngine()
	var b []byte
	b = append(b, 0x7F)
	b = engine.AppendUint16(b, 0xBEEF)
	b = engine.AppendUint32(b, 0xDEADBEEF)
	b = engine.AppendUint64(b, 0x0102030405060708)
	b = engine.AppendUint32(b, 0xFFFFFFFF) // int32 -1
	b = engine.AppendUint32(b, 1)          // bool

	return b
}

func TestReader_SequentialReads(t *testing.T) {
	r := NewReader("test", testData(), nil)
	require.NotNil(t, r.Versions)

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x7F), u8)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), u64)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-1), i32)

	b, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, b)

	require.Equal(t, r.Size(), r.Position())
	require.Equal(t, int64(0), r.Remaining())

	_, err = r.ReadUint8()
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestReader_SeekAndSkip(t *testing.T) {
	r := NewReader("test", testData(), nil)

	require.NoError(t, r.Seek(3))
	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), u32)

	require.NoError(t, r.Seek(r.Size()))
	require.ErrorIs(t, r.Seek(r.Size()+1), errs.ErrInvalidOffset)
	require.ErrorIs(t, r.Seek(-1), errs.ErrInvalidOffset)

	require.NoError(t, r.Seek(0))
	require.NoError(t, r.Skip(1))
	require.Equal(t, int64(1), r.Position())
	require.ErrorIs(t, r.Skip(100), errs.ErrTruncated)
}

func TestReader_Limit(t *testing.T) {
	r := NewReader("test", testData(), nil)
	require.NoError(t, r.Seek(3))
	require.NoError(t, r.Limit(7))
	require.True(t, r.Limited())

	_, err := r.ReadUint32()
	require.NoError(t, err)

	_, err = r.ReadUint8()
	require.ErrorIs(t, err, errs.ErrSerialOverrun)
	require.False(t, errors.Is(err, errs.ErrTruncated))

	require.ErrorIs(t, r.Limit(2), errs.ErrInvalidOffset)
}

func TestReader_CloneIsIndependent(t *testing.T) {
	r := NewReader("test", testData(), version.New(version.Engine{Major: 5}))
	require.NoError(t, r.Seek(1))

	c := r.Clone()
	c.AbsoluteOffset = 100
	require.NoError(t, c.Seek(3))
	require.NoError(t, c.Limit(7))

	require.Equal(t, int64(1), r.Position())
	require.False(t, r.Limited())
	require.Equal(t, int64(103), c.AbsolutePosition())
	require.Equal(t, int64(1), r.AbsolutePosition())
	require.Same(t, r.Versions, c.Versions)
}

type ctxKey struct{}

func TestReader_WithContext(t *testing.T) {
	r := NewReader("test", testData(), nil)
	require.Equal(t, context.Background(), r.Context())
	require.NoError(t, r.Seek(1))

	ctx := context.WithValue(context.Background(), ctxKey{}, "export")
	c := r.WithContext(ctx)
	require.Equal(t, "export", c.Context().Value(ctxKey{}))
	require.Equal(t, int64(1), c.Position())
	require.Nil(t, r.Context().Value(ctxKey{}))

	// Clones keep the context.
	require.Equal(t, "export", c.Clone().Context().Value(ctxKey{}))
}

func TestReadArray(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	var data []byte
	for i := range 4 {
		data = engine.AppendUint32(data, uint32(i*10))
	}
	r := NewReader("arr", data, nil)

	vals, err := ReadArray(r, 4, 4, (*Reader).ReadUint32)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 10, 20, 30}, vals)

	require.NoError(t, r.Seek(0))
	_, err = ReadArray(r, 5, 4, (*Reader).ReadUint32)
	require.ErrorIs(t, err, errs.ErrTruncated)
	require.Equal(t, int64(0), r.Position(), "a failed size check must not move the cursor")

	_, err = ReadArray(r, -1, 4, (*Reader).ReadUint32)
	require.ErrorIs(t, err, errs.ErrInvalidCount)

	require.NoError(t, r.Seek(0))
	u64s, err := r.ReadUint64Array(2)
	require.NoError(t, err)
	require.Equal(t, uint64(10)<<32, u64s[0])
}

func TestReader_GUID(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	var data []byte
	for _, w := range []uint32{1, 2, 3, 4} {
		data = engine.AppendUint32(data, w)
	}

	g, err := NewReader("guid", data, nil).ReadGUID()
	require.NoError(t, err)
	require.Equal(t, version.GUID{1, 2, 3, 4}, g)
	require.Equal(t, "00000001000000020000000300000004", g.String())
}

func TestReader_Payload(t *testing.T) {
	r := NewReader("pkg", []byte{0}, nil)

	_, err := r.Payload(PayloadBulk)
	require.ErrorIs(t, err, errs.ErrPayloadNotAttached)

	var opens atomic.Int32
	r.AddPayload(PayloadBulk, 64, func() ([]byte, error) {
		opens.Add(1)
		return []byte{1, 2, 3, 4}, nil
	})
	require.True(t, r.HasPayload(PayloadBulk))
	start, ok := r.PayloadStart(PayloadBulk)
	require.True(t, ok)
	require.Equal(t, int64(64), start)

	clone := r.Clone()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := clone.Payload(PayloadBulk)
			if !assert.NoError(t, err) {
				return
			}
			b, err := p.ReadBytes(4)
			assert.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3, 4}, b)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), opens.Load())

	p, err := r.Payload(PayloadBulk)
	require.NoError(t, err)
	require.Equal(t, int64(0), p.Position(), "every call returns a fresh cursor")
	require.Equal(t, int64(64), p.AbsolutePosition())

	boom := errors.New("boom")
	r.AddPayload(PayloadOptional, 0, func() ([]byte, error) { return nil, boom })
	_, err = r.Payload(PayloadOptional)
	require.ErrorIs(t, err, boom)
	_, err = r.Payload(PayloadOptional)
	require.ErrorIs(t, err, boom)
}
