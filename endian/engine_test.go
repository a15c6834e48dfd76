package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	var probe uint16 = 0x0102
	first := (*[2]byte)(unsafe.Pointer(&probe))[0]

	switch first {
	case 0x01:
		require.Equal(t, binary.BigEndian, CheckEndianness())
		require.False(t, IsNativeLittleEndian())
	case 0x02:
		require.Equal(t, binary.LittleEndian, CheckEndianness())
		require.True(t, IsNativeLittleEndian())
	default:
		require.Failf(t, "unexpected byte value", "got: %v", first)
	}
}

func TestEngines(t *testing.T) {
	le := GetLittleEndianEngine()
	be := GetBigEndianEngine()

	buf := le.AppendUint32(nil, 0x11223344)
	require.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, buf)
	require.Equal(t, uint32(0x11223344), le.Uint32(buf))

	buf = be.AppendUint16(nil, 0x8005)
	require.Equal(t, []byte{0x80, 0x05}, buf)
	require.Equal(t, uint16(0x8005), be.Uint16(buf))
}
