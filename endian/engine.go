// Package endian provides the byte order engine used to read and write container records.
//
// Cooked containers are always little-endian on disk, so GetLittleEndianEngine is what
// the archive reader and the fixture writer use. The engine combines ByteOrder and
// AppendByteOrder so that writers can append fields without temporary buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, uint64(index))
//	value := engine.Uint32(buf[8:12])
//
// All functions and methods in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host stores integers little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine used by cooked containers.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
//
// Name headers store their length big-endian inside two bytes; this engine is used to
// decode them.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
