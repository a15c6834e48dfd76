package section

import (
	"fmt"

	"github.com/arloliu/iopkg/endian"
	"github.com/arloliu/iopkg/errs"
)

// MappedNameType selects the name table a mapped name indexes into.
type MappedNameType uint8

const (
	MappedNamePackage   MappedNameType = 0 // the package's own name table
	MappedNameContainer MappedNameType = 1 // a container-level table, resolved like global
	MappedNameGlobal    MappedNameType = 2 // the process-wide script name table
)

func (t MappedNameType) String() string {
	switch t {
	case MappedNamePackage:
		return "Package"
	case MappedNameContainer:
		return "Container"
	case MappedNameGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}

// MappedName is a name reference stored as a packed table index plus an instance number.
//
// On disk: u32 index word (low 30 bits index, top 2 bits type), u32 number.
type MappedName struct {
	Index  uint32
	Number uint32
}

// NewMappedName packs index and typ into a mapped name with the given instance number.
func NewMappedName(index uint32, typ MappedNameType, number uint32) MappedName {
	return MappedName{
		Index:  (index & mappedIndexMask) | uint32(typ)<<mappedTypeShift,
		Number: number,
	}
}

// NameIndex returns the index into the selected name table.
func (m MappedName) NameIndex() uint32 {
	return m.Index & mappedIndexMask
}

// Type returns the name table type.
func (m MappedName) Type() MappedNameType {
	return MappedNameType(m.Index >> mappedTypeShift)
}

// IsGlobal reports whether the name must be resolved against the global table.
func (m MappedName) IsGlobal() bool {
	return m.Type() != MappedNamePackage
}

func (m MappedName) String() string {
	return fmt.Sprintf("%s[%d]#%d", m.Type(), m.NameIndex(), m.Number)
}

// ParseMappedName parses a mapped name from the first 8 bytes of data.
func ParseMappedName(data []byte, engine endian.EndianEngine) (MappedName, error) {
	if len(data) < MappedNameSize {
		return MappedName{}, fmt.Errorf("%w: mapped name needs %d bytes, have %d", errs.ErrTruncated, MappedNameSize, len(data))
	}

	return MappedName{
		Index:  engine.Uint32(data[0:4]),
		Number: engine.Uint32(data[4:8]),
	}, nil
}

// AppendTo appends the on-disk form of m to buf.
func (m MappedName) AppendTo(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, m.Index)
	return engine.AppendUint32(buf, m.Number)
}
