package container

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/go-faster/city"

	"github.com/arloliu/iopkg/endian"
)

var le = endian.GetLittleEndianEngine()

// PackageID identifies a package across containers. It is derived from the package
// name, so packages can reference each other without a shared name table.
type PackageID uint64

// PackageIDFromName returns the id of the package with the given name: CityHash64 of the
// lowercased name encoded as UTF-16LE.
func PackageIDFromName(name string) PackageID {
	units := utf16.Encode([]rune(strings.ToLower(name)))

	b := make([]byte, 0, 2*len(units))
	for _, u := range units {
		b = le.AppendUint16(b, u)
	}

	return PackageID(city.Hash64(b))
}

func (id PackageID) String() string {
	return fmt.Sprintf("0x%016X", uint64(id))
}
