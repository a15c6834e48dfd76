// Package version describes the engine and package versions that select a container layout.
//
// The only decision driven by the engine version inside this module is the layout gate:
// engines at or above ZenLayout write the bundle-based "zen" summary, older engines write
// the legacy table-based summary. Package file versions and custom versions are carried
// along for per-export deserializers.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout identifies one of the two on-disk package layouts.
type Layout uint8

const (
	LayoutLegacy Layout = 0x1 // LayoutLegacy is the table-based layout written before 5.0.
	LayoutZen    Layout = 0x2 // LayoutZen is the bundle-based layout written by 5.0 and later.
)

func (l Layout) String() string {
	switch l {
	case LayoutLegacy:
		return "Legacy"
	case LayoutZen:
		return "Zen"
	default:
		return "Unknown"
	}
}

// Engine is an engine release identified by major and minor number.
type Engine struct {
	Major int
	Minor int
}

// ZenLayout is the first engine release that writes the zen package layout.
var ZenLayout = Engine{Major: 5, Minor: 0}

// Compare returns -1, 0 or 1 depending on whether e is older, equal or newer than other.
func (e Engine) Compare(other Engine) int {
	switch {
	case e.Major != other.Major:
		if e.Major < other.Major {
			return -1
		}
		return 1
	case e.Minor < other.Minor:
		return -1
	case e.Minor > other.Minor:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether e is the same as or newer than other.
func (e Engine) AtLeast(other Engine) bool {
	return e.Compare(other) >= 0
}

// Layout returns the package layout written by this engine release.
func (e Engine) Layout() Layout {
	if e.AtLeast(ZenLayout) {
		return LayoutZen
	}

	return LayoutLegacy
}

func (e Engine) String() string {
	return fmt.Sprintf("%d.%d", e.Major, e.Minor)
}

// Parse parses an engine release written as "major.minor" (for example "4.26" or "5.1").
func Parse(s string) (Engine, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Engine{}, fmt.Errorf("invalid engine version %q: want major.minor", s)
	}

	maj, err := strconv.Atoi(major)
	if err != nil || maj < 0 {
		return Engine{}, fmt.Errorf("invalid engine major version %q", major)
	}
	mnr, err := strconv.Atoi(minor)
	if err != nil || mnr < 0 {
		return Engine{}, fmt.Errorf("invalid engine minor version %q", minor)
	}

	return Engine{Major: maj, Minor: mnr}, nil
}

// FileVersion is the pair of package file versions stored in versioning info.
type FileVersion struct {
	UE4 int32
	UE5 int32
}

// GUID is a 128-bit identifier stored as four little-endian uint32 words.
type GUID [4]uint32

func (g GUID) String() string {
	return fmt.Sprintf("%08X%08X%08X%08X", g[0], g[1], g[2], g[3])
}

// CustomVersion is one entry of a custom version container.
type CustomVersion struct {
	Key     GUID
	Version int32
}

// Versions is the version descriptor attached to an archive.
type Versions struct {
	// Engine selects the package layout.
	Engine Engine
	// Explicit pins Package, Licensee and CustomVersions: versioning info found in a
	// package summary is ignored when set.
	Explicit       bool
	Package        FileVersion
	Licensee       int32
	CustomVersions []CustomVersion
}

// New returns a descriptor for the given engine release with no pinned versions.
func New(engine Engine) *Versions {
	return &Versions{Engine: engine}
}

// Layout returns the package layout selected by the engine release.
func (v *Versions) Layout() Layout {
	return v.Engine.Layout()
}

// Adopt replaces the package, licensee and custom versions with the values stored in a
// package unless the caller pinned them. It reports whether the values were adopted.
func (v *Versions) Adopt(pkg FileVersion, licensee int32, custom []CustomVersion) bool {
	if v.Explicit {
		return false
	}

	v.Package = pkg
	v.Licensee = licensee
	v.CustomVersions = append([]CustomVersion(nil), custom...)

	return true
}

// Custom returns the version registered for key, or -1 when the key is absent.
func (v *Versions) Custom(key GUID) int32 {
	for _, cv := range v.CustomVersions {
		if cv.Key == key {
			return cv.Version
		}
	}

	return -1
}

// Clone returns a deep copy of v.
func (v *Versions) Clone() *Versions {
	if v == nil {
		return nil
	}

	c := *v
	c.CustomVersions = append([]CustomVersion(nil), v.CustomVersions...)

	return &c
}
