package uobject

import "strings"

// ObjectFlags are the object flags stored in export map rows.
type ObjectFlags uint32

const (
	FlagPublic               ObjectFlags = 0x00000001
	FlagStandalone           ObjectFlags = 0x00000002
	FlagMarkAsNative         ObjectFlags = 0x00000004
	FlagTransactional        ObjectFlags = 0x00000008
	FlagClassDefaultObject   ObjectFlags = 0x00000010
	FlagArchetypeObject      ObjectFlags = 0x00000020
	FlagTransient            ObjectFlags = 0x00000040
	FlagNeedLoad             ObjectFlags = 0x00000400
	FlagNeedPostLoad         ObjectFlags = 0x00001000
	FlagDefaultSubObject     ObjectFlags = 0x00040000
	FlagWasLoaded            ObjectFlags = 0x00080000
	FlagLoadCompleted        ObjectFlags = 0x00200000
	FlagInheritableComponent ObjectFlags = 0x00400000
	FlagDynamic              ObjectFlags = 0x04000000
	FlagWillBeLoaded         ObjectFlags = 0x08000000
)

var flagNames = []struct {
	flag ObjectFlags
	name string
}{
	{FlagPublic, "Public"},
	{FlagStandalone, "Standalone"},
	{FlagMarkAsNative, "MarkAsNative"},
	{FlagTransactional, "Transactional"},
	{FlagClassDefaultObject, "ClassDefaultObject"},
	{FlagArchetypeObject, "ArchetypeObject"},
	{FlagTransient, "Transient"},
	{FlagNeedLoad, "NeedLoad"},
	{FlagNeedPostLoad, "NeedPostLoad"},
	{FlagDefaultSubObject, "DefaultSubObject"},
	{FlagWasLoaded, "WasLoaded"},
	{FlagLoadCompleted, "LoadCompleted"},
	{FlagInheritableComponent, "InheritableComponentTemplate"},
	{FlagDynamic, "Dynamic"},
	{FlagWillBeLoaded, "WillBeLoaded"},
}

// Has reports whether all bits of mask are set.
func (f ObjectFlags) Has(mask ObjectFlags) bool {
	return f&mask == mask
}

// String lists the known flags joined by "|". Unknown bits are omitted.
func (f ObjectFlags) String() string {
	if f == 0 {
		return "None"
	}

	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}

	return strings.Join(parts, "|")
}
