// Package section defines the fixed-size records of a cooked package header and the
// constants that describe their physical layout.
//
// Two header layouts exist. Packages cooked before engine 5.0 use the legacy layout;
// later packages use the zen layout. Both share the same record vocabulary, so this
// package exposes one Go type per record and a layout parameter where the byte
// layout differs.
//
// # Records
//
//	Record               | Size          | Notes
//	---------------------|---------------|-------------------------------------------
//	MappedName           | 8             | u32 index word (2 type bits), u32 number
//	ObjectIndex          | 8             | 2 kind bits, 62 id bits
//	LegacySummary        | 64            | offsets of every legacy header section
//	ZenSummary           | 44            | offsets of every zen header section
//	ExportMapEntry       | 72            | same size in both layouts
//	ExportBundleEntry    | 8             | local export index, command type
//	ExportBundleHeader   | 8 (legacy)    | first entry index, entry count
//	                     | 16 (zen)      | serial offset prefix
//	CustomVersion        | 20            | GUID key, i32 version
//
// # Object Index Encoding
//
// The top two bits of an ObjectIndex select its kind:
//
//	0  Export         low 62 bits are the local export index
//	1  ScriptImport   low 62 bits are the stable hash of a built-in script object
//	2  PackageImport  legacy: a global import index
//	                  zen: bits 32..61 are the imported package slot,
//	                       bits 0..31 the public export hash of the target
//	3  Null           canonical value is all bits set
//
// # Counts
//
// Record counts are never stored directly. They are derived from the distance between
// consecutive section offsets in the summary, see CountRecords. A span that is negative
// or not a whole number of records is rejected with errs.ErrInvalidCount.
//
// # Byte Order
//
// Cooked packages are little-endian. Parse functions accept an endian.EndianEngine so
// the same code can serialize test fixtures; the archive-based Read functions always
// use the little-endian engine.
package section
