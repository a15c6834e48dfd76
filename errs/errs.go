// Package errs declares the sentinel errors shared by the iopkg packages.
//
// Errors are wrapped with additional context using fmt.Errorf and the %w verb,
// so callers should compare with errors.Is rather than equality.
package errs

import "errors"

// Decode errors. Any of these aborts the load of the package that produced it.
var (
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrTruncated           = errors.New("unexpected end of data")
	ErrInvalidOffset       = errors.New("invalid offset")
	ErrInvalidCount        = errors.New("invalid record count")
	ErrBundleEntryMismatch = errors.New("export bundle entry count mismatch")
	ErrInvalidBundleEntry  = errors.New("invalid export bundle entry")
	ErrNameIndexOutOfRange = errors.New("name index out of range")
	ErrInvalidNameHeader   = errors.New("invalid name header")
	ErrInvalidScriptTable  = errors.New("invalid script object table")
	ErrInvalidContainer    = errors.New("invalid container header")
)

// Export access and materialization errors.
var (
	ErrExportIndexOutOfRange = errors.New("export index out of range")
	ErrExportNotFound        = errors.New("export not found")
	ErrExportNotSerialized   = errors.New("export has no serialize command")
	ErrCyclicReference       = errors.New("cyclic export reference")
	ErrSerialOverrun         = errors.New("read past declared serial size")
)

// Compression, payload and provider errors.
var (
	ErrUnsupportedCompression = errors.New("unsupported compression method")
	ErrDecompressedSize       = errors.New("decompressed size mismatch")
	ErrPayloadNotAttached     = errors.New("payload not attached")
	ErrPackageNotFound        = errors.New("package not found")
	ErrNoProvider             = errors.New("no package provider")
)
