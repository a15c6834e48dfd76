package uobject

import "github.com/arloliu/iopkg/archive"

// Deserializer reads an export's serialized data into a constructed object.
//
// ar is positioned at the start of the export's data and limited to size bytes. Its
// Context carries the resolution chain of the export being loaded; pass it on when
// forcing other exports from inside Deserialize.
type Deserializer interface {
	Deserialize(obj Object, ar *archive.Reader, size int64) error
}

// DeserializerFunc adapts a function to the Deserializer interface.
type DeserializerFunc func(obj Object, ar *archive.Reader, size int64) error

// Deserialize calls f.
func (f DeserializerFunc) Deserialize(obj Object, ar *archive.Reader, size int64) error {
	return f(obj, ar, size)
}

type defaultDeserializer struct{}

// DefaultDeserializer returns the deserializer that delegates to objects implementing
// Deserializable and skips everything else.
func DefaultDeserializer() Deserializer {
	return defaultDeserializer{}
}

func (defaultDeserializer) Deserialize(obj Object, ar *archive.Reader, size int64) error {
	d, ok := obj.(Deserializable)
	if !ok {
		return nil
	}

	return d.Deserialize(ar, ar.Position()+size)
}
