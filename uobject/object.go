// Package uobject defines the object model that exports are materialized into.
//
// Every materialized export implements Object. Concrete types embed BaseObject, which
// carries the name, outer, class, super, template and flags linked by the loader.
// Types register themselves by class name in a Registry; exports of unregistered
// classes become a Shell so the object graph stays walkable.
package uobject

import (
	"strings"

	"github.com/arloliu/iopkg/archive"
)

// Object is a materialized object.
type Object interface {
	Base() *BaseObject
}

// Ref is a lazily resolvable reference to another object.
type Ref interface {
	// Name returns the referenced object's name without forcing it.
	Name() string
	// Object forces the referenced object.
	Object() (Object, error)
}

// PostLoader is implemented by objects that need work after deserialization.
type PostLoader interface {
	PostLoad()
}

// Deserializable is implemented by objects that read their own serialized data.
//
// validPos is the reader position at which the object's data ends.
type Deserializable interface {
	Deserialize(ar *archive.Reader, validPos int64) error
}

// BaseObject holds the state shared by all objects.
type BaseObject struct {
	Name     string
	Outer    Object
	Class    Ref
	Super    Ref
	Template Ref
	Flags    ObjectFlags
}

// Base returns b, so embedding BaseObject satisfies Object.
func (b *BaseObject) Base() *BaseObject {
	return b
}

// ClassName returns the class name, or "" when the class is unknown.
func (b *BaseObject) ClassName() string {
	if b.Class == nil {
		return ""
	}

	return b.Class.Name()
}

// HasFlags reports whether all bits of mask are set.
func (b *BaseObject) HasFlags(mask ObjectFlags) bool {
	return b.Flags.Has(mask)
}

// PathName returns the dotted path of obj through its outer chain, outermost first.
func PathName(obj Object) string {
	var parts []string
	for depth := 0; obj != nil && depth < maxOuterDepth; depth++ {
		b := obj.Base()
		parts = append(parts, b.Name)
		obj = b.Outer
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	return strings.Join(parts, ".")
}

const maxOuterDepth = 64

// Shell is the minimal object constructed for exports whose class is not registered.
// Its serialized data is not read.
type Shell struct {
	BaseObject
}

// ScriptClass is a built-in class or object described by the global script table.
type ScriptClass struct {
	BaseObject
	// Path is the full object path, for example "/Script/Engine.StaticMesh".
	Path string
}
