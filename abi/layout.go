package abi

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/ffbind/internal/platform"
)

// ErrBadLayout is returned when a field list cannot describe a C struct.
var ErrBadLayout = errors.New("ffbind: invalid struct layout")

// Kind is the C scalar class of a field.
type Kind uint8

const (
	KindInt8 Kind = iota
	KindUint8
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindSize
	KindPointer
	KindArray
	KindStruct
)

// Type is a C type with its size and alignment on the target.
type Type struct {
	kind   Kind
	size   uintptr
	align  uintptr
	elem   *Type
	count  int
	layout *Layout
}

// Scalar C types for LP64 / LLP64 targets.
var (
	Int8    = Type{kind: KindInt8, size: 1, align: 1}
	Uint8   = Type{kind: KindUint8, size: 1, align: 1}
	Int32   = Type{kind: KindInt32, size: 4, align: 4}
	Uint32  = Type{kind: KindUint32, size: 4, align: 4}
	Int64   = Type{kind: KindInt64, size: 8, align: 8}
	Uint64  = Type{kind: KindUint64, size: 8, align: 8}
	Size    = Type{kind: KindSize, size: platform.PointerSize, align: platform.PointerSize}
	Pointer = Type{kind: KindPointer, size: platform.PointerSize, align: platform.PointerSize}
)

// Array is elem[n].
func Array(elem Type, n int) Type {
	e := elem
	return Type{kind: KindArray, size: elem.size * uintptr(max(n, 0)), align: elem.align, elem: &e, count: n}
}

// Struct embeds l by value.
func Struct(l *Layout) Type {
	return Type{kind: KindStruct, size: l.size, align: l.align, layout: l}
}

// Kind returns the type class.
func (t Type) Kind() Kind { return t.kind }

// Size returns sizeof(t).
func (t Type) Size() uintptr { return t.size }

// Align returns _Alignof(t).
func (t Type) Align() uintptr { return t.align }

// Len returns the element count of an array type, 0 otherwise.
func (t Type) Len() int { return t.count }

// Elem returns the element type of an array type.
func (t Type) Elem() (Type, bool) {
	if t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// Layout returns the embedded layout of a struct type.
func (t Type) Layout() *Layout { return t.layout }

// Decl is one field declaration, in native order.
type Decl struct {
	Name string
	Type Type
}

// When returns decls if cond holds and nothing otherwise. It is the only
// way a field may be absent from a layout.
func When(cond bool, decls ...Decl) []Decl {
	if !cond {
		return nil
	}
	return decls
}

// Field is a laid-out field.
type Field struct {
	Name   string
	Type   Type
	Offset uintptr
}

// Layout is a C struct laid out with natural alignment.
type Layout struct {
	name   string
	fields []Field
	byName map[string]int
	size   uintptr
	align  uintptr
}

// NewLayout lays out decls in order, inserting the padding a C compiler
// would. Field names must be unique and types non-empty.
func NewLayout(name string, decls []Decl) (*Layout, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrBadLayout, name)
	}

	l := &Layout{
		name:   name,
		fields: make([]Field, 0, len(decls)),
		byName: make(map[string]int, len(decls)),
		align:  1,
	}

	var off uintptr
	for _, d := range decls {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: %s has an unnamed field", ErrBadLayout, name)
		}
		if _, dup := l.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s declared twice", ErrBadLayout, name, d.Name)
		}
		if d.Type.size == 0 || d.Type.align == 0 {
			return nil, fmt.Errorf("%w: %s.%s has zero size", ErrBadLayout, name, d.Name)
		}

		off = alignUp(off, d.Type.align)
		l.byName[d.Name] = len(l.fields)
		l.fields = append(l.fields, Field{Name: d.Name, Type: d.Type, Offset: off})
		off += d.Type.size
		l.align = max(l.align, d.Type.align)
	}
	l.size = alignUp(off, l.align)
	return l, nil
}

func alignUp(off, align uintptr) uintptr {
	return (off + align - 1) &^ (align - 1)
}

// Name returns the struct name.
func (l *Layout) Name() string { return l.name }

// Size returns sizeof the struct including tail padding.
func (l *Layout) Size() uintptr { return l.size }

// Align returns the struct alignment.
func (l *Layout) Align() uintptr { return l.align }

// Fields returns the laid-out fields in native order.
func (l *Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Field looks up a field by native name.
func (l *Layout) Field(name string) (Field, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Has reports whether the field is present in this layout.
func (l *Layout) Has(name string) bool {
	_, ok := l.byName[name]
	return ok
}

// offset returns the offset of a field that every variant declares.
// It panics on a missing name, which is a bug in this package.
func (l *Layout) offset(name string) uintptr {
	f, ok := l.Field(name)
	if !ok {
		panic(fmt.Sprintf("abi: %s has no field %q", l.name, name))
	}
	return f.Offset
}

// optional resolves a version-gated field once.
func (l *Layout) optional(name string) optOffset {
	f, ok := l.Field(name)
	return optOffset{off: f.Offset, ok: ok}
}

type optOffset struct {
	off uintptr
	ok  bool
}
