// Package fakeav lays out native FFmpeg structs in Go memory so overlays,
// the format registry and the filter adapter can be exercised without the
// shared libraries.
package fakeav

import (
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
)

// retained holds Go memory referenced from pointer fields. Block memory
// is a []uint64, which the collector does not scan for pointers.
type retained struct {
	values []any
}

// Block is a view of one struct inside zeroed, 8-byte aligned Go memory.
type Block struct {
	ptr    unsafe.Pointer
	size   uintptr
	layout *abi.Layout
	keep   *retained
}

// NewBlock allocates count consecutive l-sized structs and returns a view
// of the first.
func NewBlock(l *abi.Layout, count int) *Block {
	size := l.Size() * uintptr(count)
	words := make([]uint64, (size+7)/8)
	keep := &retained{values: []any{words}}
	return &Block{ptr: unsafe.Pointer(&words[0]), size: size, layout: l, keep: keep}
}

// Pointer returns the start of the struct.
func (b *Block) Pointer() unsafe.Pointer { return b.ptr }

// Bytes returns the memory from the struct start to the end of the
// allocation.
func (b *Block) Bytes() []byte { return unsafe.Slice((*byte)(b.ptr), b.size) }

// Raw returns a sized view, as a host passing struct memory would.
func (b *Block) Raw() abi.Raw { return abi.RawBytes(b.Bytes()) }

// Layout returns the layout the block is viewed through.
func (b *Block) Layout() *abi.Layout { return b.layout }

// Keep retains v for the lifetime of the allocation.
func (b *Block) Keep(v any) { b.keep.values = append(b.keep.values, v) }

// Index returns the i-th struct of a NewBlock(l, count) allocation.
func (b *Block) Index(i int) *Block {
	off := uintptr(i) * b.layout.Size()
	if off >= b.size {
		panic(fmt.Sprintf("fakeav: %s[%d] out of range", b.layout.Name(), i))
	}
	return &Block{ptr: unsafe.Add(b.ptr, off), size: b.size - off, layout: b.layout, keep: b.keep}
}

// Elem returns element i of a struct-typed field (or array of structs).
func (b *Block) Elem(field string, i int) *Block {
	f := b.field(field)
	t := f.Type
	if e, ok := t.Elem(); ok {
		t = e
	}
	if t.Layout() == nil {
		panic(fmt.Sprintf("fakeav: %s.%s is not a struct", b.layout.Name(), field))
	}
	p := b.addr(field, i)
	return &Block{ptr: p, size: t.Size(), layout: t.Layout(), keep: b.keep}
}

func (b *Block) field(name string) abi.Field {
	f, ok := b.layout.Field(name)
	if !ok {
		panic(fmt.Sprintf("fakeav: %s has no field %q", b.layout.Name(), name))
	}
	return f
}

func (b *Block) addr(field string, index int) unsafe.Pointer {
	f := b.field(field)
	off := f.Offset
	if index > 0 {
		elem, ok := f.Type.Elem()
		if !ok || index >= f.Type.Len() {
			panic(fmt.Sprintf("fakeav: %s.%s[%d] out of range", b.layout.Name(), field, index))
		}
		off += uintptr(index) * elem.Size()
	}
	return unsafe.Add(b.ptr, off)
}

func (b *Block) SetUint8(field string, v uint8)   { *(*uint8)(b.addr(field, 0)) = v }
func (b *Block) SetInt32(field string, v int32)   { *(*int32)(b.addr(field, 0)) = v }
func (b *Block) SetUint32(field string, v uint32) { *(*uint32)(b.addr(field, 0)) = v }
func (b *Block) SetInt64(field string, v int64)   { *(*int64)(b.addr(field, 0)) = v }
func (b *Block) SetUint64(field string, v uint64) { *(*uint64)(b.addr(field, 0)) = v }

func (b *Block) Int32(field string) int32   { return *(*int32)(b.addr(field, 0)) }
func (b *Block) Int64(field string) int64   { return *(*int64)(b.addr(field, 0)) }
func (b *Block) Uint64(field string) uint64 { return *(*uint64)(b.addr(field, 0)) }

// Int32At returns element i of an int32 array field.
func (b *Block) Int32At(field string, i int) int32 { return *(*int32)(b.addr(field, i)) }

// SetInt32At sets element i of an int32 array field.
func (b *Block) SetInt32At(field string, i int, v int32) { *(*int32)(b.addr(field, i)) = v }

// SetUint64At sets element i of a uint64 array field.
func (b *Block) SetUint64At(field string, i int, v uint64) { *(*uint64)(b.addr(field, i)) = v }

// SetRational stores an AVRational field.
func (b *Block) SetRational(field string, r avutil.Rational) {
	*(*avutil.Rational)(b.addr(field, 0)) = r
}

// SetPointer stores p in a pointer field and retains owner, the Go value
// p points into.
func (b *Block) SetPointer(field string, p unsafe.Pointer, owner any) {
	b.SetPointerAt(field, 0, p, owner)
}

// SetPointerAt stores p in element i of a pointer array field.
func (b *Block) SetPointerAt(field string, i int, p unsafe.Pointer, owner any) {
	*(*unsafe.Pointer)(b.addr(field, i)) = p
	if owner != nil {
		b.Keep(owner)
	}
}

// PointerField returns the pointer stored in field.
func (b *Block) PointerField(field string) unsafe.Pointer {
	return *(*unsafe.Pointer)(b.addr(field, 0))
}

// SetBlock points field at another block and retains its allocation.
func (b *Block) SetBlock(field string, other *Block) {
	if other == nil {
		b.SetPointer(field, nil, nil)
		return
	}
	b.SetPointer(field, other.ptr, other.keep)
}

// SetString stores a NUL-terminated copy of s in a char* field.
// The empty string is stored as NULL.
func (b *Block) SetString(field string, s string) {
	if s == "" {
		b.SetPointer(field, nil, nil)
		return
	}
	c := CString(s)
	b.SetPointer(field, unsafe.Pointer(&c[0]), c)
}

// CString returns s as a NUL-terminated byte slice.
func CString(s string) []byte {
	c := make([]byte, len(s)+1)
	copy(c, s)
	return c
}

// PointerArray allocates a native array of pointers to blocks, the shape
// of AVFilterContext.inputs. The result retains the blocks.
func PointerArray(blocks ...*Block) (unsafe.Pointer, any) {
	if len(blocks) == 0 {
		return nil, nil
	}
	words := make([]uint64, len(blocks))
	keep := []any{words}
	base := unsafe.Pointer(&words[0])
	for i, blk := range blocks {
		if blk == nil {
			continue
		}
		*(*unsafe.Pointer)(unsafe.Add(base, i*8)) = blk.ptr
		keep = append(keep, blk.keep)
	}
	return base, keep
}
