// Package buffer provides zero-copy, C-ordered byte views over native
// frame planes.
//
// Views are unsynchronized and perform no bounds validation unless the
// module is built with the viewdebug tag. FromBytes is the exception: a Go
// slice carries its length, so a shape that overruns it always panics.
package buffer

import (
	"fmt"
	"unsafe"
)

// View is an N-dimensional uint8 view over memory it does not own.
type View struct {
	ptr     unsafe.Pointer
	shape   []int
	strides []int
}

// New returns a C-ordered view of shape over ptr. With no shape the view
// is a single byte.
func New(ptr unsafe.Pointer, shape ...int) *View {
	shape = append([]int(nil), shape...)
	return &View{ptr: ptr, shape: shape, strides: contiguous(shape)}
}

// NewStrided returns a view with explicit byte strides, e.g. a plane whose
// line size exceeds width*components.
func NewStrided(ptr unsafe.Pointer, shape, strides []int) *View {
	if len(shape) != len(strides) {
		panic(fmt.Sprintf("buffer: %d strides for %d dimensions", len(strides), len(shape)))
	}
	return &View{
		ptr:     ptr,
		shape:   append([]int(nil), shape...),
		strides: append([]int(nil), strides...),
	}
}

// FromBytes views b with the given shape. b must outlive the view.
func FromBytes(b []byte, shape ...int) *View {
	if len(shape) == 0 {
		shape = []int{len(b)}
	}
	v := New(nil, shape...)
	if need := v.span(); need > len(b) {
		panic(fmt.Sprintf("buffer: shape %v needs %d bytes, have %d", v.shape, need, len(b)))
	}
	if len(b) > 0 {
		v.ptr = unsafe.Pointer(&b[0])
	}
	return v
}

func contiguous(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

// Pointer returns the address of the first element.
func (v *View) Pointer() unsafe.Pointer { return v.ptr }

// Shape returns a copy of the dimensions.
func (v *View) Shape() []int { return append([]int(nil), v.shape...) }

// Strides returns a copy of the byte strides.
func (v *View) Strides() []int { return append([]int(nil), v.strides...) }

// Ndim returns the number of dimensions.
func (v *View) Ndim() int { return len(v.shape) }

// Len returns the number of elements.
func (v *View) Len() int {
	n := 1
	for _, d := range v.shape {
		n *= d
	}
	return n
}

// Contiguous reports whether the elements are packed with no gaps.
func (v *View) Contiguous() bool {
	s := 1
	for i := len(v.shape) - 1; i >= 0; i-- {
		if v.shape[i] != 1 && v.strides[i] != s {
			return false
		}
		s *= v.shape[i]
	}
	return true
}

// span is the number of bytes between the first and one past the last element.
func (v *View) span() int {
	if v.Len() == 0 {
		return 0
	}
	n := 1
	for i, d := range v.shape {
		n += (d - 1) * v.strides[i]
	}
	return n
}

func (v *View) offset(idx []int) int {
	checkIndex(v.shape, idx)
	off := 0
	for i, x := range idx {
		off += x * v.strides[i]
	}
	return off
}

// At returns the element at idx. Missing trailing indices are zero.
func (v *View) At(idx ...int) byte {
	return *(*byte)(unsafe.Add(v.ptr, v.offset(idx)))
}

// Set stores b at idx.
func (v *View) Set(b byte, idx ...int) {
	*(*byte)(unsafe.Add(v.ptr, v.offset(idx))) = b
}

// Bytes returns the memory spanned by the view, including any row
// padding between elements.
func (v *View) Bytes() []byte {
	n := v.span()
	if n == 0 || v.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(v.ptr), n)
}

// Sub returns the (n-1)-dimensional view at index i of the first axis,
// e.g. one row of a plane.
func (v *View) Sub(i int) *View {
	checkRank(len(v.shape), 1)
	checkIndex(v.shape[:1], []int{i})
	return &View{
		ptr:     unsafe.Add(v.ptr, i*v.strides[0]),
		shape:   v.shape[1:],
		strides: v.strides[1:],
	}
}

// Region returns rows [lo, hi) of the first axis, the slice a filter job
// works on.
func (v *View) Region(lo, hi int) *View {
	checkRank(len(v.shape), 1)
	checkRange(lo, hi, v.shape[0])
	shape := append([]int{hi - lo}, v.shape[1:]...)
	return &View{
		ptr:     unsafe.Add(v.ptr, lo*v.strides[0]),
		shape:   shape,
		strides: v.strides,
	}
}

// CopyFrom copies src into v. Both views must have the same shape.
func (v *View) CopyFrom(src *View) {
	checkShape(v.shape, src.shape)
	if v.Contiguous() && src.Contiguous() {
		copy(v.Bytes(), src.Bytes())
		return
	}
	if len(v.shape) == 0 {
		v.Set(src.At())
		return
	}
	if len(v.shape) == 1 {
		for i := 0; i < v.shape[0]; i++ {
			v.Set(src.At(i), i)
		}
		return
	}
	for i := 0; i < v.shape[0]; i++ {
		v.Sub(i).CopyFrom(src.Sub(i))
	}
}

// Fill sets every element to b.
func (v *View) Fill(b byte) {
	if v.Contiguous() {
		buf := v.Bytes()
		for i := range buf {
			buf[i] = b
		}
		return
	}
	if len(v.shape) == 1 {
		for i := 0; i < v.shape[0]; i++ {
			v.Set(b, i)
		}
		return
	}
	for i := 0; i < v.shape[0]; i++ {
		v.Sub(i).Fill(b)
	}
}

func (v *View) String() string {
	return fmt.Sprintf("buffer.View<shape=%v strides=%v>", v.shape, v.strides)
}
