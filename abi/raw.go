package abi

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrNilPointer is returned when an overlay is requested over a nil view.
	ErrNilPointer = errors.New("ffbind: overlay over nil pointer")

	// ErrShortBuffer is returned when a raw view of known size is smaller
	// than the struct being overlaid.
	ErrShortBuffer = errors.New("ffbind: raw view smaller than struct")
)

// Raw is a borrowed view of native struct memory, as handed over by the
// host. It never owns the memory. Size is 0 when the host passed a bare
// pointer.
type Raw struct {
	ptr  unsafe.Pointer
	size uintptr
}

// RawPointer wraps a bare native pointer of unknown extent.
func RawPointer(p unsafe.Pointer) Raw {
	return Raw{ptr: p}
}

// RawBytes wraps a byte slice. The slice must outlive every overlay made
// from it.
func RawBytes(b []byte) Raw {
	if len(b) == 0 {
		return Raw{}
	}
	return Raw{ptr: unsafe.Pointer(&b[0]), size: uintptr(len(b))}
}

// Pointer returns the start of the view.
func (r Raw) Pointer() unsafe.Pointer { return r.ptr }

// Size returns the known extent of the view, or 0 if unknown.
func (r Raw) Size() uintptr { return r.size }

// IsNil reports whether the view points nowhere.
func (r Raw) IsNil() bool { return r.ptr == nil }

func (r Raw) fits(l *Layout) error {
	if r.ptr == nil {
		return fmt.Errorf("%w: %s", ErrNilPointer, l.Name())
	}
	if r.size != 0 && r.size < l.Size() {
		return fmt.Errorf("%w: %s needs %d bytes, view has %d", ErrShortBuffer, l.Name(), l.Size(), r.size)
	}
	return nil
}

func load[T any](base unsafe.Pointer, off uintptr) T {
	return *(*T)(unsafe.Add(base, off))
}

func store[T any](base unsafe.Pointer, off uintptr, v T) {
	*(*T)(unsafe.Add(base, off)) = v
}

func loadPtr(base unsafe.Pointer, off uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(base, off))
}

func storePtr(base unsafe.Pointer, off uintptr, p unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Add(base, off)) = p
}

// maxCStringLen bounds reads of native strings that lack a terminator.
const maxCStringLen = 4096

// GoString copies a NUL-terminated native string.
func GoString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for n < maxCStringLen && *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
