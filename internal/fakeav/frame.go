package fakeav

import (
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/abi"
)

// Frame is an AVFrame laid out for one set of layouts.
type Frame struct {
	*Block
	planes [abi.NumDataPointers][]byte
}

// NewFrame returns a zeroed AVFrame with format set to -1, as
// av_frame_alloc leaves it.
func NewFrame(ls *abi.Layouts) *Frame {
	f := &Frame{Block: NewBlock(ls.Frame, 1)}
	f.SetInt32("format", -1)
	return f
}

// NewVideoFrame returns a w x h frame of format with plane 0 allocated as
// linesize*h bytes.
func NewVideoFrame(ls *abi.Layouts, w, h int, format int32, linesize int) *Frame {
	f := NewFrame(ls)
	f.SetInt32("width", int32(w))
	f.SetInt32("height", int32(h))
	f.SetInt32("format", format)
	f.AllocPlane(0, linesize, h)
	return f
}

// AllocPlane allocates rows*linesize bytes for data[plane].
func (f *Frame) AllocPlane(plane, linesize, rows int) []byte {
	buf := make([]byte, linesize*rows)
	f.SetPlane(plane, buf, linesize)
	return buf
}

// SetPlane points data[plane] at buf.
func (f *Frame) SetPlane(plane int, buf []byte, linesize int) {
	f.planes[plane] = buf
	var p unsafe.Pointer
	if len(buf) > 0 {
		p = unsafe.Pointer(&buf[0])
	}
	f.SetPointerAt("data", plane, p, buf)
	f.SetInt32At("linesize", plane, int32(linesize))
}

// PlaneBytes returns the Go memory behind data[plane].
func (f *Frame) PlaneBytes(plane int) []byte { return f.planes[plane] }
