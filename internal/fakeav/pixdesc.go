package fakeav

import (
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
)

// Comp describes one AVComponentDescriptor.
type Comp struct {
	Plane, Step, Offset, Shift, Depth int32
}

// Format describes one AVPixFmtDescriptor and the id the library assigns it.
type Format struct {
	ID          int32
	Name        string
	Alias       string
	Log2ChromaW uint8
	Log2ChromaH uint8
	Flags       uint64
	Components  []Comp
}

// StandardFormats returns a subset of the libavutil format table, with
// the ids libavutil 56 and 57 share, in enumeration order.
func StandardFormats() []Format {
	planar := avutil.PixFmtFlagPlanar
	rgb := avutil.PixFmtFlagRGB
	return []Format{
		{ID: 0, Name: "yuv420p", Log2ChromaW: 1, Log2ChromaH: 1, Flags: planar,
			Components: []Comp{{0, 1, 0, 0, 8}, {1, 1, 0, 0, 8}, {2, 1, 0, 0, 8}}},
		{ID: 1, Name: "yuyv422", Log2ChromaW: 1,
			Components: []Comp{{0, 2, 0, 0, 8}, {0, 4, 1, 0, 8}, {0, 4, 3, 0, 8}}},
		{ID: 2, Name: "rgb24", Flags: rgb,
			Components: []Comp{{0, 3, 0, 0, 8}, {0, 3, 1, 0, 8}, {0, 3, 2, 0, 8}}},
		{ID: 3, Name: "bgr24", Flags: rgb,
			Components: []Comp{{0, 3, 2, 0, 8}, {0, 3, 1, 0, 8}, {0, 3, 0, 0, 8}}},
		{ID: 5, Name: "yuv444p", Flags: planar,
			Components: []Comp{{0, 1, 0, 0, 8}, {1, 1, 0, 0, 8}, {2, 1, 0, 0, 8}}},
		{ID: 8, Name: "gray", Alias: "y8",
			Components: []Comp{{0, 1, 0, 0, 8}}},
		{ID: 23, Name: "nv12", Log2ChromaW: 1, Log2ChromaH: 1, Flags: planar,
			Components: []Comp{{0, 1, 0, 0, 8}, {1, 2, 0, 0, 8}, {1, 2, 1, 0, 8}}},
		{ID: 26, Name: "rgba", Flags: rgb | avutil.PixFmtFlagAlpha,
			Components: []Comp{{0, 4, 0, 0, 8}, {0, 4, 1, 0, 8}, {0, 4, 2, 0, 8}, {0, 4, 3, 0, 8}}},
		{ID: 30, Name: "gray16le", Alias: "y16le",
			Components: []Comp{{0, 2, 0, 0, 16}}},
	}
}

// FormatTable is a contiguous native descriptor array with the
// av_pix_fmt_desc_next / av_pix_fmt_desc_get_id iteration contract. It
// satisfies pixfmt.Source.
type FormatTable struct {
	descs *Block
	n     int
	ids   []int32
}

// NewFormatTable lays out formats for ls.
func NewFormatTable(ls *abi.Layouts, formats []Format) *FormatTable {
	t := &FormatTable{n: len(formats)}
	if len(formats) == 0 {
		return t
	}
	t.descs = NewBlock(ls.PixFmtDesc, len(formats))
	legacy := ls.Capabilities().PlusOneMinusOne
	for i, f := range formats {
		d := t.descs.Index(i)
		d.SetString("name", f.Name)
		d.SetString("alias", f.Alias)
		d.SetUint8("nb_components", uint8(len(f.Components)))
		d.SetUint8("log2_chroma_w", f.Log2ChromaW)
		d.SetUint8("log2_chroma_h", f.Log2ChromaH)
		d.SetUint64("flags", f.Flags)
		for j, c := range f.Components {
			writeComp(d.Elem("comp", j), c, legacy)
		}
		t.ids = append(t.ids, f.ID)
	}
	return t
}

func writeComp(b *Block, c Comp, legacy bool) {
	b.SetInt32("plane", c.Plane)
	b.SetInt32("step", c.Step)
	b.SetInt32("offset", c.Offset)
	b.SetInt32("shift", c.Shift)
	b.SetInt32("depth", c.Depth)
	if legacy {
		b.SetInt32("step_minus1", c.Step-1)
		b.SetInt32("depth_minus1", c.Depth-1)
		b.SetInt32("offset_plus1", c.Offset+1)
	}
}

// Len returns the number of descriptors.
func (t *FormatTable) Len() int { return t.n }

// At returns the address of descriptor i.
func (t *FormatTable) At(i int) unsafe.Pointer { return t.descs.Index(i).Pointer() }

func (t *FormatTable) index(desc unsafe.Pointer) int {
	if t.n == 0 || desc == nil {
		return -1
	}
	off := uintptr(desc) - uintptr(t.descs.Pointer())
	stride := t.descs.Layout().Size()
	i := int(off / stride)
	if off%stride != 0 || i < 0 || i >= t.n {
		return -1
	}
	return i
}

// Next returns the descriptor after prev, the first one for nil, and nil
// past the end.
func (t *FormatTable) Next(prev unsafe.Pointer) unsafe.Pointer {
	if prev == nil {
		if t.n == 0 {
			return nil
		}
		return t.At(0)
	}
	i := t.index(prev)
	if i < 0 || i+1 >= t.n {
		return nil
	}
	return t.At(i + 1)
}

// ID returns the format id of desc, or -1 for a pointer outside the table.
func (t *FormatTable) ID(desc unsafe.Pointer) int32 {
	i := t.index(desc)
	if i < 0 {
		return -1
	}
	return t.ids[i]
}
