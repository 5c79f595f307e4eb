package fakeav

import (
	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
)

// NewLink returns a video AVFilterLink of w x h in format.
func NewLink(ls *abi.Layouts, w, h int, format int32) *Block {
	l := NewBlock(ls.FilterLink, 1)
	l.SetInt32("type", int32(avutil.MediaTypeVideo))
	l.SetInt32("w", int32(w))
	l.SetInt32("h", int32(h))
	l.SetInt32("format", format)
	l.SetRational("sample_aspect_ratio", avutil.NewRational(1, 1))
	l.SetRational("time_base", avutil.NewRational(1, 25))
	l.SetRational("frame_rate", avutil.NewRational(25, 1))
	return l
}

// Pad describes one AVFilterPad.
type Pad struct {
	Name          string
	Type          avutil.MediaType
	NeedsWritable bool
}

// NewPads lays out a pad array.
func NewPads(ls *abi.Layouts, pads ...Pad) *Block {
	if len(pads) == 0 {
		return nil
	}
	arr := NewBlock(ls.FilterPad, len(pads))
	for i, p := range pads {
		b := arr.Index(i)
		b.SetString("name", p.Name)
		b.SetInt32("type", int32(p.Type))
		if !p.NeedsWritable {
			continue
		}
		if ls.FilterPad.Has("flags") {
			b.SetInt32("flags", 1)
		} else {
			b.SetInt32("needs_writable", 1)
		}
	}
	return arr
}

// NewContext returns an AVFilterContext named name with the given pads and
// links. Each link gets its dst (inputs) or src (outputs) pointed back at
// the context and its pad pointed at the matching pad.
func NewContext(ls *abi.Layouts, name string, inPads, outPads []Pad, inputs, outputs []*Block) *Block {
	c := NewBlock(ls.FilterContext, 1)
	c.SetString("name", name)

	ip := NewPads(ls, inPads...)
	op := NewPads(ls, outPads...)
	c.SetBlock("input_pads", ip)
	c.SetBlock("output_pads", op)

	arr, keep := PointerArray(inputs...)
	c.SetPointer("inputs", arr, keep)
	c.SetUint32("nb_inputs", uint32(len(inputs)))
	arr, keep = PointerArray(outputs...)
	c.SetPointer("outputs", arr, keep)
	c.SetUint32("nb_outputs", uint32(len(outputs)))
	c.SetInt32("nb_threads", 1)

	for i, l := range inputs {
		l.SetPointer("dst", c.Pointer(), nil)
		if ip != nil && i < len(inPads) {
			l.SetPointer("dstpad", ip.Index(i).Pointer(), nil)
		}
	}
	for i, l := range outputs {
		l.SetPointer("src", c.Pointer(), nil)
		if op != nil && i < len(outPads) {
			l.SetPointer("srcpad", op.Index(i).Pointer(), nil)
		}
	}
	return c
}
