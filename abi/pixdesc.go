package abi

import (
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/avutil"
)

type compOffsets struct {
	plane, step, offset, shift, depth    uintptr
	stepMinus1, depthMinus1, offsetPlus1 optOffset
}

func newCompOffsets(l *Layout) compOffsets {
	return compOffsets{
		plane:       l.offset("plane"),
		step:        l.offset("step"),
		offset:      l.offset("offset"),
		shift:       l.offset("shift"),
		depth:       l.offset("depth"),
		stepMinus1:  l.optional("step_minus1"),
		depthMinus1: l.optional("depth_minus1"),
		offsetPlus1: l.optional("offset_plus1"),
	}
}

type pixdescOffsets struct {
	name, nbComponents, log2ChromaW, log2ChromaH uintptr
	flags, comp, alias                           uintptr
}

func newPixdescOffsets(l *Layout) pixdescOffsets {
	return pixdescOffsets{
		name:         l.offset("name"),
		nbComponents: l.offset("nb_components"),
		log2ChromaW:  l.offset("log2_chroma_w"),
		log2ChromaH:  l.offset("log2_chroma_h"),
		flags:        l.offset("flags"),
		comp:         l.offset("comp"),
		alias:        l.offset("alias"),
	}
}

// PixFmtDescriptor is a read-only overlay on a native AVPixFmtDescriptor,
// carrying the AVPixelFormat id resolved at enumeration time.
type PixFmtDescriptor struct {
	ptr   unsafe.Pointer
	l     *Layouts
	id    int32
	name  string
	alias string
}

// NewPixFmtDescriptor overlays p. Descriptors are immutable, so the name
// and alias strings are copied once here.
func NewPixFmtDescriptor(p unsafe.Pointer, l *Layouts, id int32) *PixFmtDescriptor {
	if p == nil {
		return nil
	}
	o := &l.pixdesc
	return &PixFmtDescriptor{
		ptr:   p,
		l:     l,
		id:    id,
		name:  GoString(loadPtr(p, o.name)),
		alias: GoString(loadPtr(p, o.alias)),
	}
}

// Pointer returns the native descriptor address.
func (d *PixFmtDescriptor) Pointer() unsafe.Pointer { return d.ptr }

// ID returns the AVPixelFormat value.
func (d *PixFmtDescriptor) ID() int32 { return d.id }

// PixelFormat returns the id as an avutil.PixelFormat.
func (d *PixFmtDescriptor) PixelFormat() avutil.PixelFormat { return avutil.PixelFormat(d.id) }

// Name returns the canonical format name (e.g. "rgb24").
func (d *PixFmtDescriptor) Name() string { return d.name }

// Alias returns the comma-separated alias list, often empty.
func (d *PixFmtDescriptor) Alias() string { return d.alias }

func (d *PixFmtDescriptor) NbComponents() int {
	return int(load[uint8](d.ptr, d.l.pixdesc.nbComponents))
}

func (d *PixFmtDescriptor) Log2ChromaW() int {
	return int(load[uint8](d.ptr, d.l.pixdesc.log2ChromaW))
}

func (d *PixFmtDescriptor) Log2ChromaH() int {
	return int(load[uint8](d.ptr, d.l.pixdesc.log2ChromaH))
}

// Flags returns the AV_PIX_FMT_FLAG_* bits.
func (d *PixFmtDescriptor) Flags() uint64 {
	return load[uint64](d.ptr, d.l.pixdesc.flags)
}

// Component returns comp[i]; i must be below MaxComponents.
func (d *PixFmtDescriptor) Component(i int) ComponentDescriptor {
	if i < 0 || i >= MaxComponents {
		panic(fmt.Sprintf("abi: component index %d out of range", i))
	}
	stride := d.l.Component.Size()
	return ComponentDescriptor{
		ptr: unsafe.Add(d.ptr, d.l.pixdesc.comp+uintptr(i)*stride),
		o:   &d.l.comp,
	}
}

func (d *PixFmtDescriptor) IsBigEndian() bool { return d.Flags()&avutil.PixFmtFlagBE != 0 }
func (d *PixFmtDescriptor) IsPlanar() bool    { return d.Flags()&avutil.PixFmtFlagPlanar != 0 }
func (d *PixFmtDescriptor) IsRGB() bool       { return d.Flags()&avutil.PixFmtFlagRGB != 0 }
func (d *PixFmtDescriptor) HasAlpha() bool    { return d.Flags()&avutil.PixFmtFlagAlpha != 0 }
func (d *PixFmtDescriptor) IsHWAccel() bool   { return d.Flags()&avutil.PixFmtFlagHWAccel != 0 }
func (d *PixFmtDescriptor) IsPaletted() bool  { return d.Flags()&avutil.PixFmtFlagPAL != 0 }

// PlaneCount returns the number of data planes, as av_pix_fmt_count_planes.
func (d *PixFmtDescriptor) PlaneCount() int {
	planes := 0
	for i := 0; i < d.NbComponents(); i++ {
		planes = max(planes, d.Component(i).Plane()+1)
	}
	return planes
}

// BitsPerPixel returns the average bits per pixel, as av_get_bits_per_pixel.
func (d *PixFmtDescriptor) BitsPerPixel() int {
	log2Pixels := d.Log2ChromaW() + d.Log2ChromaH()
	bits := 0
	for c := 0; c < d.NbComponents(); c++ {
		s := log2Pixels
		if c == 1 || c == 2 {
			s = 0
		}
		bits += d.Component(c).Depth() << s
	}
	return bits >> log2Pixels
}

// String returns the format name.
func (d *PixFmtDescriptor) String() string { return d.name }

// GoString identifies the descriptor in %#v output.
func (d *PixFmtDescriptor) GoString() string {
	return fmt.Sprintf("AVPixFmtDescriptor<name=%s id=%d>", d.name, d.id)
}

// ComponentDescriptor overlays one AVComponentDescriptor.
type ComponentDescriptor struct {
	ptr unsafe.Pointer
	o   *compOffsets
}

func (c ComponentDescriptor) Plane() int  { return int(load[int32](c.ptr, c.o.plane)) }
func (c ComponentDescriptor) Step() int   { return int(load[int32](c.ptr, c.o.step)) }
func (c ComponentDescriptor) Offset() int { return int(load[int32](c.ptr, c.o.offset)) }
func (c ComponentDescriptor) Shift() int  { return int(load[int32](c.ptr, c.o.shift)) }
func (c ComponentDescriptor) Depth() int  { return int(load[int32](c.ptr, c.o.depth)) }

// StepMinus1 returns the legacy step_minus1 field when present.
func (c ComponentDescriptor) StepMinus1() (int, bool) { return c.legacy(c.o.stepMinus1) }

// DepthMinus1 returns the legacy depth_minus1 field when present.
func (c ComponentDescriptor) DepthMinus1() (int, bool) { return c.legacy(c.o.depthMinus1) }

// OffsetPlus1 returns the legacy offset_plus1 field when present.
func (c ComponentDescriptor) OffsetPlus1() (int, bool) { return c.legacy(c.o.offsetPlus1) }

func (c ComponentDescriptor) legacy(o optOffset) (int, bool) {
	if !o.ok {
		return 0, false
	}
	return int(load[int32](c.ptr, o.off)), true
}
