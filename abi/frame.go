package abi

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/buffer"
)

// ErrUnknownFormat is returned when a frame's format id has no descriptor.
var ErrUnknownFormat = errors.New("ffbind: frame format has no descriptor")

type frameOffsets struct {
	data, linesize, extendedData                 uintptr
	width, height, nbSamples, format             uintptr
	keyFrame, pictType, sar, pts                 uintptr
	pktPTS                                       optOffset
	pktDTS, codedNumber, displayNumber, quality  uintptr
	opaque                                       uintptr
	errs                                         optOffset
	repeatPict, interlaced, topFieldFirst        uintptr
	sampleRate, channelLayout, flags             uintptr
	bestEffort, pktPos, pktDuration              uintptr
	decodeErrorFlags, channels, pktSize          uintptr
	qscaleTable, qstride, qscaleType, qpTableBuf optOffset
	hwFramesCtx, opaqueRef, privateRef           uintptr
	cropTop, cropBottom, cropLeft, cropRight     uintptr
}

func newFrameOffsets(l *Layout) frameOffsets {
	return frameOffsets{
		data:             l.offset("data"),
		linesize:         l.offset("linesize"),
		extendedData:     l.offset("extended_data"),
		width:            l.offset("width"),
		height:           l.offset("height"),
		nbSamples:        l.offset("nb_samples"),
		format:           l.offset("format"),
		keyFrame:         l.offset("key_frame"),
		pictType:         l.offset("pict_type"),
		sar:              l.offset("sample_aspect_ratio"),
		pts:              l.offset("pts"),
		pktPTS:           l.optional("pkt_pts"),
		pktDTS:           l.offset("pkt_dts"),
		codedNumber:      l.offset("coded_picture_number"),
		displayNumber:    l.offset("display_picture_number"),
		quality:          l.offset("quality"),
		opaque:           l.offset("opaque"),
		errs:             l.optional("error"),
		repeatPict:       l.offset("repeat_pict"),
		interlaced:       l.offset("interlaced_frame"),
		topFieldFirst:    l.offset("top_field_first"),
		sampleRate:       l.offset("sample_rate"),
		channelLayout:    l.offset("channel_layout"),
		flags:            l.offset("flags"),
		bestEffort:       l.offset("best_effort_timestamp"),
		pktPos:           l.offset("pkt_pos"),
		pktDuration:      l.offset("pkt_duration"),
		decodeErrorFlags: l.offset("decode_error_flags"),
		channels:         l.offset("channels"),
		pktSize:          l.offset("pkt_size"),
		qscaleTable:      l.optional("qscale_table"),
		qstride:          l.optional("qstride"),
		qscaleType:       l.optional("qscale_type"),
		qpTableBuf:       l.optional("qp_table_buf"),
		hwFramesCtx:      l.offset("hw_frames_ctx"),
		opaqueRef:        l.offset("opaque_ref"),
		cropTop:          l.offset("crop_top"),
		cropBottom:       l.offset("crop_bottom"),
		cropLeft:         l.offset("crop_left"),
		cropRight:        l.offset("crop_right"),
		privateRef:       l.offset("private_ref"),
	}
}

// Frame is a zero-copy overlay on a host-owned AVFrame. It is valid only
// while the host keeps the frame alive.
type Frame struct {
	ptr unsafe.Pointer
	m   *Mirror
}

// QScale holds the legacy quantizer table fields.
type QScale struct {
	Table  unsafe.Pointer
	Stride int32
	Type   int32
	Buf    unsafe.Pointer
}

// Crop holds the crop margins in pixels.
type Crop struct {
	Top, Bottom, Left, Right uint64
}

func (f *Frame) off() *frameOffsets { return &f.m.layouts.frame }

// Pointer returns the AVFrame address.
func (f *Frame) Pointer() unsafe.Pointer { return f.ptr }

// Data returns data[plane], or nil for an out-of-range plane.
func (f *Frame) Data(plane int) unsafe.Pointer {
	if plane < 0 || plane >= NumDataPointers {
		return nil
	}
	return loadPtr(f.ptr, f.off().data+uintptr(plane)*Pointer.size)
}

// SetData sets data[plane].
func (f *Frame) SetData(plane int, p unsafe.Pointer) {
	if plane < 0 || plane >= NumDataPointers {
		return
	}
	storePtr(f.ptr, f.off().data+uintptr(plane)*Pointer.size, p)
}

// Linesize returns linesize[plane], or 0 for an out-of-range plane.
func (f *Frame) Linesize(plane int) int32 {
	if plane < 0 || plane >= NumDataPointers {
		return 0
	}
	return load[int32](f.ptr, f.off().linesize+uintptr(plane)*Int32.size)
}

// SetLinesize sets linesize[plane].
func (f *Frame) SetLinesize(plane int, v int32) {
	if plane < 0 || plane >= NumDataPointers {
		return
	}
	store(f.ptr, f.off().linesize+uintptr(plane)*Int32.size, v)
}

// Linesizes returns all eight strides.
func (f *Frame) Linesizes() [NumDataPointers]int32 {
	return load[[NumDataPointers]int32](f.ptr, f.off().linesize)
}

// ExtendedData returns the extended_data pointer array.
func (f *Frame) ExtendedData() unsafe.Pointer { return loadPtr(f.ptr, f.off().extendedData) }

func (f *Frame) Width() int32 { return load[int32](f.ptr, f.off().width) }
func (f *Frame) SetWidth(v int32) { store(f.ptr, f.off().width, v) }
func (f *Frame) Height() int32 { return load[int32](f.ptr, f.off().height) }
func (f *Frame) SetHeight(v int32) { store(f.ptr, f.off().height, v) }
func (f *Frame) NbSamples() int32 { return load[int32](f.ptr, f.off().nbSamples) }
func (f *Frame) SetNbSamples(v int32) { store(f.ptr, f.off().nbSamples, v) }
func (f *Frame) FormatID() int32 { return load[int32](f.ptr, f.off().format) }
func (f *Frame) SetFormatID(id int32) { store(f.ptr, f.off().format, id) }
func (f *Frame) SampleRate() int32 { return load[int32](f.ptr, f.off().sampleRate) }
func (f *Frame) SetSampleRate(v int32) { store(f.ptr, f.off().sampleRate, v) }
func (f *Frame) Channels() int32 { return load[int32](f.ptr, f.off().channels) }
func (f *Frame) Flags() int32 { return load[int32](f.ptr, f.off().flags) }
func (f *Frame) Quality() int32 { return load[int32](f.ptr, f.off().quality) }
func (f *Frame) RepeatPict() int32 { return load[int32](f.ptr, f.off().repeatPict) }
func (f *Frame) PktSize() int32 { return load[int32](f.ptr, f.off().pktSize) }

// Format resolves the frame's pixel format through the mirror's table.
func (f *Frame) Format() (*PixFmtDescriptor, bool) {
	return f.m.format(f.FormatID())
}

// SetFormat stores d's id as the frame format.
func (f *Frame) SetFormat(d *PixFmtDescriptor) { f.SetFormatID(d.ID()) }

// KeyFrame reports the key_frame flag.
func (f *Frame) KeyFrame() bool { return load[int32](f.ptr, f.off().keyFrame) != 0 }

// SetKeyFrame sets the key_frame flag.
func (f *Frame) SetKeyFrame(v bool) { store(f.ptr, f.off().keyFrame, boolInt(v)) }

// PictType returns the picture type.
func (f *Frame) PictType() avutil.PictureType {
	return avutil.PictureType(load[int32](f.ptr, f.off().pictType))
}

// Interlaced reports interlaced_frame and top_field_first.
func (f *Frame) Interlaced() (interlaced, topFieldFirst bool) {
	return load[int32](f.ptr, f.off().interlaced) != 0, load[int32](f.ptr, f.off().topFieldFirst) != 0
}

func (f *Frame) SampleAspectRatio() avutil.Rational {
	return load[avutil.Rational](f.ptr, f.off().sar)
}

func (f *Frame) SetSampleAspectRatio(r avutil.Rational) { store(f.ptr, f.off().sar, r) }

func (f *Frame) PTS() int64 { return load[int64](f.ptr, f.off().pts) }
func (f *Frame) SetPTS(v int64) { store(f.ptr, f.off().pts, v) }
func (f *Frame) PktDTS() int64 { return load[int64](f.ptr, f.off().pktDTS) }
func (f *Frame) BestEffortTimestamp() int64 { return load[int64](f.ptr, f.off().bestEffort) }
func (f *Frame) SetBestEffortTimestamp(v int64) { store(f.ptr, f.off().bestEffort, v) }
func (f *Frame) PktPos() int64 { return load[int64](f.ptr, f.off().pktPos) }
func (f *Frame) PktDuration() int64 { return load[int64](f.ptr, f.off().pktDuration) }
func (f *Frame) ChannelLayout() uint64 { return load[uint64](f.ptr, f.off().channelLayout) }
func (f *Frame) SetChannelLayout(v uint64) { store(f.ptr, f.off().channelLayout, v) }
func (f *Frame) DecodeErrorFlags() int32 { return load[int32](f.ptr, f.off().decodeErrorFlags) }

// PictureNumbers returns coded_picture_number and display_picture_number.
func (f *Frame) PictureNumbers() (coded, display int32) {
	return load[int32](f.ptr, f.off().codedNumber), load[int32](f.ptr, f.off().displayNumber)
}

// PktPTS returns pkt_pts when the layout has it.
func (f *Frame) PktPTS() (int64, bool) {
	o := f.off().pktPTS
	if !o.ok {
		return 0, false
	}
	return load[int64](f.ptr, o.off), true
}

// ErrorValue returns error[plane] when the layout has the array.
func (f *Frame) ErrorValue(plane int) (uint64, bool) {
	o := f.off().errs
	if !o.ok || plane < 0 || plane >= NumDataPointers {
		return 0, false
	}
	return load[uint64](f.ptr, o.off+uintptr(plane)*Uint64.size), true
}

// QScale returns the legacy quantizer fields when the layout has them.
func (f *Frame) QScale() (QScale, bool) {
	o := f.off()
	if !o.qscaleTable.ok {
		return QScale{}, false
	}
	return QScale{
		Table:  loadPtr(f.ptr, o.qscaleTable.off),
		Stride: load[int32](f.ptr, o.qstride.off),
		Type:   load[int32](f.ptr, o.qscaleType.off),
		Buf:    loadPtr(f.ptr, o.qpTableBuf.off),
	}, true
}

// Crop returns the crop margins.
func (f *Frame) Crop() Crop {
	o := f.off()
	return Crop{
		Top:    uint64(load[uintptr](f.ptr, o.cropTop)),
		Bottom: uint64(load[uintptr](f.ptr, o.cropBottom)),
		Left:   uint64(load[uintptr](f.ptr, o.cropLeft)),
		Right:  uint64(load[uintptr](f.ptr, o.cropRight)),
	}
}

// SetCrop stores the crop margins.
func (f *Frame) SetCrop(c Crop) {
	o := f.off()
	store(f.ptr, o.cropTop, uintptr(c.Top))
	store(f.ptr, o.cropBottom, uintptr(c.Bottom))
	store(f.ptr, o.cropLeft, uintptr(c.Left))
	store(f.ptr, o.cropRight, uintptr(c.Right))
}

func (f *Frame) Opaque() unsafe.Pointer { return loadPtr(f.ptr, f.off().opaque) }
func (f *Frame) OpaqueRef() unsafe.Pointer { return loadPtr(f.ptr, f.off().opaqueRef) }
func (f *Frame) PrivateRef() unsafe.Pointer { return loadPtr(f.ptr, f.off().privateRef) }
func (f *Frame) HWFramesCtx() unsafe.Pointer { return loadPtr(f.ptr, f.off().hwFramesCtx) }

// Plane returns a zero-copy view of data[plane] with the given shape.
// The caller guarantees the shape fits the allocation.
func (f *Frame) Plane(plane int, shape ...int) *buffer.View {
	return buffer.New(f.Data(plane), shape...)
}

// PackedPlane returns data[plane] as height x (linesize/components) x
// components, the shape of a packed pixel format plane. Rows step by
// linesize, so padding past the last whole pixel is never addressed.
func (f *Frame) PackedPlane(plane int) (*buffer.View, error) {
	desc, ok := f.Format()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownFormat, f.FormatID())
	}
	n := desc.NbComponents()
	if n == 0 {
		return nil, fmt.Errorf("%w: %s has no components", ErrUnknownFormat, desc.Name())
	}
	ls := int(f.Linesize(plane))
	return buffer.NewStrided(f.Data(plane), []int{int(f.Height()), ls / n, n}, []int{ls, n, 1}), nil
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
