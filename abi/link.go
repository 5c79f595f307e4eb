package abi

import (
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/avutil"
)

// padFlagNeedsWritable is AVFILTERPAD_FLAG_NEEDS_WRITABLE.
const padFlagNeedsWritable = 1 << 0

type padOffsets struct {
	name, typ     uintptr
	needsWritable optOffset
	flags         optOffset
}

func newPadOffsets(l *Layout) padOffsets {
	return padOffsets{
		name:          l.offset("name"),
		typ:           l.offset("type"),
		needsWritable: l.optional("needs_writable"),
		flags:         l.optional("flags"),
	}
}

type linkOffsets struct {
	src, srcPad, dst, dstPad              uintptr
	typ, w, h, sar, channelLayout         uintptr
	sampleRate, format, timeBase          uintptr
	incfg, outcfg, initState, graph       uintptr
	currentPTS, currentPTSus, ageIndex    uintptr
	frameRate, partialBuf, partialBufSize uintptr
	minSamples, maxSamples, channels      uintptr
	frameCountIn, frameCountOut           uintptr
	framePool, frameWantedOut, hwFrames   uintptr
}

func newLinkOffsets(l *Layout) linkOffsets {
	return linkOffsets{
		src:            l.offset("src"),
		srcPad:         l.offset("srcpad"),
		dst:            l.offset("dst"),
		dstPad:         l.offset("dstpad"),
		typ:            l.offset("type"),
		w:              l.offset("w"),
		h:              l.offset("h"),
		sar:            l.offset("sample_aspect_ratio"),
		channelLayout:  l.offset("channel_layout"),
		sampleRate:     l.offset("sample_rate"),
		format:         l.offset("format"),
		timeBase:       l.offset("time_base"),
		incfg:          l.offset("incfg"),
		outcfg:         l.offset("outcfg"),
		initState:      l.offset("init_state"),
		graph:          l.offset("graph"),
		currentPTS:     l.offset("current_pts"),
		currentPTSus:   l.offset("current_pts_us"),
		ageIndex:       l.offset("age_index"),
		frameRate:      l.offset("frame_rate"),
		partialBuf:     l.offset("partial_buf"),
		partialBufSize: l.offset("partial_buf_size"),
		minSamples:     l.offset("min_samples"),
		maxSamples:     l.offset("max_samples"),
		channels:       l.offset("channels"),
		frameCountIn:   l.offset("frame_count_in"),
		frameCountOut:  l.offset("frame_count_out"),
		framePool:      l.offset("frame_pool"),
		frameWantedOut: l.offset("frame_wanted_out"),
		hwFrames:       l.offset("hw_frames_ctx"),
	}
}

type ctxOffsets struct {
	name, inputPads, inputs, nbInputs    uintptr
	outputPads, outputs, nbOutputs, priv uintptr
	graph, threadType, isDisabled        uintptr
	nbThreads, ready, extraHWFrames      uintptr
}

func newCtxOffsets(l *Layout) ctxOffsets {
	return ctxOffsets{
		name:          l.offset("name"),
		inputPads:     l.offset("input_pads"),
		inputs:        l.offset("inputs"),
		nbInputs:      l.offset("nb_inputs"),
		outputPads:    l.offset("output_pads"),
		outputs:       l.offset("outputs"),
		nbOutputs:     l.offset("nb_outputs"),
		priv:          l.offset("priv"),
		graph:         l.offset("graph"),
		threadType:    l.offset("thread_type"),
		isDisabled:    l.offset("is_disabled"),
		nbThreads:     l.offset("nb_threads"),
		ready:         l.offset("ready"),
		extraHWFrames: l.offset("extra_hw_frames"),
	}
}

// FilterLink overlays an AVFilterLink.
type FilterLink struct {
	ptr unsafe.Pointer
	m   *Mirror
}

// FormatsConfig is the pointer triple of an AVFilterFormatsConfig.
type FormatsConfig struct {
	Formats, SampleRates, ChannelLayouts unsafe.Pointer
}

func (l *FilterLink) off() *linkOffsets { return &l.m.layouts.link }

// Pointer returns the native link address.
func (l *FilterLink) Pointer() unsafe.Pointer { return l.ptr }

// Src returns the filter on the input side of the link.
func (l *FilterLink) Src() *FilterContext { return l.m.ContextAt(loadPtr(l.ptr, l.off().src)) }

// Dst returns the filter on the output side of the link.
func (l *FilterLink) Dst() *FilterContext { return l.m.ContextAt(loadPtr(l.ptr, l.off().dst)) }

func (l *FilterLink) SrcPad() *FilterPad { return l.m.PadAt(loadPtr(l.ptr, l.off().srcPad)) }
func (l *FilterLink) DstPad() *FilterPad { return l.m.PadAt(loadPtr(l.ptr, l.off().dstPad)) }

func (l *FilterLink) Type() avutil.MediaType {
	return avutil.MediaType(load[int32](l.ptr, l.off().typ))
}

func (l *FilterLink) W() int32             { return load[int32](l.ptr, l.off().w) }
func (l *FilterLink) SetW(v int32)         { store(l.ptr, l.off().w, v) }
func (l *FilterLink) H() int32             { return load[int32](l.ptr, l.off().h) }
func (l *FilterLink) SetH(v int32)         { store(l.ptr, l.off().h, v) }
func (l *FilterLink) FormatID() int32      { return load[int32](l.ptr, l.off().format) }
func (l *FilterLink) SetFormatID(id int32) { store(l.ptr, l.off().format, id) }

// Format resolves the negotiated format through the mirror's table.
func (l *FilterLink) Format() (*PixFmtDescriptor, bool) { return l.m.format(l.FormatID()) }

func (l *FilterLink) SampleAspectRatio() avutil.Rational {
	return load[avutil.Rational](l.ptr, l.off().sar)
}

func (l *FilterLink) SetSampleAspectRatio(r avutil.Rational) { store(l.ptr, l.off().sar, r) }

func (l *FilterLink) TimeBase() avutil.Rational {
	return load[avutil.Rational](l.ptr, l.off().timeBase)
}

func (l *FilterLink) SetTimeBase(r avutil.Rational) { store(l.ptr, l.off().timeBase, r) }

func (l *FilterLink) FrameRate() avutil.Rational {
	return load[avutil.Rational](l.ptr, l.off().frameRate)
}

func (l *FilterLink) SetFrameRate(r avutil.Rational) { store(l.ptr, l.off().frameRate, r) }

func (l *FilterLink) ChannelLayout() uint64 { return load[uint64](l.ptr, l.off().channelLayout) }
func (l *FilterLink) SampleRate() int32     { return load[int32](l.ptr, l.off().sampleRate) }
func (l *FilterLink) Channels() int32       { return load[int32](l.ptr, l.off().channels) }
func (l *FilterLink) MinSamples() int32     { return load[int32](l.ptr, l.off().minSamples) }
func (l *FilterLink) MaxSamples() int32     { return load[int32](l.ptr, l.off().maxSamples) }
func (l *FilterLink) InitState() int32      { return load[int32](l.ptr, l.off().initState) }
func (l *FilterLink) CurrentPTS() int64     { return load[int64](l.ptr, l.off().currentPTS) }
func (l *FilterLink) AgeIndex() int32       { return load[int32](l.ptr, l.off().ageIndex) }

// CurrentPTSIn returns current_pts converted from the link time base to tb.
func (l *FilterLink) CurrentPTSIn(tb avutil.Rational) int64 {
	return avutil.Rescale(l.CurrentPTS(), l.TimeBase(), tb)
}

// CurrentPTSMicros returns current_pts_us, the last pts in AV_TIME_BASE units.
func (l *FilterLink) CurrentPTSMicros() int64 {
	return load[int64](l.ptr, l.off().currentPTSus)
}

// FrameCounts returns frame_count_in and frame_count_out.
func (l *FilterLink) FrameCounts() (in, out int64) {
	return load[int64](l.ptr, l.off().frameCountIn), load[int64](l.ptr, l.off().frameCountOut)
}

func (l *FilterLink) FrameWantedOut() bool { return load[int32](l.ptr, l.off().frameWantedOut) != 0 }

// PartialBuf returns the partial audio buffer and its size.
func (l *FilterLink) PartialBuf() (unsafe.Pointer, int32) {
	return loadPtr(l.ptr, l.off().partialBuf), load[int32](l.ptr, l.off().partialBufSize)
}

func (l *FilterLink) Graph() unsafe.Pointer       { return loadPtr(l.ptr, l.off().graph) }
func (l *FilterLink) FramePool() unsafe.Pointer   { return loadPtr(l.ptr, l.off().framePool) }
func (l *FilterLink) HWFramesCtx() unsafe.Pointer { return loadPtr(l.ptr, l.off().hwFrames) }

// InConfig returns the formats the destination filter accepts.
func (l *FilterLink) InConfig() FormatsConfig { return l.formatsConfig(l.off().incfg) }

// OutConfig returns the formats the source filter offers.
func (l *FilterLink) OutConfig() FormatsConfig { return l.formatsConfig(l.off().outcfg) }

func (l *FilterLink) formatsConfig(base uintptr) FormatsConfig {
	fc := l.m.layouts.FormatsConfig
	return FormatsConfig{
		Formats:        loadPtr(l.ptr, base+fc.offset("formats")),
		SampleRates:    loadPtr(l.ptr, base+fc.offset("samplerates")),
		ChannelLayouts: loadPtr(l.ptr, base+fc.offset("channel_layouts")),
	}
}

func (l *FilterLink) String() string {
	return fmt.Sprintf("AVFilterLink<%dx%d fmt=%d>", l.W(), l.H(), l.FormatID())
}

// FilterContext overlays an AVFilterContext.
type FilterContext struct {
	ptr unsafe.Pointer
	m   *Mirror
}

func (c *FilterContext) off() *ctxOffsets { return &c.m.layouts.ctx }

func (c *FilterContext) Pointer() unsafe.Pointer { return c.ptr }

// Name returns the instance name, e.g. "Parsed_scale_0".
func (c *FilterContext) Name() string { return GoString(loadPtr(c.ptr, c.off().name)) }

func (c *FilterContext) NbInputs() int  { return int(load[uint32](c.ptr, c.off().nbInputs)) }
func (c *FilterContext) NbOutputs() int { return int(load[uint32](c.ptr, c.off().nbOutputs)) }

// Input returns inputs[i], or nil when i is out of range or unlinked.
func (c *FilterContext) Input(i int) *FilterLink {
	return c.link(c.off().inputs, i, c.NbInputs())
}

// Output returns outputs[i], or nil when i is out of range or unlinked.
func (c *FilterContext) Output(i int) *FilterLink {
	return c.link(c.off().outputs, i, c.NbOutputs())
}

func (c *FilterContext) link(arr uintptr, i, n int) *FilterLink {
	if i < 0 || i >= n {
		return nil
	}
	base := loadPtr(c.ptr, arr)
	if base == nil {
		return nil
	}
	return c.m.LinkAt(*(*unsafe.Pointer)(unsafe.Add(base, uintptr(i)*unsafe.Sizeof(base))))
}

// InputPad returns input_pads[i], or nil when out of range.
func (c *FilterContext) InputPad(i int) *FilterPad {
	return c.pad(c.off().inputPads, i, c.NbInputs())
}

// OutputPad returns output_pads[i], or nil when out of range.
func (c *FilterContext) OutputPad(i int) *FilterPad {
	return c.pad(c.off().outputPads, i, c.NbOutputs())
}

func (c *FilterContext) pad(arr uintptr, i, n int) *FilterPad {
	if i < 0 || i >= n {
		return nil
	}
	base := loadPtr(c.ptr, arr)
	if base == nil {
		return nil
	}
	return c.m.PadAt(unsafe.Add(base, uintptr(i)*c.m.layouts.FilterPad.Size()))
}

func (c *FilterContext) Priv() unsafe.Pointer  { return loadPtr(c.ptr, c.off().priv) }
func (c *FilterContext) Graph() unsafe.Pointer { return loadPtr(c.ptr, c.off().graph) }
func (c *FilterContext) ThreadType() int32     { return load[int32](c.ptr, c.off().threadType) }
func (c *FilterContext) NbThreads() int32      { return load[int32](c.ptr, c.off().nbThreads) }
func (c *FilterContext) IsDisabled() bool      { return load[int32](c.ptr, c.off().isDisabled) != 0 }
func (c *FilterContext) Ready() uint32         { return load[uint32](c.ptr, c.off().ready) }
func (c *FilterContext) ExtraHWFrames() int32  { return load[int32](c.ptr, c.off().extraHWFrames) }

func (c *FilterContext) String() string {
	return fmt.Sprintf("AVFilterContext<%s>", c.Name())
}

// FilterPad overlays an AVFilterPad. Pads are static filter definitions.
type FilterPad struct {
	ptr unsafe.Pointer
	m   *Mirror
}

func (p *FilterPad) Pointer() unsafe.Pointer { return p.ptr }

func (p *FilterPad) Name() string {
	return GoString(loadPtr(p.ptr, p.m.layouts.pad.name))
}

func (p *FilterPad) Type() avutil.MediaType {
	return avutil.MediaType(load[int32](p.ptr, p.m.layouts.pad.typ))
}

// NeedsWritable reports needs_writable, or the NEEDS_WRITABLE bit of flags
// on libavfilter 8.
func (p *FilterPad) NeedsWritable() bool {
	o := p.m.layouts.pad
	if o.flags.ok {
		return load[int32](p.ptr, o.flags.off)&padFlagNeedsWritable != 0
	}
	return load[int32](p.ptr, o.needsWritable.off) != 0
}
