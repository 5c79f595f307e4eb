package abi

import (
	"fmt"

	"github.com/obinnaokechukwu/ffbind/internal/platform"
	"github.com/obinnaokechukwu/ffbind/version"
)

// NumDataPointers is AV_NUM_DATA_POINTERS.
const NumDataPointers = 8

// MaxComponents is the length of AVPixFmtDescriptor.comp.
const MaxComponents = 4

// linkReservedSize is the size of AVFilterLink.reserved.
const linkReservedSize = 0xF000

// Layouts holds every mirrored struct for one set of capabilities.
// It is built once per process and read-only afterwards.
type Layouts struct {
	caps version.Capabilities

	Rational      *Layout
	Frame         *Layout
	Component     *Layout
	PixFmtDesc    *Layout
	FilterPad     *Layout
	FormatsConfig *Layout
	FilterLink    *Layout
	FilterContext *Layout

	frame   frameOffsets
	comp    compOffsets
	pixdesc pixdescOffsets
	pad     padOffsets
	link    linkOffsets
	ctx     ctxOffsets
}

// NewLayouts lays out all mirrored structs for caps.
func NewLayouts(caps version.Capabilities) (*Layouts, error) {
	if !platform.Is64Bit {
		return nil, fmt.Errorf("%w: only 64-bit targets are mirrored", ErrBadLayout)
	}

	ls := &Layouts{caps: caps}
	var err error

	if ls.Rational, err = NewLayout("AVRational", rationalDecls()); err != nil {
		return nil, err
	}
	if ls.Frame, err = NewLayout("AVFrame", frameDecls(caps, ls.Rational)); err != nil {
		return nil, err
	}
	if ls.Component, err = NewLayout("AVComponentDescriptor", componentDecls(caps)); err != nil {
		return nil, err
	}
	if ls.PixFmtDesc, err = NewLayout("AVPixFmtDescriptor", pixFmtDescDecls(ls.Component)); err != nil {
		return nil, err
	}
	if ls.FilterPad, err = NewLayout("AVFilterPad", filterPadDecls(caps)); err != nil {
		return nil, err
	}
	if ls.FormatsConfig, err = NewLayout("AVFilterFormatsConfig", formatsConfigDecls()); err != nil {
		return nil, err
	}
	if ls.FilterLink, err = NewLayout("AVFilterLink", filterLinkDecls(ls.Rational, ls.FormatsConfig)); err != nil {
		return nil, err
	}
	if ls.FilterContext, err = NewLayout("AVFilterContext", filterContextDecls()); err != nil {
		return nil, err
	}

	ls.frame = newFrameOffsets(ls.Frame)
	ls.comp = newCompOffsets(ls.Component)
	ls.pixdesc = newPixdescOffsets(ls.PixFmtDesc)
	ls.pad = newPadOffsets(ls.FilterPad)
	ls.link = newLinkOffsets(ls.FilterLink)
	ls.ctx = newCtxOffsets(ls.FilterContext)
	return ls, nil
}

// Capabilities returns the flags the layouts were built with.
func (ls *Layouts) Capabilities() version.Capabilities {
	return ls.caps
}

func rationalDecls() []Decl {
	return []Decl{
		{"num", Int32},
		{"den", Int32},
	}
}

// frameDecls mirrors struct AVFrame from libavutil/frame.h.
func frameDecls(caps version.Capabilities, rational *Layout) []Decl {
	decls := []Decl{
		{"data", Array(Pointer, NumDataPointers)},
		{"linesize", Array(Int32, NumDataPointers)},
		{"extended_data", Pointer},
		{"width", Int32},
		{"height", Int32},
		{"nb_samples", Int32},
		{"format", Int32},
		{"key_frame", Int32},
		{"pict_type", Int32},
		{"sample_aspect_ratio", Struct(rational)},
		{"pts", Int64},
	}
	decls = append(decls, When(caps.PktPTS,
		Decl{"pkt_pts", Int64},
	)...)
	decls = append(decls,
		Decl{"pkt_dts", Int64},
		Decl{"coded_picture_number", Int32},
		Decl{"display_picture_number", Int32},
		Decl{"quality", Int32},
		Decl{"opaque", Pointer},
	)
	decls = append(decls, When(caps.ErrorFrame,
		Decl{"error", Array(Uint64, NumDataPointers)},
	)...)
	decls = append(decls,
		Decl{"repeat_pict", Int32},
		Decl{"interlaced_frame", Int32},
		Decl{"top_field_first", Int32},
		Decl{"palette_has_changed", Int32},
		Decl{"reordered_opaque", Int64},
		Decl{"sample_rate", Int32},
		Decl{"channel_layout", Uint64},
		Decl{"buf", Array(Pointer, NumDataPointers)},
		Decl{"extended_buf", Pointer},
		Decl{"nb_extended_buf", Int32},
		Decl{"side_data", Pointer},
		Decl{"nb_side_data", Int32},
		Decl{"flags", Int32},
		Decl{"color_range", Int32},
		Decl{"color_primaries", Int32},
		Decl{"color_trc", Int32},
		Decl{"colorspace", Int32},
		Decl{"chroma_location", Int32},
		Decl{"best_effort_timestamp", Int64},
		Decl{"pkt_pos", Int64},
		Decl{"pkt_duration", Int64},
		Decl{"metadata", Pointer},
		Decl{"decode_error_flags", Int32},
		Decl{"channels", Int32},
		Decl{"pkt_size", Int32},
	)
	decls = append(decls, When(caps.FrameQP,
		Decl{"qscale_table", Pointer},
		Decl{"qstride", Int32},
		Decl{"qscale_type", Int32},
		Decl{"qp_table_buf", Pointer},
	)...)
	decls = append(decls,
		Decl{"hw_frames_ctx", Pointer},
		Decl{"opaque_ref", Pointer},
		Decl{"crop_top", Size},
		Decl{"crop_bottom", Size},
		Decl{"crop_left", Size},
		Decl{"crop_right", Size},
		Decl{"private_ref", Pointer},
	)
	return decls
}

// componentDecls mirrors struct AVComponentDescriptor from libavutil/pixdesc.h.
func componentDecls(caps version.Capabilities) []Decl {
	decls := []Decl{
		{"plane", Int32},
		{"step", Int32},
		{"offset", Int32},
		{"shift", Int32},
		{"depth", Int32},
	}
	return append(decls, When(caps.PlusOneMinusOne,
		Decl{"step_minus1", Int32},
		Decl{"depth_minus1", Int32},
		Decl{"offset_plus1", Int32},
	)...)
}

func pixFmtDescDecls(component *Layout) []Decl {
	return []Decl{
		{"name", Pointer},
		{"nb_components", Uint8},
		{"log2_chroma_w", Uint8},
		{"log2_chroma_h", Uint8},
		{"flags", Uint64},
		{"comp", Array(Struct(component), MaxComponents)},
		{"alias", Pointer},
	}
}

// filterPadDecls mirrors struct AVFilterPad (libavfilter/internal.h).
// Only name, type and the writable marker are read; the callbacks are kept
// so the element stride of pad arrays is right. libavfilter 8 folded
// needs_writable into flags and get_video_buffer/get_audio_buffer into a
// union.
func filterPadDecls(caps version.Capabilities) []Decl {
	decls := []Decl{
		{"name", Pointer},
		{"type", Int32},
	}
	if caps.PadFlags {
		return append(decls,
			Decl{"flags", Int32},
			Decl{"get_buffer", Pointer},
			Decl{"filter_frame", Pointer},
			Decl{"request_frame", Pointer},
			Decl{"config_props", Pointer},
		)
	}
	return append(decls,
		Decl{"get_video_buffer", Pointer},
		Decl{"get_audio_buffer", Pointer},
		Decl{"filter_frame", Pointer},
		Decl{"request_frame", Pointer},
		Decl{"config_props", Pointer},
		Decl{"needs_writable", Int32},
	)
}

func formatsConfigDecls() []Decl {
	return []Decl{
		{"formats", Pointer},
		{"samplerates", Pointer},
		{"channel_layouts", Pointer},
	}
}

// filterLinkDecls mirrors struct AVFilterLink from libavfilter/avfilter.h.
// The reserved tail absorbs private fields appended by the library.
func filterLinkDecls(rational, formatsConfig *Layout) []Decl {
	return []Decl{
		{"src", Pointer},
		{"srcpad", Pointer},
		{"dst", Pointer},
		{"dstpad", Pointer},
		{"type", Int32},
		{"w", Int32},
		{"h", Int32},
		{"sample_aspect_ratio", Struct(rational)},
		{"channel_layout", Uint64},
		{"sample_rate", Int32},
		{"format", Int32},
		{"time_base", Struct(rational)},
		{"incfg", Struct(formatsConfig)},
		{"outcfg", Struct(formatsConfig)},
		{"init_state", Int32},
		{"graph", Pointer},
		{"current_pts", Int64},
		{"current_pts_us", Int64},
		{"age_index", Int32},
		{"frame_rate", Struct(rational)},
		{"partial_buf", Pointer},
		{"partial_buf_size", Int32},
		{"min_samples", Int32},
		{"max_samples", Int32},
		{"channels", Int32},
		{"frame_count_in", Int64},
		{"frame_count_out", Int64},
		{"frame_pool", Pointer},
		{"frame_wanted_out", Int32},
		{"hw_frames_ctx", Pointer},
		{"reserved", Array(Int8, linkReservedSize)},
	}
}

// filterContextDecls mirrors struct AVFilterContext from libavfilter/avfilter.h.
func filterContextDecls() []Decl {
	return []Decl{
		{"av_class", Pointer},
		{"filter", Pointer},
		{"name", Pointer},
		{"input_pads", Pointer},
		{"inputs", Pointer},
		{"nb_inputs", Uint32},
		{"output_pads", Pointer},
		{"outputs", Pointer},
		{"nb_outputs", Uint32},
		{"priv", Pointer},
		{"graph", Pointer},
		{"thread_type", Int32},
		{"internal", Pointer},
		{"command_queue", Pointer},
		{"enable_str", Pointer},
		{"enable", Pointer},
		{"var_values", Pointer},
		{"is_disabled", Int32},
		{"hw_device_ctx", Pointer},
		{"nb_threads", Int32},
		{"ready", Uint32},
		{"extra_hw_frames", Int32},
	}
}
