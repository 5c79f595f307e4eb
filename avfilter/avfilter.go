//go:build !ios && !android && (amd64 || arm64)

// Package avfilter binds the part of libavfilter needed to build a small
// real graph: allocation, filter lookup and creation, linking,
// configuration and the buffer source/sink frame calls.
package avfilter

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/internal/bindings"
)

// Opaque types
type (
	// Graph represents an AVFilterGraph
	Graph = unsafe.Pointer
	// Context represents an AVFilterContext
	Context = unsafe.Pointer
	// Filter represents an AVFilter
	Filter = unsafe.Pointer
)

var (
	initOnce sync.Once
	initErr  error
)

// Function bindings
var (
	avfilterVersion func() uint32

	avfilterGraphAlloc        func() unsafe.Pointer
	avfilterGraphFree         func(graph *Graph)
	avfilterGraphConfig       func(graph, logCtx unsafe.Pointer) int32
	avfilterGraphCreateFilter func(ctx *Context, filt Filter, name, args *byte, opaque, graph unsafe.Pointer) int32

	avfilterGetByName func(name *byte) unsafe.Pointer
	avfilterLink      func(src Context, srcpad uint32, dst Context, dstpad uint32) int32

	avfilterPadGetName func(pads unsafe.Pointer, idx int32) string
	avfilterPadGetType func(pads unsafe.Pointer, idx int32) int32

	avBuffersrcAddFrameFlags func(ctx Context, frame unsafe.Pointer, flags int32) int32
	avBuffersinkGetFrame     func(ctx Context, frame unsafe.Pointer) int32
)

// Buffer source flags
const (
	BufferSrcFlagPush    = 4 // Push frame immediately
	BufferSrcFlagKeepRef = 8 // Keep reference to frame
)

// Init loads libavfilter and binds the functions above.
func Init() error {
	initOnce.Do(func() {
		initErr = initLibrary()
	})
	return initErr
}

func initLibrary() error {
	lib, err := bindings.LoadAVFilter()
	if err != nil {
		return fmt.Errorf("avfilter: failed to load library: %w", err)
	}

	funcs := []struct {
		fptr any
		name string
	}{
		{&avfilterVersion, "avfilter_version"},
		{&avfilterGraphAlloc, "avfilter_graph_alloc"},
		{&avfilterGraphFree, "avfilter_graph_free"},
		{&avfilterGraphConfig, "avfilter_graph_config"},
		{&avfilterGraphCreateFilter, "avfilter_graph_create_filter"},
		{&avfilterGetByName, "avfilter_get_by_name"},
		{&avfilterLink, "avfilter_link"},
		{&avfilterPadGetName, "avfilter_pad_get_name"},
		{&avfilterPadGetType, "avfilter_pad_get_type"},
		{&avBuffersrcAddFrameFlags, "av_buffersrc_add_frame_flags"},
		{&avBuffersinkGetFrame, "av_buffersink_get_frame"},
	}
	for _, f := range funcs {
		if err := bindings.RegisterFunc(f.fptr, lib, f.name); err != nil {
			return fmt.Errorf("avfilter: %w", err)
		}
	}
	return nil
}

// Version returns the packed libavfilter version, or 0 if not loaded.
func Version() uint32 {
	if err := Init(); err != nil {
		return 0
	}
	return avfilterVersion()
}

// GraphAlloc allocates a new filter graph.
func GraphAlloc() (Graph, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	g := avfilterGraphAlloc()
	if g == nil {
		return nil, avutil.NewError(avutil.AVERROR_ENOMEM, "avfilter_graph_alloc")
	}
	return g, nil
}

// GraphFree frees a filter graph and all associated filters.
func GraphFree(graph *Graph) {
	if graph == nil || *graph == nil {
		return
	}
	if err := Init(); err != nil {
		return
	}
	avfilterGraphFree(graph)
}

// GraphConfig validates the graph and negotiates every link.
func GraphConfig(graph Graph) error {
	if graph == nil {
		return fmt.Errorf("avfilter: nil graph")
	}
	if err := Init(); err != nil {
		return err
	}
	return avutil.NewError(avfilterGraphConfig(graph, nil), "avfilter_graph_config")
}

// cString converts a Go string to a null-terminated C string (as *byte)
func cString(s string) *byte {
	if s == "" {
		return nil
	}
	b := append([]byte(s), 0)
	return &b[0]
}

// GetByName finds a filter by name (e.g., "buffer", "buffersink").
func GetByName(name string) Filter {
	if err := Init(); err != nil {
		return nil
	}
	n := cString(name)
	f := avfilterGetByName(n)
	runtime.KeepAlive(n)
	return f
}

// GraphCreateFilter creates an instance of filter named name in graph.
func GraphCreateFilter(graph Graph, filter Filter, name, args string) (Context, error) {
	if graph == nil {
		return nil, fmt.Errorf("avfilter: nil graph")
	}
	if filter == nil {
		return nil, avutil.NewError(avutil.AVERROR_FILTER_NOT_FOUND, "avfilter_graph_create_filter")
	}
	if err := Init(); err != nil {
		return nil, err
	}

	var ctx Context
	n, a := cString(name), cString(args)
	ret := avfilterGraphCreateFilter(&ctx, filter, n, a, nil, graph)
	runtime.KeepAlive(n)
	runtime.KeepAlive(a)
	if err := avutil.NewError(ret, "avfilter_graph_create_filter"); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Link links output srcPad of src to input dstPad of dst.
func Link(src Context, srcPad uint32, dst Context, dstPad uint32) error {
	if src == nil || dst == nil {
		return fmt.Errorf("avfilter: nil context")
	}
	if err := Init(); err != nil {
		return err
	}
	return avutil.NewError(avfilterLink(src, srcPad, dst, dstPad), "avfilter_link")
}

// PadName returns the name of element idx of an AVFilterPad array, as the
// library itself indexes it.
func PadName(pads unsafe.Pointer, idx int) string {
	if pads == nil {
		return ""
	}
	if err := Init(); err != nil {
		return ""
	}
	return avfilterPadGetName(pads, int32(idx))
}

// PadType returns the media type of element idx of an AVFilterPad array.
func PadType(pads unsafe.Pointer, idx int) avutil.MediaType {
	if pads == nil {
		return avutil.MediaTypeUnknown
	}
	if err := Init(); err != nil {
		return avutil.MediaTypeUnknown
	}
	return avutil.MediaType(avfilterPadGetType(pads, int32(idx)))
}

// BufferSrcAddFrameFlags pushes a frame into a buffer source.
func BufferSrcAddFrameFlags(ctx Context, frame unsafe.Pointer, flags int32) error {
	if ctx == nil {
		return fmt.Errorf("avfilter: nil context")
	}
	if err := Init(); err != nil {
		return err
	}
	return avutil.NewError(avBuffersrcAddFrameFlags(ctx, frame, flags), "av_buffersrc_add_frame_flags")
}

// BufferSinkGetFrame pulls a frame from a buffer sink.
func BufferSinkGetFrame(ctx Context, frame unsafe.Pointer) error {
	if ctx == nil {
		return fmt.Errorf("avfilter: nil context")
	}
	if err := Init(); err != nil {
		return err
	}
	return avutil.NewError(avBuffersinkGetFrame(ctx, frame), "av_buffersink_get_frame")
}
