//go:build !ios && !android && (amd64 || arm64)

package host

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/ffbind"
	"github.com/obinnaokechukwu/ffbind/abi"
)

// CallbackTable holds C function pointers for the host entry points.
//
//	int64_t open(const char *class, const char *arg);      // handle > 0 or AVERROR
//	int     query_formats(uintptr_t h, int *dst, int n);  // count or AVERROR
//	int     config_input(uintptr_t h, AVFilterLink *link);
//	int     config_output(uintptr_t h, AVFilterLink *link);
//	int     filter_frame(uintptr_t h, AVFrame *in, AVFrame *out);
//	int     close(uintptr_t h);
type CallbackTable struct {
	Open         uintptr
	QueryFormats uintptr
	ConfigInput  uintptr
	ConfigOutput uintptr
	FilterFrame  uintptr
	Close        uintptr
}

var (
	bound atomic.Pointer[ffbind.Runtime]

	// purego has a fixed callback budget; create the table once.
	callbacksOnce sync.Once
	callbacks     CallbackTable
)

// Bind sets the runtime the open callback constructs filters with. Without
// it the first open uses ffbind.Default.
func Bind(rt *ffbind.Runtime) { bound.Store(rt) }

func boundRuntime() (*ffbind.Runtime, error) {
	if rt := bound.Load(); rt != nil {
		return rt, nil
	}
	rt, err := ffbind.Default()
	if err != nil {
		return nil, err
	}
	bound.CompareAndSwap(nil, rt)
	return rt, nil
}

// Callbacks returns the C-callable entry points.
func Callbacks() CallbackTable {
	callbacksOnce.Do(func() {
		callbacks = CallbackTable{
			Open: purego.NewCallback(func(_ purego.CDecl, class, arg *byte) int64 {
				rt, err := boundRuntime()
				if err != nil {
					return int64(Code(fail("open", "", err)))
				}
				h, err := Open(rt, abi.GoString(unsafe.Pointer(class)), abi.GoString(unsafe.Pointer(arg)))
				if err != nil {
					return int64(Code(err))
				}
				return int64(h)
			}),
			QueryFormats: purego.NewCallback(func(_ purego.CDecl, h uintptr, dst *int32, n int32) int32 {
				var buf []int32
				if dst != nil && n > 0 {
					buf = unsafe.Slice(dst, n)
				}
				count, err := QueryFormats(Handle(h), buf)
				if err != nil {
					return Code(err)
				}
				return int32(count)
			}),
			ConfigInput: purego.NewCallback(func(_ purego.CDecl, h uintptr, link unsafe.Pointer) int32 {
				return Code(ConfigInput(Handle(h), abi.RawPointer(link)))
			}),
			ConfigOutput: purego.NewCallback(func(_ purego.CDecl, h uintptr, link unsafe.Pointer) int32 {
				return Code(ConfigOutput(Handle(h), abi.RawPointer(link)))
			}),
			FilterFrame: purego.NewCallback(func(_ purego.CDecl, h uintptr, in, out unsafe.Pointer) int32 {
				return Code(FilterFrame(Handle(h), abi.RawPointer(in), abi.RawPointer(out)))
			}),
			Close: purego.NewCallback(func(_ purego.CDecl, h uintptr) int32 {
				return Code(Close(Handle(h)))
			}),
		}
	})
	return callbacks
}
