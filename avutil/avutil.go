//go:build !ios && !android && (amd64 || arm64)

// Package avutil provides the libavutil surface the struct mirror consumes:
// the library version, pixel format descriptor iteration, and the frame
// allocation calls used by the layout self-check.
package avutil

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/internal/bindings"
)

// Frame is an opaque FFmpeg AVFrame pointer.
type Frame = unsafe.Pointer

// Function bindings - registered by Init
var (
	avutilVersion func() uint32

	avPixFmtDescNext  func(prev unsafe.Pointer) unsafe.Pointer
	avPixFmtDescGetID func(desc unsafe.Pointer) int32

	avFrameAlloc     func() unsafe.Pointer
	avFrameFree      func(frame *unsafe.Pointer)
	avFrameGetBuffer func(frame unsafe.Pointer, align int32) int32

	avStrerror    func(errnum int32, errbuf unsafe.Pointer, errbufSize uintptr) int32
	avLogSetLevel func(level int32)
	avLogGetLevel func() int32

	initOnce sync.Once
	initErr  error
)

// Init loads libavutil and binds the functions above.
// It is safe to call multiple times; subsequent calls return the first result.
func Init() error {
	initOnce.Do(func() {
		initErr = registerBindings()
	})
	return initErr
}

func registerBindings() error {
	if err := bindings.Load(); err != nil {
		return err
	}
	lib := bindings.LibAVUtil()
	if lib == 0 {
		return bindings.ErrNotLoaded
	}

	required := []struct {
		fptr any
		name string
	}{
		{&avutilVersion, "avutil_version"},
		{&avPixFmtDescNext, "av_pix_fmt_desc_next"},
		{&avPixFmtDescGetID, "av_pix_fmt_desc_get_id"},
		{&avFrameAlloc, "av_frame_alloc"},
		{&avFrameFree, "av_frame_free"},
		{&avFrameGetBuffer, "av_frame_get_buffer"},
	}
	for _, r := range required {
		if err := bindings.RegisterFunc(r.fptr, lib, r.name); err != nil {
			return fmt.Errorf("avutil: %w", err)
		}
	}

	if err := bindings.RegisterFunc(&avStrerror, lib, "av_strerror"); err == nil {
		errorString = nativeErrorString
	}
	// av_log_set_callback takes a va_list and cannot be bound without a C
	// helper; only the level is controlled.
	_ = bindings.RegisterFunc(&avLogSetLevel, lib, "av_log_set_level")
	_ = bindings.RegisterFunc(&avLogGetLevel, lib, "av_log_get_level")
	return nil
}

// Version returns the packed avutil_version() value, or 0 if not loaded.
func Version() uint32 {
	if avutilVersion == nil {
		return 0
	}
	return avutilVersion()
}

// PixFmtDescNext wraps av_pix_fmt_desc_next. A nil prev starts the iteration;
// a nil result ends it.
func PixFmtDescNext(prev unsafe.Pointer) unsafe.Pointer {
	if avPixFmtDescNext == nil {
		return nil
	}
	return avPixFmtDescNext(prev)
}

// PixFmtDescGetID wraps av_pix_fmt_desc_get_id.
func PixFmtDescGetID(desc unsafe.Pointer) int32 {
	if avPixFmtDescGetID == nil || desc == nil {
		return int32(PixelFormatNone)
	}
	return avPixFmtDescGetID(desc)
}

// PixFmtTable iterates the native pixel format descriptor table.
type PixFmtTable struct{}

// Next returns the descriptor after prev.
func (PixFmtTable) Next(prev unsafe.Pointer) unsafe.Pointer {
	return PixFmtDescNext(prev)
}

// ID returns the AVPixelFormat value of desc.
func (PixFmtTable) ID(desc unsafe.Pointer) int32 {
	return PixFmtDescGetID(desc)
}

// FrameAlloc allocates an AVFrame and returns a pointer to it.
// The returned frame must be freed with FrameFree when no longer needed.
func FrameAlloc() Frame {
	if avFrameAlloc == nil {
		return nil
	}
	return avFrameAlloc()
}

// FrameFree frees an AVFrame and sets the pointer to nil.
// Safe to call with nil pointer.
func FrameFree(frame *Frame) {
	if frame == nil || *frame == nil || avFrameFree == nil {
		return
	}
	avFrameFree(frame)
	*frame = nil
}

// FrameGetBuffer allocates buffers for the frame based on its format/dimensions.
func FrameGetBuffer(frame Frame, align int32) error {
	if avFrameGetBuffer == nil {
		return bindings.ErrNotLoaded
	}
	ret := avFrameGetBuffer(frame, align)
	if ret < 0 {
		return NewError(ret, "av_frame_get_buffer")
	}
	return nil
}

func nativeErrorString(errnum int32) string {
	buf := make([]byte, 256)
	avStrerror(errnum, unsafe.Pointer(&buf[0]), uintptr(len(buf)))

	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// SetLogLevel sets the library's own log threshold (av_log_set_level).
func SetLogLevel(level LogLevel) error {
	if avLogSetLevel == nil {
		return bindings.ErrNotLoaded
	}
	avLogSetLevel(int32(level))
	return nil
}

// GetLogLevel returns the library's log threshold.
func GetLogLevel() LogLevel {
	if avLogGetLevel == nil {
		return LogInfo
	}
	return LogLevel(avLogGetLevel())
}
