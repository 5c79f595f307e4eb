//go:build !ios && !android && (amd64 || arm64)

// Package swscale binds the libswscale calls the upscale filter's native
// resizer uses.
package swscale

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/internal/bindings"
)

// Context is an opaque SwsContext pointer.
type Context = unsafe.Pointer

// ErrNoContext is returned when sws_getContext rejects the parameters.
var ErrNoContext = errors.New("ffbind: swscale context unavailable")

// Scaling algorithm flags
const (
	FlagFastBilinear = 1    // Fast bilinear scaling
	FlagBilinear     = 2    // Bilinear scaling
	FlagBicubic      = 4    // Bicubic scaling
	FlagX            = 8    // Experimental
	FlagPoint        = 0x10 // Nearest neighbor (point sampling)
	FlagArea         = 0x20 // Area averaging
	FlagBicublin     = 0x40 // Luma bicubic, chroma bilinear
	FlagGauss        = 0x80 // Gaussian
	FlagSinc         = 0x100
	FlagLanczos      = 0x200 // Lanczos scaling
	FlagSpline       = 0x400 // Natural bicubic spline
)

// Function bindings
var (
	swsGetContext     func(srcW, srcH, srcFormat, dstW, dstH, dstFormat, flags int32, srcFilter, dstFilter, param unsafe.Pointer) unsafe.Pointer
	swsScale          func(ctx unsafe.Pointer, srcSlice, srcStride unsafe.Pointer, srcSliceY, srcSliceH int32, dst, dstStride unsafe.Pointer) int32
	swsFreeContext    func(ctx unsafe.Pointer)
	swsIsSupportedIn  func(format int32) int32
	swsIsSupportedOut func(format int32) int32

	initOnce sync.Once
	initErr  error
)

// Init loads libswscale and binds the functions above.
func Init() error {
	initOnce.Do(func() {
		initErr = registerBindings()
	})
	return initErr
}

func registerBindings() error {
	lib, err := bindings.LoadSWScale()
	if err != nil {
		return fmt.Errorf("swscale: failed to load library: %w", err)
	}
	funcs := []struct {
		fptr any
		name string
	}{
		{&swsGetContext, "sws_getContext"},
		{&swsScale, "sws_scale"},
		{&swsFreeContext, "sws_freeContext"},
		{&swsIsSupportedIn, "sws_isSupportedInput"},
		{&swsIsSupportedOut, "sws_isSupportedOutput"},
	}
	for _, f := range funcs {
		if err := bindings.RegisterFunc(f.fptr, lib, f.name); err != nil {
			return fmt.Errorf("swscale: %w", err)
		}
	}
	return nil
}

// GetContext creates a scaling context from srcW x srcH in srcFormat to
// dstW x dstH in dstFormat.
func GetContext(srcW, srcH int, srcFormat avutil.PixelFormat, dstW, dstH int, dstFormat avutil.PixelFormat, flags int32) (Context, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	ctx := swsGetContext(
		int32(srcW), int32(srcH), int32(srcFormat),
		int32(dstW), int32(dstH), int32(dstFormat),
		flags,
		nil, nil, nil,
	)
	if ctx == nil {
		return nil, fmt.Errorf("%w: %dx%d fmt %d -> %dx%d fmt %d", ErrNoContext, srcW, srcH, srcFormat, dstW, dstH, dstFormat)
	}
	return ctx, nil
}

// FreeContext frees a scaling context.
// Safe to call with nil.
func FreeContext(ctx Context) {
	if ctx == nil || swsFreeContext == nil {
		return
	}
	swsFreeContext(ctx)
}

// Scale runs sws_scale over plane pointer and stride arrays.
// Returns the height of the output slice.
func Scale(ctx Context, srcSlice *[abi.NumDataPointers]unsafe.Pointer, srcStride *[abi.NumDataPointers]int32, srcSliceY, srcSliceH int32, dst *[abi.NumDataPointers]unsafe.Pointer, dstStride *[abi.NumDataPointers]int32) (int32, error) {
	if ctx == nil || swsScale == nil {
		return 0, ErrNoContext
	}
	ret := swsScale(ctx,
		unsafe.Pointer(srcSlice), unsafe.Pointer(srcStride),
		srcSliceY, srcSliceH,
		unsafe.Pointer(dst), unsafe.Pointer(dstStride),
	)
	if err := avutil.NewError(ret, "sws_scale"); err != nil {
		return 0, err
	}
	return ret, nil
}

// ScaleFrames scales every row of src into dst through the frame overlays'
// data and linesize arrays.
func ScaleFrames(ctx Context, dst, src *abi.Frame) error {
	var srcData, dstData [abi.NumDataPointers]unsafe.Pointer
	for i := range srcData {
		srcData[i] = src.Data(i)
		dstData[i] = dst.Data(i)
	}
	srcStride := src.Linesizes()
	dstStride := dst.Linesizes()
	_, err := Scale(ctx, &srcData, &srcStride, 0, src.Height(), &dstData, &dstStride)
	return err
}

// IsSupportedInput returns true if the pixel format is supported as input.
func IsSupportedInput(format avutil.PixelFormat) bool {
	if Init() != nil {
		return false
	}
	return swsIsSupportedIn(int32(format)) > 0
}

// IsSupportedOutput returns true if the pixel format is supported as output.
func IsSupportedOutput(format avutil.PixelFormat) bool {
	if Init() != nil {
		return false
	}
	return swsIsSupportedOut(int32(format)) > 0
}
