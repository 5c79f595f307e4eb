package ffbind

import (
	"errors"

	"github.com/obinnaokechukwu/ffbind/avutil"
)

// Error is a native error with its AVERROR code.
type Error = avutil.Error

var (
	// ErrNotLoaded indicates libavutil is absent or reported version 0.
	ErrNotLoaded = errors.New("ffbind: FFmpeg libraries not loaded")

	// ErrLayoutMismatch indicates VerifyLayout read values through the
	// overlays that disagree with what the native library wrote.
	ErrLayoutMismatch = errors.New("ffbind: struct layout does not match native library")
)

// ErrorCode returns the AVERROR code carried by err, or 0.
func ErrorCode(err error) int32 {
	return avutil.Code(err)
}
