package avutil

import (
	"errors"
	"fmt"
	"syscall"
)

// Common FFmpeg error codes (AVERROR values)
const (
	AVERROR_EOF              int32 = -541478725             // End of file
	AVERROR_EAGAIN           int32 = -int32(syscall.EAGAIN) // Resource temporarily unavailable
	AVERROR_EINVAL           int32 = -int32(syscall.EINVAL) // Invalid argument
	AVERROR_ENOMEM           int32 = -int32(syscall.ENOMEM) // Out of memory
	AVERROR_ENOSYS           int32 = -int32(syscall.ENOSYS) // Function not implemented
	AVERROR_INVALIDDATA      int32 = -1094995529            // Invalid data
	AVERROR_BUG              int32 = -558323010             // Bug detected
	AVERROR_EXTERNAL         int32 = -542398533             // Generic error in an external library
	AVERROR_FILTER_NOT_FOUND int32 = -1279870712            // Filter not found
	AVERROR_PATCHWELCOME     int32 = -1163346256            // Not yet implemented
	AVERROR_UNKNOWN          int32 = -1313558101            // Unknown error
)

// Error represents an FFmpeg error.
type Error struct {
	Code    int32  // Raw FFmpeg error code
	Message string // Human-readable message
	Op      string // Operation that failed
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ffmpeg %s: %s (code %d)", e.Op, e.Message, e.Code)
}

// NewError creates a new FFmpeg error from an error code.
func NewError(code int32, op string) error {
	if code >= 0 {
		return nil
	}
	return &Error{
		Code:    code,
		Message: ErrorString(code),
		Op:      op,
	}
}

// errorString is replaced by av_strerror once the native library is bound.
var errorString = func(code int32) string {
	switch code {
	case AVERROR_EOF:
		return "End of file"
	case AVERROR_EINVAL:
		return "Invalid argument"
	case AVERROR_ENOMEM:
		return "Cannot allocate memory"
	case AVERROR_ENOSYS:
		return "Function not implemented"
	case AVERROR_EXTERNAL:
		return "Generic error in an external library"
	case AVERROR_BUG:
		return "Internal bug, should not have happened"
	case AVERROR_FILTER_NOT_FOUND:
		return "Filter not found"
	case AVERROR_PATCHWELCOME:
		return "Not yet implemented in FFmpeg, patches welcome"
	}
	return fmt.Sprintf("Error number %d occurred", code)
}

// ErrorString returns a human-readable error message for an FFmpeg error code.
func ErrorString(code int32) string {
	return errorString(code)
}

// IsEOF returns true if the error indicates end of file.
func IsEOF(err error) bool {
	return Code(err) == AVERROR_EOF
}

// IsAgain returns true if the error indicates to try again (EAGAIN).
func IsAgain(err error) bool {
	return Code(err) == AVERROR_EAGAIN
}

// Code returns the FFmpeg error code from an error, or 0 if not an FFmpeg error.
func Code(err error) int32 {
	var ffErr *Error
	if errors.As(err, &ffErr) {
		return ffErr.Code
	}
	return 0
}
