package avutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewErrorNonNegative(t *testing.T) {
	if err := NewError(0, "op"); err != nil {
		t.Errorf("NewError(0) = %v, want nil", err)
	}
}

func TestErrorCodeUnwrap(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(AVERROR_EOF, "read"))
	if !IsEOF(err) {
		t.Error("IsEOF should see through wrapping")
	}
	if Code(err) != AVERROR_EOF {
		t.Errorf("Code = %d, want %d", Code(err), AVERROR_EOF)
	}
	if Code(errors.New("plain")) != 0 {
		t.Error("Code of non-FFmpeg error should be 0")
	}
}

func TestErrorString(t *testing.T) {
	if msg := ErrorString(-999999); msg == "" {
		t.Error("ErrorString should return non-empty string for unknown error")
	}
	if msg := ErrorString(AVERROR_EXTERNAL); msg == "" {
		t.Error("ErrorString should describe AVERROR_EXTERNAL")
	}
}
