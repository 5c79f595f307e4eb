package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs64Bit(t *testing.T) {
	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		t.Skipf("%s is not a supported target", runtime.GOARCH)
	}
	assert.True(t, Is64Bit)
	assert.Equal(t, uintptr(8), PointerSize)
}

func TestLibraryName(t *testing.T) {
	tests := []struct {
		goos    string
		version int
		want    string
	}{
		{"linux", 57, "libavutil.so.57"},
		{"linux", 0, "libavutil.so"},
		{"freebsd", 56, "libavutil.so.56"},
		{"darwin", 57, "libavutil.57.dylib"},
		{"darwin", 0, "libavutil.dylib"},
		{"windows", 57, "avutil-57.dll"},
		{"windows", 0, "avutil.dll"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LibraryName(tt.goos, "avutil", tt.version), "%s %d", tt.goos, tt.version)
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates("avfilter", []int{8, 7})
	want := []string{
		FormatLibraryName("avfilter", 8),
		FormatLibraryName("avfilter", 7),
		FormatLibraryName("avfilter", 0),
	}
	assert.Equal(t, want, got)
	assert.Len(t, Candidates("swscale", nil), 1)
}
