package ffbind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/internal/fakeav"
	"github.com/obinnaokechukwu/ffbind/pixfmt"
	"github.com/obinnaokechukwu/ffbind/version"
)

type fakeNative struct {
	packed uint32
	*fakeav.FormatTable
}

func (n fakeNative) Version() uint32 { return n.packed }

func packed(major, minor, micro int) uint32 {
	return uint32(major<<16 | minor<<8 | micro)
}

func newFake(t *testing.T, major int, formats []fakeav.Format) fakeNative {
	t.Helper()
	info, err := version.Resolve(major)
	require.NoError(t, err)
	ls, err := abi.NewLayouts(info.Caps)
	require.NoError(t, err)
	return fakeNative{packed(major, 17, 100), fakeav.NewFormatTable(ls, formats)}
}

func TestNewResolvesVersion(t *testing.T) {
	tests := []struct {
		major  int
		rng    version.Range
		legacy bool
	}{
		{56, version.RangeLegacy, true},
		{57, version.RangeCurrent, false},
	}
	for _, tt := range tests {
		rt, err := New(DefaultConfig(), newFake(t, tt.major, fakeav.StandardFormats()))
		require.NoError(t, err)

		info := rt.Info()
		assert.Equal(t, tt.major, info.Major)
		assert.Equal(t, tt.rng, info.Range)
		assert.Equal(t, tt.legacy, info.Caps.PktPTS)
		assert.Equal(t, tt.legacy, info.Caps.PlusOneMinusOne)
		assert.Equal(t, packed(tt.major, 17, 100), rt.PackedVersion())
		assert.Equal(t, tt.legacy, rt.Layouts().Capabilities().ErrorFrame)
	}
}

func TestNewRejectsUnsupportedMajor(t *testing.T) {
	// 58 has no table of its own; the layout is unknown.
	ls, err := abi.NewLayouts(version.Capabilities{})
	require.NoError(t, err)
	native := fakeNative{packed(58, 2, 100), fakeav.NewFormatTable(ls, nil)}

	_, err = New(DefaultConfig(), native)
	assert.ErrorIs(t, err, version.ErrUnsupported)
}

func TestNewRequiresVersion(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNotLoaded)

	n := newFake(t, 57, nil)
	n.packed = 0
	_, err = New(DefaultConfig(), n)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

type fakeFilterNative struct {
	fakeNative
	filter uint32
}

func (n fakeFilterNative) FilterVersion() uint32 { return n.filter }

func TestNewChecksLibavfilterVersion(t *testing.T) {
	tests := []struct {
		name   string
		major  int
		filter uint32
		ok     bool
	}{
		{"4.4", 56, packed(7, 110, 100), true},
		{"5.0", 57, packed(8, 24, 100), true},
		{"not loaded", 57, 0, true},
		{"5.1 link layout", 57, packed(8, 44, 100), false},
		{"6.0", 57, packed(9, 3, 100), false},
		{"4.3", 56, packed(7, 85, 100), false},
		{"mismatched pair", 56, packed(8, 24, 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := fakeFilterNative{newFake(t, tt.major, fakeav.StandardFormats()), tt.filter}
			rt, err := New(DefaultConfig(), n)
			if !tt.ok {
				assert.ErrorIs(t, err, version.ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.filter, rt.FilterVersion())
		})
	}
}

func TestNewPropagatesDuplicateName(t *testing.T) {
	formats := fakeav.StandardFormats()
	formats[1].Name = formats[0].Name

	_, err := New(DefaultConfig(), newFake(t, 57, formats))
	assert.ErrorIs(t, err, pixfmt.ErrDuplicateName)
}

func TestRuntimeFormatsResolveFrames(t *testing.T) {
	rt, err := New(DefaultConfig(), newFake(t, 57, fakeav.StandardFormats()))
	require.NoError(t, err)

	assert.Equal(t, len(fakeav.StandardFormats()), rt.Formats().Len())
	assert.Same(t, rt.Formats(), rt.Env().Formats)
	assert.Same(t, rt.Mirror(), rt.Env().Mirror)

	frame := fakeav.NewVideoFrame(rt.Layouts(), 2, 2, 2, 6)
	f, err := rt.Mirror().Frame(frame.Raw())
	require.NoError(t, err)
	d, ok := f.Format()
	require.True(t, ok)
	assert.Equal(t, "rgb24", d.Name())
}

type passthrough struct{}

func (passthrough) Process(in, out *abi.Frame) error {
	out.SetWidth(in.Width())
	return nil
}

func TestRuntimeAdapt(t *testing.T) {
	rt, err := New(DefaultConfig(), newFake(t, 56, fakeav.StandardFormats()))
	require.NoError(t, err)

	a, err := rt.Adapt(passthrough{})
	require.NoError(t, err)

	in := fakeav.NewVideoFrame(rt.Layouts(), 7, 1, 2, 21)
	out := fakeav.NewFrame(rt.Layouts())
	require.NoError(t, a.Process(in.Raw(), out.Pointer()))
	assert.Equal(t, int32(7), out.Int32("width"))
}
