package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffbind"
	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/filter"
	"github.com/obinnaokechukwu/ffbind/internal/fakeav"
	"github.com/obinnaokechukwu/ffbind/version"
)

type native struct {
	*fakeav.FormatTable
}

func (native) Version() uint32 { return 57<<16 | 24<<8 | 100 }

func newRuntime(t *testing.T) *ffbind.Runtime {
	t.Helper()
	info, err := version.Resolve(57)
	require.NoError(t, err)
	ls, err := abi.NewLayouts(info.Caps)
	require.NoError(t, err)
	rt, err := ffbind.New(ffbind.DefaultConfig(), native{fakeav.NewFormatTable(ls, fakeav.StandardFormats())})
	require.NoError(t, err)
	return rt
}

var errBroken = errors.New("broken filter")

// invert flips every byte of plane 0 and doubles the output link size.
type invert struct {
	scale int32
}

func (invert) Formats() (any, error) { return []any{"rgb24", int32(0), "nope"}, nil }

func (v invert) ConfigureOutput(link *abi.FilterLink) error {
	link.SetW(link.W() * v.scale)
	link.SetH(link.H() * v.scale)
	return nil
}

func (invert) Process(in, out *abi.Frame) error {
	src := in.Plane(0, int(in.Height()), int(in.Linesize(0)))
	dst := out.Plane(0, int(out.Height()), int(out.Linesize(0)))
	for i, b := range src.Bytes() {
		dst.Bytes()[i] = ^b
	}
	return nil
}

type broken struct{}

func (broken) Process(in, out *abi.Frame) error { return errBroken }

func init() {
	filter.Register("host_test.invert", func(arg string) (any, error) {
		if arg == "fail" {
			return nil, errBroken
		}
		return invert{scale: 2}, nil
	})
	filter.Register("host_test.broken", func(string) (any, error) { return broken{}, nil })
}

func TestOpenAndClose(t *testing.T) {
	rt := newRuntime(t)
	before := OpenCount()

	h, err := Open(rt, "host_test.invert", "")
	require.NoError(t, err)
	assert.NotZero(t, h)
	assert.Equal(t, before+1, OpenCount())

	require.NoError(t, Close(h))
	assert.Equal(t, before, OpenCount())

	err = Close(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.Equal(t, avutil.AVERROR_EINVAL, Code(err))
}

func TestOpenErrors(t *testing.T) {
	rt := newRuntime(t)

	_, err := Open(nil, "host_test.invert", "")
	assert.ErrorIs(t, err, ErrNoRuntime)

	_, err = Open(rt, "host_test.missing", "")
	assert.ErrorIs(t, err, filter.ErrUnknownClass)
	assert.Equal(t, avutil.AVERROR_FILTER_NOT_FOUND, Code(err))

	_, err = Open(rt, "host_test.invert", "fail")
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, avutil.AVERROR_EXTERNAL, Code(err))
}

func TestQueryFormats(t *testing.T) {
	rt := newRuntime(t)
	h, err := Open(rt, "host_test.invert", "")
	require.NoError(t, err)
	defer Close(h)

	dst := make([]int32, 8)
	n, err := QueryFormats(h, dst)
	require.NoError(t, err)
	assert.Equal(t, []int32{int32(avutil.PixelFormatRGB24), int32(avutil.PixelFormatYUV420P)}, dst[:n])

	short := make([]int32, 1)
	n, err = QueryFormats(h, short)
	assert.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int32(avutil.PixelFormatRGB24), short[0])
}

func TestQueryFormatsUnrestricted(t *testing.T) {
	rt := newRuntime(t)
	h, err := Open(rt, "host_test.broken", "")
	require.NoError(t, err)
	defer Close(h)

	n, err := QueryFormats(h, make([]int32, 4))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConfigLinks(t *testing.T) {
	rt := newRuntime(t)
	h, err := Open(rt, "host_test.invert", "")
	require.NoError(t, err)
	defer Close(h)

	link := fakeav.NewLink(rt.Layouts(), 3, 5, int32(avutil.PixelFormatRGB24))
	require.NoError(t, ConfigInput(h, link.Raw()))
	assert.Equal(t, int32(3), link.Int32("w"))

	require.NoError(t, ConfigOutput(h, link.Raw()))
	assert.Equal(t, int32(6), link.Int32("w"))
	assert.Equal(t, int32(10), link.Int32("h"))

	err = ConfigOutput(h, abi.RawBytes(make([]byte, 8)))
	assert.ErrorIs(t, err, abi.ErrShortBuffer)
	assert.Equal(t, avutil.AVERROR_EINVAL, Code(err))
}

func TestFilterFrame(t *testing.T) {
	rt := newRuntime(t)
	h, err := Open(rt, "host_test.invert", "")
	require.NoError(t, err)
	defer Close(h)

	in := fakeav.NewVideoFrame(rt.Layouts(), 1, 2, int32(avutil.PixelFormatRGB24), 3)
	copy(in.PlaneBytes(0), []byte{0, 1, 2, 253, 254, 255})
	out := fakeav.NewVideoFrame(rt.Layouts(), 1, 2, int32(avutil.PixelFormatRGB24), 3)

	require.NoError(t, FilterFrame(h, in.Raw(), out.Raw()))
	assert.Equal(t, []byte{255, 254, 253, 2, 1, 0}, out.PlaneBytes(0))
}

func TestFilterFrameErrors(t *testing.T) {
	rt := newRuntime(t)
	h, err := Open(rt, "host_test.broken", "")
	require.NoError(t, err)
	defer Close(h)

	in := fakeav.NewFrame(rt.Layouts())
	out := fakeav.NewFrame(rt.Layouts())
	err = FilterFrame(h, in.Raw(), out.Raw())
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, avutil.AVERROR_EXTERNAL, Code(err))

	err = FilterFrame(Handle(0), in.Raw(), out.Raw())
	assert.ErrorIs(t, err, ErrInvalidHandle)

	err = FilterFrame(h, abi.Raw{}, out.Raw())
	assert.ErrorIs(t, err, abi.ErrNilPointer)
}

func TestCode(t *testing.T) {
	assert.Zero(t, Code(nil))
	assert.Equal(t, avutil.AVERROR_ENOMEM, Code(avutil.NewError(avutil.AVERROR_ENOMEM, "alloc")))
	assert.Equal(t, avutil.AVERROR_EXTERNAL, Code(errors.New("anything")))
}
