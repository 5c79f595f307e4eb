package upscale

import (
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

type native struct{ *fakeav.FormatTable }

func (native) Version() uint32 { return 56<<16 | 70<<8 | 100 }

func newRuntime(t *testing.T) *ffbind.Runtime {
	t.Helper()
	info, err := version.Resolve(56)
	require.NoError(t, err)
	ls, err := abi.NewLayouts(info.Caps)
	require.NoError(t, err)
	rt, err := ffbind.New(ffbind.DefaultConfig(), native{fakeav.NewFormatTable(ls, fakeav.StandardFormats())})
	require.NoError(t, err)
	return rt
}

const rgb24 = int32(avutil.PixelFormatRGB24)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		arg    string
		factor int
		jobs   int
		res    string
	}{
		{"", DefaultFactor, 0, "cubic"},
		{"3", 3, 0, "cubic"},
		{"factor=2:jobs=5", 2, 5, "cubic"},
		{"jobs=1:resizer=swscale", DefaultFactor, 1, "swscale"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			opts, err := ParseOptions(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.factor, opts.Factor)
			if tt.jobs != 0 {
				assert.Equal(t, tt.jobs, opts.Jobs)
			} else {
				assert.GreaterOrEqual(t, opts.Jobs, 1)
			}
			assert.Equal(t, tt.res, opts.Resizer)
		})
	}
}

func TestParseOptionsErrors(t *testing.T) {
	for _, arg := range []string{"0", "x", "factor=-1", "jobs=many", "speed=9"} {
		_, err := ParseOptions(arg)
		assert.ErrorIs(t, err, ErrBadOption, arg)
	}
	_, err := New("resizer=nearest")
	assert.ErrorIs(t, err, ErrBadOption)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, filter.Classes(), Class)
	assert.Contains(t, Resizers(), "cubic")
}

func TestConfigureOutputFromInputLink(t *testing.T) {
	rt := newRuntime(t)
	f, err := New("")
	require.NoError(t, err)

	in := fakeav.NewLink(rt.Layouts(), 3, 5, rgb24)
	out := fakeav.NewLink(rt.Layouts(), 3, 5, rgb24)
	pad := []fakeav.Pad{{Name: "default", Type: avutil.MediaTypeVideo}}
	fakeav.NewContext(rt.Layouts(), "upscale", pad, pad, []*fakeav.Block{in}, []*fakeav.Block{out})

	// The output link still holds a stale size; the input link wins.
	out.SetInt32("w", 1)
	out.SetInt32("h", 1)

	link := rt.Mirror().LinkAt(out.Pointer())
	require.NoError(t, f.ConfigureOutput(link))
	assert.Equal(t, int32(12), out.Int32("w"))
	assert.Equal(t, int32(20), out.Int32("h"))
}

func TestConfigureOutputWithoutSource(t *testing.T) {
	rt := newRuntime(t)
	f, err := New("2")
	require.NoError(t, err)

	out := fakeav.NewLink(rt.Layouts(), 7, 9, rgb24)
	require.NoError(t, f.ConfigureOutput(rt.Mirror().LinkAt(out.Pointer())))
	assert.Equal(t, int32(14), out.Int32("w"))
	assert.Equal(t, int32(18), out.Int32("h"))
}

func TestUniformFrameStaysUniform(t *testing.T) {
	rt := newRuntime(t)
	a, err := rt.NewFilter(Class, "factor=4:jobs=3")
	require.NoError(t, err)

	ids, err := a.FormatIDs()
	require.NoError(t, err)
	assert.Equal(t, []int32{rgb24}, ids)

	in := fakeav.NewVideoFrame(rt.Layouts(), 2, 2, rgb24, 8)
	for y := 0; y < 2; y++ {
		copy(in.PlaneBytes(0)[y*8:], []byte{10, 120, 240, 10, 120, 240})
	}
	// Linesize 28 leaves 4 padding bytes per row.
	out := fakeav.NewVideoFrame(rt.Layouts(), 8, 8, rgb24, 28)
	for i := range out.PlaneBytes(0) {
		out.PlaneBytes(0)[i] = 0x55
	}

	require.NoError(t, a.Process(in.Raw(), out.Raw()))

	px := out.PlaneBytes(0)
	for y := 0; y < 8; y++ {
		row := px[y*28:]
		for x := 0; x < 8; x++ {
			assert.InDelta(t, 10, row[x*3], 1)
			assert.InDelta(t, 120, row[x*3+1], 1)
			assert.InDelta(t, 240, row[x*3+2], 1)
		}
		assert.Equal(t, []byte{0x55, 0x55, 0x55, 0x55}, row[24:28], "padding of row %d", y)
	}
}

func TestJobsDoNotChangeResult(t *testing.T) {
	rt := newRuntime(t)
	in := fakeav.NewVideoFrame(rt.Layouts(), 5, 3, rgb24, 15)
	for i := range in.PlaneBytes(0) {
		in.PlaneBytes(0)[i] = byte(i * 37)
	}

	render := func(jobs int) []byte {
		out := fakeav.NewVideoFrame(rt.Layouts(), 15, 9, rgb24, 45)
		err := Cubic{Jobs: jobs}.Resize(rt.Mirror().FrameAt(in.Pointer()), rt.Mirror().FrameAt(out.Pointer()))
		require.NoError(t, err)
		return out.PlaneBytes(0)
	}
	want := render(1)
	for _, jobs := range []int{2, 4, 9, 64} {
		assert.Equal(t, want, render(jobs), "jobs=%d", jobs)
	}
}

func TestProcessErrors(t *testing.T) {
	rt := newRuntime(t)
	f, err := New("")
	require.NoError(t, err)

	in := fakeav.NewVideoFrame(rt.Layouts(), 2, 2, rgb24, 6)
	out := fakeav.NewVideoFrame(rt.Layouts(), 8, 8, int32(avutil.PixelFormatYUV420P), 8)
	err = f.Process(rt.Mirror().FrameAt(in.Pointer()), rt.Mirror().FrameAt(out.Pointer()))
	assert.Error(t, err)

	empty := fakeav.NewVideoFrame(rt.Layouts(), 0, 0, rgb24, 0)
	err = f.Process(rt.Mirror().FrameAt(in.Pointer()), rt.Mirror().FrameAt(empty.Pointer()))
	assert.Error(t, err)
}

func TestSlicesCoverEveryRow(t *testing.T) {
	for _, jobs := range []int{0, 1, 3, 7, 100} {
		seen := make([]int, 10)
		err := sliceJobs(jobs, len(seen), func(start, end int) error {
			for y := start; y < end; y++ {
				seen[y]++
			}
			return nil
		})
		require.NoError(t, err)
		for y, n := range seen {
			assert.Equal(t, 1, n, "jobs=%d row=%d", jobs, y)
		}
	}
}
