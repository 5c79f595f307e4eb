package abi_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/internal/fakeav"
	"github.com/obinnaokechukwu/ffbind/version"
)

type descTable map[int32]*abi.PixFmtDescriptor

func (t descTable) DescriptorByID(id int32) (*abi.PixFmtDescriptor, bool) {
	d, ok := t[id]
	return d, ok
}

type fixture struct {
	ls      *abi.Layouts
	mirror  *abi.Mirror
	formats *fakeav.FormatTable
}

func newFixture(t *testing.T, major int) *fixture {
	t.Helper()
	info, err := version.Resolve(major)
	require.NoError(t, err)
	ls, err := abi.NewLayouts(info.Caps)
	require.NoError(t, err)

	ft := fakeav.NewFormatTable(ls, fakeav.StandardFormats())
	tbl := descTable{}
	m := abi.NewMirror(ls, tbl)
	for p := ft.Next(nil); p != nil; p = ft.Next(p) {
		d := m.Descriptor(p, ft.ID(p))
		tbl[d.ID()] = d
	}
	return &fixture{ls: ls, mirror: m, formats: ft}
}

func TestFrameOverlayRoundTrip(t *testing.T) {
	for _, major := range []int{56, 57} {
		fx := newFixture(t, major)
		fb := fakeav.NewVideoFrame(fx.ls, 2, 2, int32(avutil.PixelFormatRGB24), 6)

		f, err := fx.mirror.Frame(fb.Raw())
		require.NoError(t, err)

		assert.Equal(t, int32(2), f.Width())
		assert.Equal(t, int32(2), f.Height())
		assert.Equal(t, int32(6), f.Linesize(0))

		f.SetWidth(4)
		f.SetHeight(8)
		f.SetPTS(1234)
		f.SetKeyFrame(true)
		f.SetSampleAspectRatio(avutil.NewRational(4, 3))

		assert.Equal(t, int32(4), fb.Int32("width"))
		assert.Equal(t, int32(8), fb.Int32("height"))
		assert.Equal(t, int64(1234), fb.Int64("pts"))
		assert.True(t, f.KeyFrame())
		assert.Equal(t, avutil.NewRational(4, 3), f.SampleAspectRatio())

		b := fb.Bytes()
		assert.Equal(t, int32(4), *(*int32)(unsafe.Pointer(&b[104])))
		assert.Equal(t, int32(8), *(*int32)(unsafe.Pointer(&b[108])))
		assert.Equal(t, int64(1234), *(*int64)(unsafe.Pointer(&b[136])))
	}
}

func TestFrameShortBuffer(t *testing.T) {
	fx := newFixture(t, 57)
	small := make([]byte, fx.ls.Frame.Size()-1)
	_, err := fx.mirror.Frame(abi.RawBytes(small))
	assert.ErrorIs(t, err, abi.ErrShortBuffer)

	_, err = fx.mirror.Frame(abi.RawPointer(nil))
	assert.ErrorIs(t, err, abi.ErrNilPointer)

	_, err = fx.mirror.Link(abi.RawBytes(make([]byte, 64)))
	assert.ErrorIs(t, err, abi.ErrShortBuffer)

	fb := fakeav.NewFrame(fx.ls)
	f, err := fx.mirror.Frame(abi.RawPointer(fb.Pointer()))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), f.FormatID())
}

func TestFrameGatedAccessors(t *testing.T) {
	t.Run("legacy", func(t *testing.T) {
		fx := newFixture(t, 56)
		fb := fakeav.NewFrame(fx.ls)
		fb.SetInt64("pkt_pts", 77)
		fb.SetUint64At("error", 2, 5)
		fb.SetInt32("qstride", 16)
		f := fx.mirror.FrameAt(fb.Pointer())

		pts, ok := f.PktPTS()
		assert.True(t, ok)
		assert.Equal(t, int64(77), pts)
		e, ok := f.ErrorValue(2)
		assert.True(t, ok)
		assert.Equal(t, uint64(5), e)
		qs, ok := f.QScale()
		assert.True(t, ok)
		assert.Equal(t, int32(16), qs.Stride)
	})

	t.Run("current", func(t *testing.T) {
		fx := newFixture(t, 57)
		f := fx.mirror.FrameAt(fakeav.NewFrame(fx.ls).Pointer())
		_, ok := f.PktPTS()
		assert.False(t, ok)
		_, ok = f.ErrorValue(0)
		assert.False(t, ok)
		_, ok = f.QScale()
		assert.False(t, ok)
	})
}

func TestFrameFormatAndPlane(t *testing.T) {
	fx := newFixture(t, 57)
	fb := fakeav.NewVideoFrame(fx.ls, 2, 2, int32(avutil.PixelFormatRGB24), 6)
	f := fx.mirror.FrameAt(fb.Pointer())

	d, ok := f.Format()
	require.True(t, ok)
	assert.Equal(t, "rgb24", d.Name())

	v, err := f.PackedPlane(0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 3}, v.Shape())
	v.Set(200, 1, 1, 2)
	assert.Equal(t, byte(200), fb.PlaneBytes(0)[1*6+1*3+2])

	f.SetFormatID(9999)
	_, err = f.PackedPlane(0)
	assert.ErrorIs(t, err, abi.ErrUnknownFormat)
}

func TestPackedPlanePaddedStride(t *testing.T) {
	// 8 rgb24 pixels use 24 bytes of a 32-byte line; 32 is not a multiple of 3.
	fx := newFixture(t, 57)
	fb := fakeav.NewVideoFrame(fx.ls, 8, 2, int32(avutil.PixelFormatRGB24), 32)
	f := fx.mirror.FrameAt(fb.Pointer())
	raw := fb.PlaneBytes(0)
	for i := range raw {
		raw[i] = 0x55
	}

	v, err := f.PackedPlane(0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 10, 3}, v.Shape())
	assert.Equal(t, []int{32, 3, 1}, v.Strides())

	v.Set(7, 1, 0, 0)
	assert.Equal(t, byte(7), raw[32])
	v.Set(9, 1, 7, 2)
	assert.Equal(t, byte(9), raw[32+7*3+2])

	v.Sub(0).Region(0, 8).Fill(1)
	for x := 0; x < 24; x++ {
		assert.Equal(t, byte(1), raw[x], "byte %d", x)
	}
	for x := 24; x < 32; x++ {
		assert.Equal(t, byte(0x55), raw[x], "padding byte %d", x)
	}
	assert.Equal(t, byte(0x55), raw[33])
}

func TestFrameCrop(t *testing.T) {
	fx := newFixture(t, 57)
	f := fx.mirror.FrameAt(fakeav.NewFrame(fx.ls).Pointer())
	want := abi.Crop{Top: 1, Bottom: 2, Left: 3, Right: 4}
	f.SetCrop(want)
	assert.Equal(t, want, f.Crop())
}

func TestDescriptorOverlay(t *testing.T) {
	for _, major := range []int{56, 57} {
		fx := newFixture(t, major)
		tbl := fx.mirror.Formats()

		rgb, ok := tbl.DescriptorByID(2)
		require.True(t, ok)
		assert.Equal(t, "rgb24", rgb.Name())
		assert.Equal(t, "rgb24", rgb.String())
		assert.Equal(t, avutil.PixelFormatRGB24, rgb.PixelFormat())
		assert.Equal(t, 3, rgb.NbComponents())
		assert.Equal(t, 24, rgb.BitsPerPixel())
		assert.Equal(t, 1, rgb.PlaneCount())
		assert.True(t, rgb.IsRGB())
		assert.False(t, rgb.IsPlanar())
		assert.False(t, rgb.HasAlpha())
		assert.Equal(t, 3, rgb.Component(1).Step())
		assert.Equal(t, 1, rgb.Component(1).Offset())
		assert.Contains(t, rgb.GoString(), "name=rgb24")

		yuv, _ := tbl.DescriptorByID(0)
		assert.Equal(t, 12, yuv.BitsPerPixel())
		assert.Equal(t, 3, yuv.PlaneCount())
		assert.True(t, yuv.IsPlanar())
		assert.Equal(t, 1, yuv.Log2ChromaW())
		assert.Equal(t, 1, yuv.Log2ChromaH())

		nv12, _ := tbl.DescriptorByID(23)
		assert.Equal(t, 2, nv12.PlaneCount())
		assert.Equal(t, 12, nv12.BitsPerPixel())

		rgba, _ := tbl.DescriptorByID(26)
		assert.True(t, rgba.HasAlpha())
		assert.Equal(t, 32, rgba.BitsPerPixel())

		gray, _ := tbl.DescriptorByID(8)
		assert.Equal(t, "y8", gray.Alias())

		step, ok := rgb.Component(0).StepMinus1()
		if major < 57 {
			assert.True(t, ok)
			assert.Equal(t, 2, step)
			depth, _ := rgb.Component(0).DepthMinus1()
			assert.Equal(t, 7, depth)
			off, _ := rgb.Component(2).OffsetPlus1()
			assert.Equal(t, 3, off)
		} else {
			assert.False(t, ok)
		}
		assert.Panics(t, func() { rgb.Component(abi.MaxComponents) })
	}
}

func TestLinkAndContextOverlay(t *testing.T) {
	fx := newFixture(t, 57)
	in := fakeav.NewLink(fx.ls, 2, 2, int32(avutil.PixelFormatRGB24))
	out := fakeav.NewLink(fx.ls, 0, 0, -1)
	ctx := fakeav.NewContext(fx.ls, "Parsed_ffbind_0",
		[]fakeav.Pad{{Name: "default", Type: avutil.MediaTypeVideo}},
		[]fakeav.Pad{{Name: "default", Type: avutil.MediaTypeVideo, NeedsWritable: true}},
		[]*fakeav.Block{in}, []*fakeav.Block{out})

	c, err := fx.mirror.Context(ctx.Raw())
	require.NoError(t, err)
	assert.Equal(t, "Parsed_ffbind_0", c.Name())
	assert.Equal(t, 1, c.NbInputs())
	assert.Equal(t, 1, c.NbOutputs())
	assert.Equal(t, int32(1), c.NbThreads())
	assert.Nil(t, c.Input(1))
	assert.Nil(t, c.InputPad(-1))

	il := c.Input(0)
	require.NotNil(t, il)
	assert.Equal(t, in.Pointer(), il.Pointer())
	assert.Equal(t, int32(2), il.W())
	assert.Equal(t, avutil.MediaTypeVideo, il.Type())
	assert.Equal(t, avutil.NewRational(1, 25), il.TimeBase())
	assert.Equal(t, avutil.NewRational(25, 1), il.FrameRate())
	in.SetInt64("current_pts", 50)
	assert.Equal(t, int64(2000000), il.CurrentPTSIn(avutil.TimeBaseQ))
	d, ok := il.Format()
	require.True(t, ok)
	assert.Equal(t, "rgb24", d.Name())
	assert.Equal(t, c.Pointer(), il.Dst().Pointer())
	assert.Nil(t, il.Src())
	assert.Equal(t, "default", il.DstPad().Name())

	ol := c.Output(0)
	require.NotNil(t, ol)
	ol.SetW(il.W() * 4)
	ol.SetH(il.H() * 4)
	assert.Equal(t, int32(8), out.Int32("w"))
	assert.Equal(t, int32(8), out.Int32("h"))
	assert.True(t, c.OutputPad(0).NeedsWritable())
	assert.False(t, c.InputPad(0).NeedsWritable())
	assert.Equal(t, avutil.MediaTypeVideo, c.OutputPad(0).Type())
	assert.Equal(t, "Parsed_ffbind_0", ol.Src().Name())
}

func TestPadWritableMarker(t *testing.T) {
	for _, major := range []int{56, 57} {
		fx := newFixture(t, major)
		outs := []*fakeav.Block{
			fakeav.NewLink(fx.ls, 2, 2, int32(avutil.PixelFormatRGB24)),
			fakeav.NewLink(fx.ls, 2, 2, int32(avutil.PixelFormatRGB24)),
		}
		ctx := fakeav.NewContext(fx.ls, "split", nil,
			[]fakeav.Pad{
				{Name: "output0", Type: avutil.MediaTypeVideo},
				{Name: "output1", Type: avutil.MediaTypeVideo, NeedsWritable: true},
			},
			nil, outs)

		c, err := fx.mirror.Context(ctx.Raw())
		require.NoError(t, err)
		assert.Equal(t, "output0", c.OutputPad(0).Name(), "major %d", major)
		assert.Equal(t, "output1", c.OutputPad(1).Name(), "major %d", major)
		assert.False(t, c.OutputPad(0).NeedsWritable(), "major %d", major)
		assert.True(t, c.OutputPad(1).NeedsWritable(), "major %d", major)
		assert.Equal(t, "output1", c.Output(1).SrcPad().Name(), "major %d", major)
	}
}
