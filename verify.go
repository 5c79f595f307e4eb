//go:build !ios && !android && (amd64 || arm64)

package ffbind

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avfilter"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/version"
)

const (
	checkW     = 6
	checkH     = 4
	checkPTS   = 3003
	checkSplit = 2
)

var (
	checkTimeBase  = avutil.NewRational(1, 90000)
	checkFrameRate = avutil.NewRational(30000, 1001)
	checkSAR       = avutil.NewRational(4, 3)
)

// VerifyLayout builds a buffer -> split -> buffersink graph in the native
// library, pushes one frame through it and reads everything back through
// the overlays. A disagreement means the resolved layouts do not match the
// loaded library, and ErrLayoutMismatch is returned. It needs libavfilter
// in addition to libavutil, inside the version window of the resolved range.
func VerifyLayout(rt *Runtime) error {
	log := logrus.WithFields(logrus.Fields{
		"function": "VerifyLayout",
		"range":    rt.Info().Range.String(),
	})
	if err := avfilter.Init(); err != nil {
		return err
	}
	if err := rt.Config().Version.CheckFilter(rt.Info(), avfilter.Version()); err != nil {
		return err
	}

	var bad []string
	mismatch := func(what string, got, want any) {
		bad = append(bad, fmt.Sprintf("%s = %v, want %v", what, got, want))
	}

	format := int32(avutil.PixelFormatRGB24)
	if err := verifyGraph(rt, format, mismatch); err != nil {
		return err
	}
	if err := verifyFrame(rt, format, mismatch); err != nil {
		return err
	}

	if len(bad) > 0 {
		log.WithField("mismatches", bad).Error("Layout self-check failed")
		return fmt.Errorf("%w: %s", ErrLayoutMismatch, strings.Join(bad, "; "))
	}
	log.WithField("avfilter", version.String(avfilter.Version())).Info("Layout self-check passed")
	return nil
}

func verifyGraph(rt *Runtime, format int32, mismatch func(string, any, any)) error {
	graph, err := avfilter.GraphAlloc()
	if err != nil {
		return err
	}
	defer avfilter.GraphFree(&graph)

	args := fmt.Sprintf("video_size=%dx%d:pix_fmt=%d:time_base=%d/%d:frame_rate=%d/%d:pixel_aspect=%d/%d",
		checkW, checkH, format,
		checkTimeBase.Num, checkTimeBase.Den,
		checkFrameRate.Num, checkFrameRate.Den,
		checkSAR.Num, checkSAR.Den)
	src, err := avfilter.GraphCreateFilter(graph, avfilter.GetByName("buffer"), "verify_in", args)
	if err != nil {
		return err
	}
	split, err := avfilter.GraphCreateFilter(graph, avfilter.GetByName("split"), "verify_split", fmt.Sprint(checkSplit))
	if err != nil {
		return err
	}
	if err := avfilter.Link(src, 0, split, 0); err != nil {
		return err
	}
	sinks := make([]avfilter.Context, checkSplit)
	for i := range sinks {
		if sinks[i], err = avfilter.GraphCreateFilter(graph, avfilter.GetByName("buffersink"), fmt.Sprintf("verify_out%d", i), ""); err != nil {
			return err
		}
		if err := avfilter.Link(split, uint32(i), sinks[i], 0); err != nil {
			return err
		}
	}
	if err := avfilter.GraphConfig(graph); err != nil {
		return err
	}

	ctx := rt.Mirror().ContextAt(src)
	if ctx.Name() != "verify_in" {
		mismatch("AVFilterContext.name", ctx.Name(), "verify_in")
	}
	if ctx.NbOutputs() != 1 {
		mismatch("AVFilterContext.nb_outputs", ctx.NbOutputs(), 1)
		return nil
	}
	link := ctx.Output(0)
	if link == nil {
		mismatch("AVFilterContext.outputs[0]", nil, "link")
		return nil
	}
	verifyLink(link, format, mismatch)
	verifyPads(ctx, mismatch)

	sc := link.Dst()
	if sc == nil || sc.Name() != "verify_split" {
		mismatch("AVFilterLink.dst", sc, "verify_split")
		return nil
	}
	if sc.NbOutputs() != checkSplit {
		mismatch("AVFilterContext.nb_outputs", sc.NbOutputs(), checkSplit)
		return nil
	}
	verifyPads(sc, mismatch)
	for i := 0; i < checkSplit; i++ {
		out := sc.Output(i)
		want := fmt.Sprintf("verify_out%d", i)
		if out == nil || out.Dst() == nil || out.Dst().Name() != want {
			mismatch(fmt.Sprintf("%s.outputs[%d].dst", sc.Name(), i), out, want)
		}
	}

	return verifyRoundTrip(rt, src, sinks[0], format, mismatch)
}

func verifyLink(link *abi.FilterLink, format int32, mismatch func(string, any, any)) {
	if link.W() != checkW {
		mismatch("AVFilterLink.w", link.W(), checkW)
	}
	if link.H() != checkH {
		mismatch("AVFilterLink.h", link.H(), checkH)
	}
	if link.FormatID() != format {
		mismatch("AVFilterLink.format", link.FormatID(), format)
	}
	if tb := link.TimeBase(); tb != checkTimeBase {
		mismatch("AVFilterLink.time_base", tb, checkTimeBase)
	}
	if fr := link.FrameRate(); fr != checkFrameRate {
		mismatch("AVFilterLink.frame_rate", fr, checkFrameRate)
	}
	if sar := link.SampleAspectRatio(); sar != checkSAR {
		mismatch("AVFilterLink.sample_aspect_ratio", sar, checkSAR)
	}
}

// verifyPads compares each output pad read through the overlay with what
// avfilter_pad_get_name and avfilter_pad_get_type return for the same
// index. A wrong pad stride shows up from index 1 on.
func verifyPads(ctx *abi.FilterContext, mismatch func(string, any, any)) {
	first := ctx.OutputPad(0)
	if first == nil {
		mismatch(ctx.Name()+".output_pads", nil, "pads")
		return
	}
	base := first.Pointer()
	for i := 0; i < ctx.NbOutputs(); i++ {
		pad := ctx.OutputPad(i)
		what := fmt.Sprintf("%s.output_pads[%d]", ctx.Name(), i)
		if name := avfilter.PadName(base, i); pad.Name() != name {
			mismatch(what+".name", pad.Name(), name)
		}
		if typ := avfilter.PadType(base, i); pad.Type() != typ {
			mismatch(what+".type", pad.Type(), typ)
		}
		if sp := ctx.Output(i).SrcPad(); sp == nil || sp.Pointer() != pad.Pointer() {
			mismatch(fmt.Sprintf("%s.outputs[%d].srcpad", ctx.Name(), i), sp, pad)
		}
	}
}

// verifyRoundTrip pushes a frame with known timestamps into src and pulls it
// back out of sink. The library copies the props, so pts,
// best_effort_timestamp and sample_aspect_ratio at the overlay offsets must
// survive unchanged.
func verifyRoundTrip(rt *Runtime, src, sink avfilter.Context, format int32, mismatch func(string, any, any)) error {
	in := avutil.FrameAlloc()
	if in == nil {
		return ErrNotLoaded
	}
	defer avutil.FrameFree(&in)
	out := avutil.FrameAlloc()
	if out == nil {
		return ErrNotLoaded
	}
	defer avutil.FrameFree(&out)

	f := rt.Mirror().FrameAt(in)
	f.SetWidth(checkW)
	f.SetHeight(checkH)
	f.SetFormatID(format)
	if err := avutil.FrameGetBuffer(in, 0); err != nil {
		mismatch("av_frame_get_buffer", err, nil)
		return nil
	}
	f.SetPTS(checkPTS)
	f.SetBestEffortTimestamp(checkPTS)
	f.SetSampleAspectRatio(checkSAR)

	if err := avfilter.BufferSrcAddFrameFlags(src, in, avfilter.BufferSrcFlagKeepRef|avfilter.BufferSrcFlagPush); err != nil {
		mismatch("av_buffersrc_add_frame_flags", err, nil)
		return nil
	}
	if err := avfilter.BufferSinkGetFrame(sink, out); err != nil {
		mismatch("av_buffersink_get_frame", err, nil)
		return nil
	}

	g := rt.Mirror().FrameAt(out)
	if g.Width() != checkW || g.Height() != checkH {
		mismatch("sink AVFrame size", fmt.Sprintf("%dx%d", g.Width(), g.Height()), fmt.Sprintf("%dx%d", checkW, checkH))
	}
	if g.FormatID() != format {
		mismatch("sink AVFrame.format", g.FormatID(), format)
	}
	if g.PTS() != checkPTS {
		mismatch("sink AVFrame.pts", g.PTS(), checkPTS)
	}
	if g.BestEffortTimestamp() != checkPTS {
		mismatch("sink AVFrame.best_effort_timestamp", g.BestEffortTimestamp(), checkPTS)
	}
	if sar := g.SampleAspectRatio(); sar != checkSAR {
		mismatch("sink AVFrame.sample_aspect_ratio", sar, checkSAR)
	}
	if g.Data(0) == nil {
		mismatch("sink AVFrame.data[0]", nil, "buffer")
	}
	return nil
}

func verifyFrame(rt *Runtime, format int32, mismatch func(string, any, any)) error {
	raw := avutil.FrameAlloc()
	if raw == nil {
		return ErrNotLoaded
	}
	defer avutil.FrameFree(&raw)

	f := rt.Mirror().FrameAt(raw)
	f.SetWidth(checkW)
	f.SetHeight(checkH)
	f.SetFormatID(format)
	// av_frame_get_buffer reads width, height and format at the computed
	// offsets; a wrong offset fails here or allocates the wrong geometry.
	if err := avutil.FrameGetBuffer(raw, 0); err != nil {
		mismatch("av_frame_get_buffer", err, nil)
		return nil
	}
	if f.Data(0) == nil {
		mismatch("AVFrame.data[0]", nil, "buffer")
	}
	if ls := f.Linesize(0); ls < checkW*3 {
		mismatch("AVFrame.linesize[0]", ls, fmt.Sprintf(">= %d", checkW*3))
	}
	if f.Data(1) != nil {
		mismatch("AVFrame.data[1]", f.Data(1), nil)
	}
	if d, ok := f.Format(); !ok || d.Name() != "rgb24" {
		mismatch("AVFrame.format descriptor", d, "rgb24")
	}
	return nil
}
