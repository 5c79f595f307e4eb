package upscale

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/buffer"
)

// Cubic resamples packed 3-byte pixels with a Catmull-Rom kernel. Rows are
// split into Jobs slices, job i covering [h*i/Jobs, h*(i+1)/Jobs).
type Cubic struct {
	Jobs int
}

// Resize implements Resizer.
func (c Cubic) Resize(in, out *abi.Frame) error {
	sw, sh := int(in.Width()), int(in.Height())
	dw, dh := int(out.Width()), int(out.Height())
	if sw <= 0 || sh <= 0 || dw <= 0 || dh <= 0 {
		return fmt.Errorf("upscale: empty frame %dx%d -> %dx%d", sw, sh, dw, dh)
	}
	sv, err := in.PackedPlane(0)
	if err != nil {
		return err
	}
	dv, err := out.PackedPlane(0)
	if err != nil {
		return err
	}
	if sv.Shape()[1] < sw || dv.Shape()[1] < dw {
		return fmt.Errorf("upscale: linesize shorter than width")
	}

	src := image.NewRGBA(image.Rect(0, 0, sw, sh))
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	if err := sliceJobs(c.Jobs, sh, func(start, end int) error {
		for y := start; y < end; y++ {
			unpackRow(src.Pix[y*src.Stride:], sv.Sub(y).Region(0, sw))
		}
		return nil
	}); err != nil {
		return err
	}

	return sliceJobs(c.Jobs, dh, func(start, end int) error {
		// A rectangular mask limits the kernel to rows [start, end).
		opts := &draw.Options{DstMask: image.Rect(0, start, dw, end)}
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, opts)
		for y := start; y < end; y++ {
			packRow(dv.Sub(y).Region(0, dw), dst.Pix[y*dst.Stride:])
		}
		return nil
	})
}

func sliceJobs(jobs, height int, fn func(start, end int) error) error {
	if jobs < 1 {
		jobs = 1
	}
	if jobs > height {
		jobs = height
	}
	var g errgroup.Group
	for job := 0; job < jobs; job++ {
		start := height * job / jobs
		end := height * (job + 1) / jobs
		g.Go(func() error { return fn(start, end) })
	}
	return g.Wait()
}

func unpackRow(rgba []byte, row *buffer.View) {
	px := row.Bytes()
	for x := 0; x+2 < len(px); x += 3 {
		o := x / 3 * 4
		rgba[o], rgba[o+1], rgba[o+2], rgba[o+3] = px[x], px[x+1], px[x+2], 0xFF
	}
}

func packRow(row *buffer.View, rgba []byte) {
	px := row.Bytes()
	for x := 0; x+2 < len(px); x += 3 {
		o := x / 3 * 4
		px[x], px[x+1], px[x+2] = rgba[o], rgba[o+1], rgba[o+2]
	}
}
