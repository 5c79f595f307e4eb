//go:build !ios && !android && (amd64 || arm64)

package upscale

import (
	"sync"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/swscale"
)

func init() {
	RegisterResizer("swscale", func(int) (Resizer, error) {
		if err := swscale.Init(); err != nil {
			return nil, err
		}
		return &Native{Flags: swscale.FlagBicubic}, nil
	})
}

type geometry struct {
	sw, sh, dw, dh int32
	format         int32
}

// Native resizes through libswscale. The context is rebuilt when the
// frame geometry changes.
type Native struct {
	Flags int32

	mu  sync.Mutex
	geo geometry
	ctx swscale.Context
}

// Resize implements Resizer.
func (n *Native) Resize(in, out *abi.Frame) error {
	g := geometry{in.Width(), in.Height(), out.Width(), out.Height(), in.FormatID()}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ctx == nil || g != n.geo {
		swscale.FreeContext(n.ctx)
		n.ctx = nil
		pf := avutil.PixelFormat(g.format)
		ctx, err := swscale.GetContext(int(g.sw), int(g.sh), pf, int(g.dw), int(g.dh), pf, n.Flags)
		if err != nil {
			return err
		}
		n.ctx, n.geo = ctx, g
	}
	return swscale.ScaleFrames(n.ctx, out, in)
}

// Close frees the scaling context.
func (n *Native) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	swscale.FreeContext(n.ctx)
	n.ctx = nil
}
