// Package ffbind assembles the pieces a Go filter callback needs to see
// native FFmpeg frames and filter links: the resolved version, the struct
// layouts for it, the pixel format registry and the overlay mirror.
//
// A Runtime is built once per process. Everything it holds is read-only
// after New returns and may be shared between goroutines.
package ffbind

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/filter"
	"github.com/obinnaokechukwu/ffbind/marshal"
	"github.com/obinnaokechukwu/ffbind/pixfmt"
	"github.com/obinnaokechukwu/ffbind/version"
)

// Native is the capability surface of the loaded libavutil.
type Native interface {
	// Version returns the packed avutil_version() value, 0 when unavailable.
	Version() uint32
	pixfmt.Source
}

// FilterVersioner is implemented by a Native that can also report the
// loaded libavfilter. Its link and pad layouts are checked against the
// resolved range when it does.
type FilterVersioner interface {
	// FilterVersion returns the packed avfilter_version() value, 0 when
	// libavfilter is not loaded.
	FilterVersion() uint32
}

// Runtime holds the layout state for one loaded libavutil.
type Runtime struct {
	cfg     Config
	packed  uint32
	filter  uint32
	info    version.Info
	layouts *abi.Layouts
	formats *pixfmt.Registry
	mirror  *abi.Mirror
}

// New reads the version from native exactly once and derives everything
// else from it.
func New(cfg Config, native Native) (*Runtime, error) {
	if native == nil {
		return nil, ErrNotLoaded
	}
	packed := native.Version()
	if packed == 0 {
		return nil, ErrNotLoaded
	}

	info, err := cfg.Version.Resolve(version.Major(packed))
	if err != nil {
		return nil, err
	}
	var filterPacked uint32
	if fv, ok := native.(FilterVersioner); ok {
		filterPacked = fv.FilterVersion()
	}
	if filterPacked != 0 {
		if err := cfg.Version.CheckFilter(info, filterPacked); err != nil {
			return nil, err
		}
	}
	layouts, err := abi.NewLayouts(info.Caps)
	if err != nil {
		return nil, fmt.Errorf("ffbind: layouts: %w", err)
	}
	formats, err := pixfmt.Build(native, layouts)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		cfg:     cfg,
		packed:  packed,
		filter:  filterPacked,
		info:    info,
		layouts: layouts,
		formats: formats,
		mirror:  abi.NewMirror(layouts, formats),
	}

	log := logrus.WithFields(logrus.Fields{
		"function":    "New",
		"version":     version.String(packed),
		"range":       info.Range.String(),
		"pkt_pts":     info.Caps.PktPTS,
		"error_frame": info.Caps.ErrorFrame,
		"frame_qp":    info.Caps.FrameQP,
		"plus1minus1": info.Caps.PlusOneMinusOne,
		"pad_flags":   info.Caps.PadFlags,
		"formats":     formats.Len(),
		"min_format":  formats.Min(),
		"max_format":  formats.Max(),
	})
	if filterPacked == 0 {
		log.Debug("libavfilter version unknown, link layouts unchecked")
	} else {
		log = log.WithField("avfilter", version.String(filterPacked))
	}
	log.Info("Runtime initialized")
	return rt, nil
}

// Config returns the configuration the runtime was built with.
func (rt *Runtime) Config() Config { return rt.cfg }

// PackedVersion returns the raw avutil_version() value.
func (rt *Runtime) PackedVersion() uint32 { return rt.packed }

// FilterVersion returns the raw avfilter_version() value checked by New,
// 0 when none was available.
func (rt *Runtime) FilterVersion() uint32 { return rt.filter }

// Info returns the resolved version state.
func (rt *Runtime) Info() version.Info { return rt.info }

// Layouts returns the struct layouts for the resolved version.
func (rt *Runtime) Layouts() *abi.Layouts { return rt.layouts }

// Formats returns the pixel format registry.
func (rt *Runtime) Formats() *pixfmt.Registry { return rt.formats }

// Mirror returns the overlay factory.
func (rt *Runtime) Mirror() *abi.Mirror { return rt.mirror }

// Env returns what the marshalling decorators need.
func (rt *Runtime) Env() marshal.Env {
	return marshal.Env{Mirror: rt.mirror, Formats: rt.formats}
}

// Adapt wraps a user filter object.
func (rt *Runtime) Adapt(user any) (*filter.Adapter, error) {
	return filter.Adapt(rt.Env(), user)
}

// NewFilter constructs a registered filter class.
func (rt *Runtime) NewFilter(class, arg string) (*filter.Adapter, error) {
	return filter.New(rt.Env(), class, arg)
}
