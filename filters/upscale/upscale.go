// Package upscale is an example filter: it multiplies the frame size by an
// integer factor and resamples rgb24 pixels with a cubic kernel.
//
// It registers itself as class "upscale". The init argument is either a
// bare factor ("4") or colon separated options:
//
//	factor=3:jobs=4:resizer=cubic
package upscale

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/filter"
)

// Class is the name the filter registers under.
const Class = "upscale"

// DefaultFactor matches the host's fixed 4x output link.
const DefaultFactor = 4

// ErrBadOption is returned for an init argument the filter cannot parse.
var ErrBadOption = errors.New("upscale: bad option")

// Resizer fills out, whose geometry is already set, from in.
type Resizer interface {
	Resize(in, out *abi.Frame) error
}

// ResizerFactory builds a Resizer for a filter running jobs slice jobs.
type ResizerFactory func(jobs int) (Resizer, error)

var (
	resizersMu sync.RWMutex
	resizers   = map[string]ResizerFactory{
		"cubic": func(jobs int) (Resizer, error) { return Cubic{Jobs: jobs}, nil },
	}
)

// RegisterResizer makes a resizer selectable with resizer=name.
func RegisterResizer(name string, f ResizerFactory) {
	resizersMu.Lock()
	defer resizersMu.Unlock()
	resizers[name] = f
}

// Resizers returns the selectable resizer names, sorted.
func Resizers() []string {
	resizersMu.RLock()
	defer resizersMu.RUnlock()
	names := make([]string, 0, len(resizers))
	for n := range resizers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	filter.Register(Class, func(arg string) (any, error) { return New(arg) })
}

// Options configure a Filter.
type Options struct {
	Factor  int
	Jobs    int
	Resizer string
}

// ParseOptions parses an init argument. Empty fields keep their defaults.
func ParseOptions(arg string) (Options, error) {
	opts := Options{Factor: DefaultFactor, Jobs: runtime.GOMAXPROCS(0), Resizer: "cubic"}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return opts, nil
	}
	for _, kv := range strings.Split(arg, ":") {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			key, value = "factor", kv
		}
		switch key {
		case "factor", "jobs":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Options{}, fmt.Errorf("%w: %s=%q", ErrBadOption, key, value)
			}
			if key == "factor" {
				opts.Factor = n
			} else {
				opts.Jobs = n
			}
		case "resizer":
			opts.Resizer = value
		default:
			return Options{}, fmt.Errorf("%w: unknown key %q", ErrBadOption, key)
		}
	}
	return opts, nil
}

// Filter is the upscaling filter.
type Filter struct {
	opts    Options
	resizer Resizer
}

// New builds a Filter from an init argument.
func New(arg string) (*Filter, error) {
	opts, err := ParseOptions(arg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(opts)
}

// NewWithOptions builds a Filter from parsed options.
func NewWithOptions(opts Options) (*Filter, error) {
	resizersMu.RLock()
	factory, ok := resizers[opts.Resizer]
	resizersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: resizer %q (have %v)", ErrBadOption, opts.Resizer, Resizers())
	}
	r, err := factory(opts.Jobs)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"function": "upscale.New",
		"factor":   opts.Factor,
		"jobs":     opts.Jobs,
		"resizer":  opts.Resizer,
	}).Info("Upscale filter created")
	return &Filter{opts: opts, resizer: r}, nil
}

// Options returns the filter's options.
func (f *Filter) Options() Options { return f.opts }

// Formats accepts rgb24 only.
func (f *Filter) Formats() (any, error) {
	return []string{"rgb24"}, nil
}

// ConfigureOutput sizes the output link from the input link of the same
// filter context, or from the link itself when it has no source.
func (f *Filter) ConfigureOutput(link *abi.FilterLink) error {
	w, h := link.W(), link.H()
	if src := link.Src(); src != nil {
		if in := src.Input(0); in != nil {
			w, h = in.W(), in.H()
		}
	}
	link.SetW(w * int32(f.opts.Factor))
	link.SetH(h * int32(f.opts.Factor))
	return nil
}

// Process resizes in into out. out carries the configured output size.
func (f *Filter) Process(in, out *abi.Frame) error {
	if in.FormatID() != out.FormatID() {
		return fmt.Errorf("upscale: format mismatch %d -> %d", in.FormatID(), out.FormatID())
	}
	return f.resizer.Resize(in, out)
}
