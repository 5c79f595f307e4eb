// Package filter adapts user filter objects to the fixed set of callbacks
// a host invokes: format negotiation, link configuration and per-frame
// processing.
package filter

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/marshal"
)

// Callback names, as the host registers them.
const (
	MethodProcess      = "process"
	MethodFormats      = "get_formats"
	MethodConfigInput  = "config_input"
	MethodConfigOutput = "config_output"
)

var (
	// ErrNoProcess is returned when a filter has no per-frame callback.
	ErrNoProcess = errors.New("ffbind: filter has no process callback")

	// ErrBadArgument is returned when a callback receives an argument of
	// the wrong kind.
	ErrBadArgument = errors.New("ffbind: unexpected callback argument")
)

// Processor is the one callback every filter must provide. out is
// allocated by the host with the output link's geometry.
type Processor interface {
	Process(in, out *abi.Frame) error
}

// FormatLister reports the pixel formats a filter accepts. The result may
// be a single token or a sequence of names, ids or descriptors.
type FormatLister interface {
	Formats() (any, error)
}

// InputConfigurer is called once the input link is negotiated.
type InputConfigurer interface {
	ConfigureInput(link *abi.FilterLink) error
}

// OutputConfigurer is called to set the output link geometry.
type OutputConfigurer interface {
	ConfigureOutput(link *abi.FilterLink) error
}

// Funcs is a filter given as plain functions, with no instance. Nil
// fields are absent callbacks.
type Funcs struct {
	Process         func(in, out *abi.Frame) error
	Formats         func() (any, error)
	ConfigureInput  func(link *abi.FilterLink) error
	ConfigureOutput func(link *abi.FilterLink) error
}

// Adapter is the fixed dispatch table for one filter.
type Adapter struct {
	user      any
	process   marshal.Callable
	formats   marshal.Callable
	configIn  marshal.Callable
	configOut marshal.Callable
	env       marshal.Env
}

// Adapt inspects user once and builds its dispatch table. user is an
// object implementing Processor (and optionally the other interfaces),
// a Funcs value, or an existing *Adapter, which is returned as is.
func Adapt(env marshal.Env, user any) (*Adapter, error) {
	switch u := user.(type) {
	case *Adapter:
		return u, nil
	case Funcs:
		return adaptFuncs(env, u)
	case *Funcs:
		if u == nil {
			return nil, ErrNoProcess
		}
		return adaptFuncs(env, *u)
	}

	if _, ok := user.(Processor); !ok {
		return nil, fmt.Errorf("%w: %T", ErrNoProcess, user)
	}
	a := &Adapter{user: user, env: env}
	a.process = marshal.Bound(user, func(recv any, args marshal.Args) (any, error) {
		in, out, err := frameArgs(args)
		if err != nil {
			return nil, err
		}
		return nil, recv.(Processor).Process(in, out)
	})
	if _, ok := user.(FormatLister); ok {
		a.formats = marshal.Bound(user, func(recv any, _ marshal.Args) (any, error) {
			return recv.(FormatLister).Formats()
		})
	}
	if _, ok := user.(InputConfigurer); ok {
		a.configIn = marshal.Bound(user, func(recv any, args marshal.Args) (any, error) {
			l, err := linkArg(args)
			if err != nil {
				return nil, err
			}
			return nil, recv.(InputConfigurer).ConfigureInput(l)
		})
	}
	if _, ok := user.(OutputConfigurer); ok {
		a.configOut = marshal.Bound(user, func(recv any, args marshal.Args) (any, error) {
			l, err := linkArg(args)
			if err != nil {
				return nil, err
			}
			return nil, recv.(OutputConfigurer).ConfigureOutput(l)
		})
	}
	return a.decorate(), nil
}

func adaptFuncs(env marshal.Env, f Funcs) (*Adapter, error) {
	if f.Process == nil {
		return nil, ErrNoProcess
	}
	a := &Adapter{user: f, env: env}
	a.process = marshal.Static(func(args marshal.Args) (any, error) {
		in, out, err := frameArgs(args)
		if err != nil {
			return nil, err
		}
		return nil, f.Process(in, out)
	})
	if f.Formats != nil {
		a.formats = marshal.Static(func(marshal.Args) (any, error) { return f.Formats() })
	}
	if f.ConfigureInput != nil {
		a.configIn = marshal.Static(linkFunc(f.ConfigureInput))
	}
	if f.ConfigureOutput != nil {
		a.configOut = marshal.Static(linkFunc(f.ConfigureOutput))
	}
	return a.decorate(), nil
}

func linkFunc(fn func(*abi.FilterLink) error) marshal.Func {
	return func(args marshal.Args) (any, error) {
		l, err := linkArg(args)
		if err != nil {
			return nil, err
		}
		return nil, fn(l)
	}
}

func (a *Adapter) decorate() *Adapter {
	a.process = marshal.Apply(a.process, marshal.UnpackFrames(a.env))
	a.configIn = marshal.Apply(a.configIn, marshal.UnpackLinks(a.env))
	a.configOut = marshal.Apply(a.configOut, marshal.UnpackLinks(a.env))
	if a.env.Formats != nil {
		a.formats = marshal.Apply(a.formats, marshal.ConvertFormats(a.env.Formats))
	}

	logrus.WithFields(logrus.Fields{
		"function":      "filter.Adapt",
		"filter":        fmt.Sprintf("%T", a.user),
		"bound":         a.process.IsBound(),
		"get_formats":   a.Has(MethodFormats),
		"config_input":  a.Has(MethodConfigInput),
		"config_output": a.Has(MethodConfigOutput),
	}).Debug("Filter adapted")
	return a
}

func frameArgs(args marshal.Args) (in, out *abi.Frame, err error) {
	if len(args.Pos) != 2 {
		return nil, nil, fmt.Errorf("%w: process takes 2 frames, got %d arguments", ErrBadArgument, len(args.Pos))
	}
	in, ok1 := args.Pos[0].(*abi.Frame)
	out, ok2 := args.Pos[1].(*abi.Frame)
	if !ok1 || !ok2 {
		return nil, nil, fmt.Errorf("%w: process takes frames, got %T, %T", ErrBadArgument, args.Pos[0], args.Pos[1])
	}
	return in, out, nil
}

func linkArg(args marshal.Args) (*abi.FilterLink, error) {
	if len(args.Pos) != 1 {
		return nil, fmt.Errorf("%w: configure takes 1 link, got %d arguments", ErrBadArgument, len(args.Pos))
	}
	l, ok := args.Pos[0].(*abi.FilterLink)
	if !ok {
		return nil, fmt.Errorf("%w: configure takes a link, got %T", ErrBadArgument, args.Pos[0])
	}
	return l, nil
}

// User returns the adapted object or Funcs value.
func (a *Adapter) User() any { return a.user }

// Has reports whether the filter provides the named callback.
func (a *Adapter) Has(method string) bool {
	switch method {
	case MethodProcess:
		return !a.process.IsZero()
	case MethodFormats:
		return !a.formats.IsZero()
	case MethodConfigInput:
		return !a.configIn.IsZero()
	case MethodConfigOutput:
		return !a.configOut.IsZero()
	}
	return false
}

// Process runs the per-frame callback. in and out may be abi.Raw views,
// unsafe.Pointers or frame overlays.
func (a *Adapter) Process(in, out any) error {
	_, err := a.process.Call(marshal.NewArgs(in, out))
	return err
}

// Formats returns the canonical format list, or nil when the filter does
// not restrict formats.
func (a *Adapter) Formats() ([]any, error) {
	if a.formats.IsZero() {
		return nil, nil
	}
	res, err := a.formats.Call(marshal.Args{})
	if err != nil {
		return nil, err
	}
	return marshal.Sequence(res), nil
}

// FormatIDs returns the ids of the formats the filter accepts. Tokens
// that name no known format are dropped.
func (a *Adapter) FormatIDs() ([]int32, error) {
	formats, err := a.Formats()
	if err != nil || formats == nil {
		return nil, err
	}
	ids := make([]int32, 0, len(formats))
	for _, f := range formats {
		d, ok := f.(*abi.PixFmtDescriptor)
		if !ok || d == nil {
			logrus.WithFields(logrus.Fields{
				"function": "Adapter.FormatIDs",
				"token":    f,
			}).Warn("Ignoring unknown pixel format")
			continue
		}
		ids = append(ids, d.ID())
	}
	return ids, nil
}

// ConfigureInput runs the input link callback if present.
func (a *Adapter) ConfigureInput(link any) error {
	if a.configIn.IsZero() {
		return nil
	}
	_, err := a.configIn.Call(marshal.NewArgs(link))
	return err
}

// ConfigureOutput runs the output link callback if present.
func (a *Adapter) ConfigureOutput(link any) error {
	if a.configOut.IsZero() {
		return nil
	}
	_, err := a.configOut.Call(marshal.NewArgs(link))
	return err
}
