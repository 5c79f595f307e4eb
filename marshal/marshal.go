// Package marshal holds the decorators that turn the raw arguments a host
// passes to filter callbacks into typed overlays, and typed results back
// into canonical values.
//
// Every callback is reduced to the uniform shape Func. A Callable pairs a
// Func with its dispatch style: bound to a receiver, or static.
package marshal

import (
	"fmt"
	"slices"
)

// Args carries positional and named arguments.
type Args struct {
	Pos   []any
	Named map[string]any
}

// NewArgs returns positional arguments.
func NewArgs(pos ...any) Args {
	return Args{Pos: pos}
}

// Map returns a copy of a with f applied to every argument.
func (a Args) Map(f func(any) (any, error)) (Args, error) {
	out := Args{Pos: make([]any, len(a.Pos))}
	for i, v := range a.Pos {
		nv, err := f(v)
		if err != nil {
			return Args{}, fmt.Errorf("argument %d: %w", i, err)
		}
		out.Pos[i] = nv
	}
	if a.Named != nil {
		out.Named = make(map[string]any, len(a.Named))
		for k, v := range a.Named {
			nv, err := f(v)
			if err != nil {
				return Args{}, fmt.Errorf("argument %q: %w", k, err)
			}
			out.Named[k] = nv
		}
	}
	return out, nil
}

// Func is the uniform callback shape.
type Func func(Args) (any, error)

// Method is a Func that takes its receiver explicitly.
type Method func(recv any, a Args) (any, error)

// Decorator wraps a Func. Name identifies the decorator so applying it
// twice is detected.
type Decorator struct {
	Name string
	Wrap func(Func) Func
}

// Callable is a Func together with its dispatch style.
type Callable struct {
	static  Func
	method  Method
	recv    any
	bound   bool
	applied []string
}

// Static returns a callable dispatched without a receiver.
func Static(fn Func) Callable {
	return Callable{static: fn}
}

// Bound returns a callable dispatched on recv.
func Bound(recv any, m Method) Callable {
	return Callable{method: m, recv: recv, bound: true}
}

// IsBound reports whether the callable dispatches on a receiver.
func (c Callable) IsBound() bool { return c.bound }

// Receiver returns the receiver of a bound callable, nil otherwise.
func (c Callable) Receiver() any { return c.recv }

// IsZero reports whether c wraps nothing.
func (c Callable) IsZero() bool { return c.static == nil && c.method == nil }

// Applied reports whether the named decorator has been applied.
func (c Callable) Applied(name string) bool { return slices.Contains(c.applied, name) }

// Call dispatches a.
func (c Callable) Call(a Args) (any, error) {
	if c.bound {
		return c.method(c.recv, a)
	}
	return c.static(a)
}

// Func returns a as a plain Func, with the receiver bound in.
func (c Callable) Func() Func { return c.Call }

// Transparent lifts d to callables. It unwraps c to its underlying
// function, decorates it and rewraps it with the same dispatch style and
// receiver. A callable already decorated with d is returned unchanged.
func Transparent(d Decorator) func(Callable) Callable {
	return func(c Callable) Callable {
		if c.IsZero() || c.Applied(d.Name) {
			return c
		}
		applied := append(slices.Clip(c.applied), d.Name)
		if !c.bound {
			return Callable{static: d.Wrap(c.static), applied: applied}
		}
		m := c.method
		return Callable{
			method: func(recv any, a Args) (any, error) {
				inner := func(a Args) (any, error) { return m(recv, a) }
				return d.Wrap(inner)(a)
			},
			recv:    c.recv,
			bound:   true,
			applied: applied,
		}
	}
}

// Apply applies decorators to c in order, innermost first.
func Apply(c Callable, decs ...Decorator) Callable {
	for _, d := range decs {
		c = Transparent(d)(c)
	}
	return c
}
