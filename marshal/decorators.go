package marshal

import (
	"reflect"
	"unsafe"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/pixfmt"
)

// Decorator names.
const (
	NameUnpackFrames   = "unpack_frames"
	NameUnpackLinks    = "unpack_links"
	NameConvertFormats = "convert_formats"
)

// Env is what the decorators need from the runtime.
type Env struct {
	Mirror  *abi.Mirror
	Formats *pixfmt.Registry
}

func rawOf(v any) (abi.Raw, bool) {
	switch r := v.(type) {
	case abi.Raw:
		return r, true
	case unsafe.Pointer:
		return abi.RawPointer(r), true
	}
	return abi.Raw{}, false
}

// UnpackFrames replaces every raw argument with an *abi.Frame overlay.
// Other arguments pass through.
func UnpackFrames(env Env) Decorator {
	return unpack(NameUnpackFrames, func(r abi.Raw) (any, error) {
		return env.Mirror.Frame(r)
	})
}

// UnpackLinks replaces every raw argument with an *abi.FilterLink overlay.
func UnpackLinks(env Env) Decorator {
	return unpack(NameUnpackLinks, func(r abi.Raw) (any, error) {
		return env.Mirror.Link(r)
	})
}

func unpack(name string, overlay func(abi.Raw) (any, error)) Decorator {
	transform := func(v any) (any, error) {
		if r, ok := rawOf(v); ok {
			return overlay(r)
		}
		return v, nil
	}
	return Decorator{
		Name: name,
		Wrap: func(fn Func) Func {
			return func(a Args) (any, error) {
				na, err := a.Map(transform)
				if err != nil {
					return nil, err
				}
				return fn(na)
			}
		},
	}
}

// ConvertFormats coerces the result to a sequence and canonicalizes every
// element through reg. Slices and arrays, except []byte, are sequences;
// any other value, nil included, becomes a one-element sequence.
func ConvertFormats(reg *pixfmt.Registry) Decorator {
	return Decorator{
		Name: NameConvertFormats,
		Wrap: func(fn Func) Func {
			return func(a Args) (any, error) {
				res, err := fn(a)
				if err != nil {
					return nil, err
				}
				return reg.ToCanonical(Sequence(res)), nil
			}
		},
	}
}

// Sequence returns v as a []any.
func Sequence(v any) []any {
	switch s := v.(type) {
	case []any:
		return append([]any(nil), s...)
	case []byte:
		return []any{s}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
