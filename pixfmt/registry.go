// Package pixfmt enumerates the pixel formats a loaded libavutil knows
// and canonicalizes format tokens (names, ids, descriptors).
package pixfmt

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
)

// ErrDuplicateName is returned when two descriptors share a name.
var ErrDuplicateName = errors.New("ffbind: duplicate pixel format name")

// Source is the native descriptor iteration surface:
// av_pix_fmt_desc_next and av_pix_fmt_desc_get_id.
type Source interface {
	// Next returns the descriptor after prev, the first for nil, and nil
	// when the table is exhausted.
	Next(prev unsafe.Pointer) unsafe.Pointer
	ID(desc unsafe.Pointer) int32
}

// Registry is the immutable snapshot of the native format table.
type Registry struct {
	list   []*abi.PixFmtDescriptor
	byName map[string]*abi.PixFmtDescriptor
	byID   map[int32]*abi.PixFmtDescriptor
	min    int32
	max    int32
}

// Build walks src once and indexes every descriptor by name and id.
func Build(src Source, layouts *abi.Layouts) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*abi.PixFmtDescriptor),
		byID:   make(map[int32]*abi.PixFmtDescriptor),
	}
	for p := src.Next(nil); p != nil; p = src.Next(p) {
		d := abi.NewPixFmtDescriptor(p, layouts, src.ID(p))
		if prev, dup := r.byName[d.Name()]; dup {
			return nil, fmt.Errorf("%w: %q (ids %d and %d)", ErrDuplicateName, d.Name(), prev.ID(), d.ID())
		}
		if len(r.list) == 0 {
			r.min, r.max = d.ID(), d.ID()
		}
		r.min = min(r.min, d.ID())
		r.max = max(r.max, d.ID())
		r.list = append(r.list, d)
		r.byName[d.Name()] = d
		r.byID[d.ID()] = d
	}

	logrus.WithFields(logrus.Fields{
		"function": "pixfmt.Build",
		"count":    len(r.list),
		"min":      r.min,
		"max":      r.max,
	}).Debug("Pixel format registry built")
	return r, nil
}

// Len returns the number of descriptors.
func (r *Registry) Len() int { return len(r.list) }

// Min returns the smallest id, or 0 for an empty registry.
func (r *Registry) Min() int32 { return r.min }

// Max returns the largest id, or 0 for an empty registry.
func (r *Registry) Max() int32 { return r.max }

// Descriptors returns every descriptor in enumeration order.
func (r *Registry) Descriptors() []*abi.PixFmtDescriptor {
	return append([]*abi.PixFmtDescriptor(nil), r.list...)
}

// ByName looks up a descriptor by exact, case-sensitive name.
func (r *Registry) ByName(name string) (*abi.PixFmtDescriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// ByID looks up a descriptor by AVPixelFormat value.
func ByID[T ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](r *Registry, id T) (*abi.PixFmtDescriptor, bool) {
	if int64(id) < int64(r.min) || int64(id) > int64(r.max) {
		return nil, false
	}
	return r.DescriptorByID(int32(id))
}

// DescriptorByID implements abi.FormatTable.
func (r *Registry) DescriptorByID(id int32) (*abi.PixFmtDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Canonical resolves one token. Names and integer ids are looked up;
// descriptors are returned as they are. ok is false for anything the
// registry does not know.
func (r *Registry) Canonical(token any) (*abi.PixFmtDescriptor, bool) {
	switch v := token.(type) {
	case *abi.PixFmtDescriptor:
		return v, v != nil
	case string:
		return r.ByName(v)
	case int:
		return ByID(r, v)
	case int8:
		return ByID(r, v)
	case int16:
		return ByID(r, v)
	case int32:
		return ByID(r, v)
	case int64:
		return ByID(r, v)
	case uint:
		return ByID(r, v)
	case uint8:
		return ByID(r, v)
	case uint16:
		return ByID(r, v)
	case uint32:
		return ByID(r, v)
	case uint64:
		return ByID(r, v)
	case avutil.PixelFormat:
		return ByID(r, v)
	}
	return nil, false
}

// ToCanonical maps tokens to descriptors. Tokens that do not resolve are
// passed through unchanged.
func (r *Registry) ToCanonical(tokens []any) []any {
	out := make([]any, len(tokens))
	for i, tok := range tokens {
		if d, ok := r.Canonical(tok); ok {
			out[i] = d
			continue
		}
		out[i] = tok
	}
	return out
}

// IDs returns the ids of the tokens that resolve, in order. It is the
// shape a host negotiating formats consumes.
func (r *Registry) IDs(tokens []any) []int32 {
	ids := make([]int32, 0, len(tokens))
	for _, tok := range tokens {
		if d, ok := r.Canonical(tok); ok {
			ids = append(ids, d.ID())
		}
	}
	return ids
}
