package abi

import "unsafe"

// FormatTable resolves pixel format ids to descriptors.
// The pixfmt registry implements it.
type FormatTable interface {
	DescriptorByID(id int32) (*PixFmtDescriptor, bool)
}

// Mirror builds overlays for one resolved set of layouts.
type Mirror struct {
	layouts *Layouts
	formats FormatTable
}

// NewMirror pairs layouts with the table used by Frame.Format and
// FilterLink.Format. formats may be nil.
func NewMirror(layouts *Layouts, formats FormatTable) *Mirror {
	return &Mirror{layouts: layouts, formats: formats}
}

// Layouts returns the struct layouts.
func (m *Mirror) Layouts() *Layouts { return m.layouts }

// Formats returns the format table, possibly nil.
func (m *Mirror) Formats() FormatTable { return m.formats }

// Frame overlays an AVFrame on raw.
func (m *Mirror) Frame(raw Raw) (*Frame, error) {
	if err := raw.fits(m.layouts.Frame); err != nil {
		return nil, err
	}
	return m.FrameAt(raw.ptr), nil
}

// FrameAt overlays an AVFrame on p without checks. Returns nil for nil p.
func (m *Mirror) FrameAt(p unsafe.Pointer) *Frame {
	if p == nil {
		return nil
	}
	return &Frame{ptr: p, m: m}
}

// Link overlays an AVFilterLink on raw.
func (m *Mirror) Link(raw Raw) (*FilterLink, error) {
	if err := raw.fits(m.layouts.FilterLink); err != nil {
		return nil, err
	}
	return m.LinkAt(raw.ptr), nil
}

// LinkAt overlays an AVFilterLink on p without checks. Returns nil for nil p.
func (m *Mirror) LinkAt(p unsafe.Pointer) *FilterLink {
	if p == nil {
		return nil
	}
	return &FilterLink{ptr: p, m: m}
}

// Context overlays an AVFilterContext on raw.
func (m *Mirror) Context(raw Raw) (*FilterContext, error) {
	if err := raw.fits(m.layouts.FilterContext); err != nil {
		return nil, err
	}
	return m.ContextAt(raw.ptr), nil
}

// ContextAt overlays an AVFilterContext on p without checks. Returns nil for nil p.
func (m *Mirror) ContextAt(p unsafe.Pointer) *FilterContext {
	if p == nil {
		return nil
	}
	return &FilterContext{ptr: p, m: m}
}

// PadAt overlays an AVFilterPad on p. Returns nil for nil p.
func (m *Mirror) PadAt(p unsafe.Pointer) *FilterPad {
	if p == nil {
		return nil
	}
	return &FilterPad{ptr: p, m: m}
}

// Descriptor overlays an AVPixFmtDescriptor on p and attaches id, which
// the native iteration API does not return.
func (m *Mirror) Descriptor(p unsafe.Pointer, id int32) *PixFmtDescriptor {
	return NewPixFmtDescriptor(p, m.layouts, id)
}

func (m *Mirror) format(id int32) (*PixFmtDescriptor, bool) {
	if m.formats == nil {
		return nil, false
	}
	return m.formats.DescriptorByID(id)
}
