package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayoutNaturalAlignment(t *testing.T) {
	l, err := NewLayout("mixed", []Decl{
		{"a", Uint8},
		{"b", Int32},
		{"c", Uint8},
		{"d", Int64},
		{"e", Array(Uint8, 3)},
	})
	require.NoError(t, err)

	want := map[string]uintptr{"a": 0, "b": 4, "c": 8, "d": 16, "e": 24}
	for name, off := range want {
		f, ok := l.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, off, f.Offset, name)
	}
	assert.Equal(t, uintptr(32), l.Size())
	assert.Equal(t, uintptr(8), l.Align())
}

func TestNewLayoutNestedStruct(t *testing.T) {
	inner, err := NewLayout("inner", []Decl{{"x", Int32}, {"y", Int32}})
	require.NoError(t, err)
	outer, err := NewLayout("outer", []Decl{
		{"tag", Uint8},
		{"pair", Struct(inner)},
		{"pairs", Array(Struct(inner), 2)},
	})
	require.NoError(t, err)

	f, _ := outer.Field("pair")
	assert.Equal(t, uintptr(4), f.Offset)
	f, _ = outer.Field("pairs")
	assert.Equal(t, uintptr(12), f.Offset)
	assert.Equal(t, 2, f.Type.Len())
	elem, ok := f.Type.Elem()
	require.True(t, ok)
	assert.Same(t, inner, elem.Layout())
	assert.Equal(t, uintptr(28), outer.Size())
	assert.Equal(t, uintptr(4), outer.Align())
}

func TestNewLayoutRejects(t *testing.T) {
	tests := []struct {
		name  string
		decls []Decl
	}{
		{"empty", nil},
		{"unnamed", []Decl{{"", Int32}}},
		{"duplicate", []Decl{{"a", Int32}, {"a", Int64}}},
		{"zero size", []Decl{{"a", Array(Int32, 0)}}},
		{"zero type", []Decl{{"a", Type{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout("bad", tt.decls)
			assert.ErrorIs(t, err, ErrBadLayout)
		})
	}
}

func TestWhen(t *testing.T) {
	d := Decl{"x", Int32}
	assert.Nil(t, When(false, d))
	assert.Equal(t, []Decl{d}, When(true, d))
}

func TestFieldsIsCopy(t *testing.T) {
	l, err := NewLayout("s", []Decl{{"a", Int32}})
	require.NoError(t, err)
	fs := l.Fields()
	fs[0].Offset = 99
	f, _ := l.Field("a")
	assert.Equal(t, uintptr(0), f.Offset)
	assert.True(t, l.Has("a"))
	assert.False(t, l.Has("b"))
}

func TestOptionalAndOffset(t *testing.T) {
	l, err := NewLayout("s", []Decl{{"a", Int32}, {"b", Int64}})
	require.NoError(t, err)

	assert.Equal(t, optOffset{off: 8, ok: true}, l.optional("b"))
	assert.False(t, l.optional("c").ok)
	assert.Equal(t, uintptr(8), l.offset("b"))
	assert.Panics(t, func() { l.offset("c") })
}
