package pixfmt

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/ffbind/abi"
	"github.com/obinnaokechukwu/ffbind/avutil"
	"github.com/obinnaokechukwu/ffbind/internal/fakeav"
	"github.com/obinnaokechukwu/ffbind/version"
)

func layouts(t *testing.T, major int) *abi.Layouts {
	t.Helper()
	info, err := version.Resolve(major)
	require.NoError(t, err)
	ls, err := abi.NewLayouts(info.Caps)
	require.NoError(t, err)
	return ls
}

func standard(t *testing.T, major int) *Registry {
	t.Helper()
	ls := layouts(t, major)
	r, err := Build(fakeav.NewFormatTable(ls, fakeav.StandardFormats()), ls)
	require.NoError(t, err)
	return r
}

func TestBuildWalksWholeTable(t *testing.T) {
	for _, major := range []int{56, 57} {
		r := standard(t, major)
		formats := fakeav.StandardFormats()

		require.Equal(t, len(formats), r.Len())
		for i, d := range r.Descriptors() {
			assert.Equal(t, formats[i].Name, d.Name())
			assert.Equal(t, formats[i].ID, d.ID())
		}
		assert.Equal(t, int32(0), r.Min())
		assert.Equal(t, int32(30), r.Max())
	}
}

func TestRegistryIsConsistent(t *testing.T) {
	r := standard(t, 57)
	for _, d := range r.Descriptors() {
		byName, ok := r.ByName(d.Name())
		require.True(t, ok)
		assert.Same(t, d, byName)

		byID, ok := ByID(r, d.ID())
		require.True(t, ok)
		assert.Same(t, d, byID)
	}
}

func TestByIDIntegerKinds(t *testing.T) {
	r := standard(t, 57)

	d, ok := ByID(r, 2)
	require.True(t, ok)
	assert.Equal(t, "rgb24", d.Name())

	_, ok = ByID(r, uint8(2))
	assert.True(t, ok)
	_, ok = ByID(r, int64(23))
	assert.True(t, ok)
	_, ok = ByID(r, avutil.PixelFormatRGBA)
	assert.True(t, ok)

	_, ok = ByID(r, 4) // inside [min,max] but not in the table
	assert.False(t, ok)
	_, ok = ByID(r, -1)
	assert.False(t, ok)
	_, ok = ByID(r, uint64(1)<<63)
	assert.False(t, ok)
}

func TestByNameIsCaseSensitive(t *testing.T) {
	r := standard(t, 57)
	_, ok := r.ByName("rgb24")
	assert.True(t, ok)
	_, ok = r.ByName("RGB24")
	assert.False(t, ok)
}

func TestToCanonical(t *testing.T) {
	r := standard(t, 57)
	rgb, _ := r.ByName("rgb24")
	gray, _ := r.ByName("gray")
	nv12, _ := r.ByName("nv12")

	out := r.ToCanonical([]any{"rgb24", 8, nv12, "no_such_fmt", 3.5, nil})
	require.Len(t, out, 6)
	assert.Same(t, rgb, out[0])
	assert.Same(t, gray, out[1])
	assert.Same(t, nv12, out[2])
	assert.Equal(t, "no_such_fmt", out[3])
	assert.Equal(t, 3.5, out[4])
	assert.Nil(t, out[5])

	assert.Equal(t, []int32{2, 8, 23}, r.IDs([]any{"rgb24", int32(8), nv12, "bogus"}))
}

func TestToCanonicalNilDescriptor(t *testing.T) {
	r := standard(t, 57)
	var d *abi.PixFmtDescriptor
	out := r.ToCanonical([]any{d})
	assert.Equal(t, d, out[0])
}

func TestDuplicateName(t *testing.T) {
	ls := layouts(t, 57)
	formats := []fakeav.Format{
		{ID: 0, Name: "yuv420p"},
		{ID: 1, Name: "yuv420p"},
	}
	_, err := Build(fakeav.NewFormatTable(ls, formats), ls)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

type emptySource struct{}

func (emptySource) Next(unsafe.Pointer) unsafe.Pointer { return nil }
func (emptySource) ID(unsafe.Pointer) int32            { return -1 }

func TestEmptySource(t *testing.T) {
	r, err := Build(emptySource{}, layouts(t, 57))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Descriptors())
	_, ok := ByID(r, 0)
	assert.False(t, ok)
}

func TestImplementsFormatTable(t *testing.T) {
	var _ abi.FormatTable = (*Registry)(nil)
}
