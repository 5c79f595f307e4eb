package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	type filterState struct {
		Name  string
		Scale int
	}

	tbl := New[*filterState]()
	data := &filterState{Name: "upscale", Scale: 4}
	h := tbl.Register(data)
	require.NotZero(t, h)

	got, ok := tbl.Lookup(h)
	require.True(t, ok)
	assert.Same(t, data, got)
	assert.Equal(t, 1, tbl.Count())

	removed, ok := tbl.Unregister(h)
	assert.True(t, ok)
	assert.Same(t, data, removed)

	_, ok = tbl.Lookup(h)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Count())
}

func TestUnregisterUnknown(t *testing.T) {
	tbl := New[string]()
	_, ok := tbl.Unregister(42)
	assert.False(t, ok)
	_, ok = tbl.Lookup(0)
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	tbl := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h := tbl.Register(n*1000 + j)
				if v, ok := tbl.Lookup(h); !ok || v != n*1000+j {
					t.Errorf("Lookup(%d) = %d, %v", h, v, ok)
				}
				tbl.Unregister(h)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, tbl.Count())
}

func TestHandlesAreUnique(t *testing.T) {
	tbl := New[int]()
	seen := make(map[uintptr]bool)

	for i := 0; i < 1000; i++ {
		h := tbl.Register(i)
		if seen[h] {
			t.Errorf("Handle %d was returned twice", h)
		}
		seen[h] = true
	}
	assert.Equal(t, 1000, tbl.Count())
}
