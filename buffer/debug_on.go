//go:build viewdebug

package buffer

import (
	"fmt"
	"slices"
)

func checkIndex(shape, idx []int) {
	if len(idx) > len(shape) {
		panic(fmt.Sprintf("buffer: %d indices for %d dimensions", len(idx), len(shape)))
	}
	for i, x := range idx {
		if x < 0 || x >= shape[i] {
			panic(fmt.Sprintf("buffer: index %d out of range [0,%d) on axis %d", x, shape[i], i))
		}
	}
}

func checkRank(have, want int) {
	if have < want {
		panic(fmt.Sprintf("buffer: rank %d, need %d", have, want))
	}
}

func checkRange(lo, hi, n int) {
	if lo < 0 || hi < lo || hi > n {
		panic(fmt.Sprintf("buffer: region [%d,%d) out of range [0,%d)", lo, hi, n))
	}
}

func checkShape(a, b []int) {
	if !slices.Equal(a, b) {
		panic(fmt.Sprintf("buffer: shape mismatch %v vs %v", a, b))
	}
}
