package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collect(n, k int) [][]int {
	var out [][]int
	c := NewCombinations(n, k)
	for c.Next() {
		out = append(out, append([]int(nil), c.Indices()...))
	}
	return out
}

func TestCombinations_Lexicographic(t *testing.T) {
	got := collect(5, 3)

	assert.Len(t, got, 10)
	assert.Equal(t, []int{0, 1, 2}, got[0])
	assert.Equal(t, []int{0, 1, 3}, got[1])
	assert.Equal(t, []int{2, 3, 4}, got[len(got)-1])

	seen := make(map[[3]int]bool)
	for _, c := range got {
		key := [3]int{c[0], c[1], c[2]}
		assert.False(t, seen[key], "duplicate %v", c)
		seen[key] = true
		assert.Less(t, c[0], c[1])
		assert.Less(t, c[1], c[2])
	}
}

func TestCombinations_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		n, k int
		want int
	}{
		{"k zero", 4, 0, 1},
		{"k equals n", 4, 4, 1},
		{"k above n", 3, 4, 0},
		{"empty", 0, 0, 1},
		{"negative", -1, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, collect(tt.n, tt.k), tt.want)
		})
	}
}

func TestCombinations_CountMatchesBinomial(t *testing.T) {
	for n := 0; n <= 12; n++ {
		for k := 0; k <= n; k++ {
			assert.Len(t, collect(n, k), Binomial(n, k), "C(%d,%d)", n, k)
		}
	}
}

func TestBinomial(t *testing.T) {
	assert.Equal(t, 77520, Binomial(20, 7))
	assert.Equal(t, 480700, Binomial(25, 7))
	assert.Equal(t, 1, Binomial(7, 7))
	assert.Equal(t, 0, Binomial(3, 5))

	const maxInt = int(^uint(0) >> 1)
	assert.Equal(t, maxInt, Binomial(200, 100))
}
