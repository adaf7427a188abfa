package preset

// Combinations enumerates k-element index combinations of [0, n) in
// lexicographic order. The index array is advanced in place; no recursion.
//
//	c := NewCombinations(5, 3)
//	for c.Next() {
//		use(c.Indices()) // [0 1 2], [0 1 3], ... [2 3 4]
//	}
type Combinations struct {
	n, k    int
	idx     []int
	started bool
	done    bool
}

// NewCombinations creates an iterator over C(n, k). k == 0 yields one empty
// combination; k > n or negative arguments yield nothing.
func NewCombinations(n, k int) *Combinations {
	c := &Combinations{n: n, k: k}
	if n < 0 || k < 0 || k > n {
		c.done = true
		return c
	}
	c.idx = make([]int, k)
	return c
}

// Next advances to the next combination. Returns false when exhausted.
func (c *Combinations) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		for i := range c.idx {
			c.idx[i] = i
		}
		return true
	}

	// Rightmost position that can still move right.
	i := c.k - 1
	for i >= 0 && c.idx[i] == c.n-c.k+i {
		i--
	}
	if i < 0 {
		c.done = true
		return false
	}
	c.idx[i]++
	for j := i + 1; j < c.k; j++ {
		c.idx[j] = c.idx[j-1] + 1
	}
	return true
}

// Indices returns the current combination. The slice is reused by Next;
// copy it to keep it.
func (c *Combinations) Indices() []int {
	return c.idx
}

// Binomial returns C(n, k), saturating at the max int on overflow.
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	const maxInt = int(^uint(0) >> 1)
	result := 1
	for i := 1; i <= k; i++ {
		next := result * (n - k + i)
		if next/(n-k+i) != result {
			return maxInt
		}
		result = next / i
	}
	return result
}
