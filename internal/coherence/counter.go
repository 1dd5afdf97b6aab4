package coherence

import (
	"sort"

	"github.com/todmy/topic-miner/internal/corpus"
)

// Counter maintains occurrence counts over context windows
type Counter struct {
	N   int64               // total number of windows
	Nx  map[int]int64       // windows containing each token id
	Nxy map[TokenPair]int64 // windows containing both ids of a pair
}

// TokenPair represents an ordered pair of token ids (A < B)
type TokenPair struct {
	A, B int
}

// NewCounter creates a new co-occurrence counter
func NewCounter() *Counter {
	return &Counter{
		Nx:  make(map[int]int64),
		Nxy: make(map[TokenPair]int64),
	}
}

// AddWindow updates counts for one window of unique token ids
func (c *Counter) AddWindow(uniqueIDs []int) {
	c.N++

	for _, id := range uniqueIDs {
		c.Nx[id]++
	}

	sorted := make([]int, len(uniqueIDs))
	copy(sorted, uniqueIDs)
	sort.Ints(sorted)

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			c.Nxy[TokenPair{A: sorted[i], B: sorted[j]}]++
		}
	}
}

// Count returns the number of windows containing id
func (c *Counter) Count(id int) int64 {
	return c.Nx[id]
}

// PairCount returns the number of windows containing both ids.
// A token always co-occurs with itself.
func (c *Counter) PairCount(a, b int) int64 {
	if a == b {
		return c.Nx[a]
	}
	if a > b {
		a, b = b, a
	}
	return c.Nxy[TokenPair{A: a, B: b}]
}

// Windows returns the number of windows counted
func (c *Counter) Windows() int64 {
	return c.N
}

// CountSlidingWindows slides a boolean window of the given size over every document
// and counts the relevant ids it contains. A document shorter than the window forms
// a single window; empty documents contribute nothing.
func CountSlidingWindows(dict *corpus.Dictionary, docs []corpus.Document, relevant map[int]bool, size int) *Counter {
	counter := NewCounter()
	for _, doc := range docs {
		ids := dict.DocIDs(doc)
		if len(ids) == 0 {
			continue
		}
		if len(ids) <= size {
			counter.AddWindow(relevantIDs(ids, relevant))
			continue
		}
		for start := 0; start+size <= len(ids); start++ {
			counter.AddWindow(relevantIDs(ids[start:start+size], relevant))
		}
	}
	return counter
}

// CountDocuments counts document-level occurrences of the relevant ids
func CountDocuments(bow []corpus.BowVector, relevant map[int]bool) *Counter {
	counter := NewCounter()
	for _, vec := range bow {
		ids := make([]int, 0, len(vec))
		for _, e := range vec {
			if relevant[e.ID] {
				ids = append(ids, e.ID)
			}
		}
		counter.AddWindow(ids)
	}
	return counter
}

func relevantIDs(window []int, relevant map[int]bool) []int {
	seen := make(map[int]bool, len(window))
	out := make([]int, 0, len(window))
	for _, id := range window {
		if relevant[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
