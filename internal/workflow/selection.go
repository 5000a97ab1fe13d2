package workflow

import (
	"encoding/json"
	"sort"
)

// SelectionSet holds zero-based page indices chosen in extract mode.
// The zero value is an empty set.
type SelectionSet struct {
	m map[int]struct{}
}

// NewSelectionSet returns a set holding the given indices.
func NewSelectionSet(indices ...int) SelectionSet {
	s := SelectionSet{}
	for _, i := range indices {
		s.add(i)
	}
	return s
}

func (s *SelectionSet) add(i int) {
	if s.m == nil {
		s.m = make(map[int]struct{})
	}
	s.m[i] = struct{}{}
}

// Toggle flips membership of i and reports whether i is now selected.
func (s *SelectionSet) Toggle(i int) bool {
	if _, ok := s.m[i]; ok {
		delete(s.m, i)
		return false
	}
	s.add(i)
	return true
}

func (s SelectionSet) Has(i int) bool {
	_, ok := s.m[i]
	return ok
}

func (s SelectionSet) Len() int { return len(s.m) }

// Sorted returns the members in ascending order.
func (s SelectionSet) Sorted() []int {
	out := make([]int, 0, len(s.m))
	for i := range s.m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Equal reports whether both sets hold the same indices.
func (s SelectionSet) Equal(o SelectionSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for i := range s.m {
		if !o.Has(i) {
			return false
		}
	}
	return true
}

func (s SelectionSet) MarshalJSON() ([]byte, error) { return json.Marshal(s.Sorted()) }

func (s *SelectionSet) UnmarshalJSON(b []byte) error {
	var idx []int
	if err := json.Unmarshal(b, &idx); err != nil {
		return err
	}
	*s = NewSelectionSet(idx...)
	return nil
}

// PageRange is a 1-based inclusive page span.
type PageRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ClampPage bounds v to [1, pageCount]. With no pages the result is 1.
func ClampPage(v, pageCount int) int {
	if v > pageCount {
		v = pageCount
	}
	if v < 1 {
		v = 1
	}
	return v
}

// Indices lists the zero-based indices covered by r, ascending, stopping at
// pageCount. The list is empty when From > To.
func (r PageRange) Indices(pageCount int) []int {
	out := []int{}
	for i := r.From - 1; i < r.To && i < pageCount; i++ {
		if i < 0 {
			continue
		}
		out = append(out, i)
	}
	return out
}

// AllPages returns 0..n-1.
func AllPages(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
