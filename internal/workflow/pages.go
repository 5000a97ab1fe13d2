package workflow

import (
	"strconv"
	"strings"
)

// ParsePageList reads 1-based page numbers written as "1,3,5-7". Commas and
// spaces separate items. Each page is reported once, in order of first
// mention; a descending range such as "7-5" is empty.
func ParsePageList(s string) ([]int, error) {
	var out []int
	seen := map[int]bool{}
	add := func(p int) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	for _, f := range fields {
		lo, hi, isRange := strings.Cut(f, "-")
		a, err := pageNumber(lo)
		if err != nil {
			return nil, err
		}
		if !isRange {
			add(a)
			continue
		}
		b, err := pageNumber(hi)
		if err != nil {
			return nil, err
		}
		for p := a; p <= b; p++ {
			add(p)
		}
	}
	return out, nil
}

func pageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, &InputValidationError{Field: "pages", Message: MsgBadPageList}
	}
	return n, nil
}

// ToggleAll applies Toggle to each 1-based page number in turn.
func (s *SplitState) ToggleAll(pages []int) error {
	for _, p := range pages {
		if err := s.Toggle(p - 1); err != nil {
			return err
		}
	}
	return nil
}
