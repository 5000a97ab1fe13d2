package workflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePageList(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "3", want: []int{3}},
		{in: "1,3,5-7", want: []int{1, 3, 5, 6, 7}},
		{in: " 2 , 2, 1-3 ", want: []int{2, 1, 3}},
		{in: "7-5", want: nil},
		{in: "0", wantErr: true},
		{in: "a,b", wantErr: true},
		{in: "1-", wantErr: true},
		{in: "-2", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePageList(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePageList(%q) err = %v", tt.in, err)
			continue
		}
		if err != nil {
			if Kind(err) != KindInvalid {
				t.Errorf("ParsePageList(%q) kind = %s", tt.in, Kind(err))
			}
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParsePageList(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestToggleAll(t *testing.T) {
	s := NewSplitState()
	if err := s.SelectFile(SourceFile{Name: "a.pdf", MIME: PDFMIME, Pages: 4}); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleAll([]int{4, 1}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 3}, s.Extract.Sorted()); diff != "" {
		t.Errorf("selection (-want +got):\n%s", diff)
	}
	if err := s.ToggleAll([]int{5}); Kind(err) != KindInvalid {
		t.Errorf("page 5 of 4: %v", err)
	}
}
