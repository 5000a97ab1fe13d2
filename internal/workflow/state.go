package workflow

import (
	"strings"
)

// PDFMIME is the only accepted source type.
const PDFMIME = "application/pdf"

// Mode is the split selection mode.
type Mode string

const (
	ModeExtract Mode = "extract"
	ModeRange   Mode = "range"
	ModeEvery   Mode = "every"
)

// ParseMode accepts a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeExtract, ModeRange, ModeEvery:
		return m, nil
	}
	return "", &InputValidationError{Field: "mode", Message: MsgInvalidMode}
}

// SourceFile describes a selected, decoded source document. Contents are not
// part of the state.
type SourceFile struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	MIME  string `json:"mime"`
	Pages int    `json:"pages"`
}

func checkType(f SourceFile) error {
	if f.MIME != PDFMIME {
		return &InputValidationError{Field: "file", Message: MsgInvalidPDF}
	}
	return nil
}

// PlanPart copies Indices, in order, from source number Source.
type PlanPart struct {
	Source  int   `json:"source"`
	Indices []int `json:"indices"`
}

// Plan describes one output document.
type Plan struct {
	Name  string     `json:"name"`
	Parts []PlanPart `json:"parts"`
}

// PageCount is the number of pages the plan appends.
func (p Plan) PageCount() int {
	n := 0
	for _, part := range p.Parts {
		n += len(part.Indices)
	}
	return n
}

// MergeState holds the two merge inputs.
type MergeState struct {
	First  *SourceFile `json:"first,omitempty"`
	Second *SourceFile `json:"second,omitempty"`
}

// Select stores f in slot 0 (first) or 1 (second). A non-PDF leaves the
// state untouched.
func (s *MergeState) Select(slot int, f SourceFile) error {
	if err := checkType(f); err != nil {
		return err
	}
	switch slot {
	case 0:
		s.First = &f
	case 1:
		s.Second = &f
	default:
		return &InputValidationError{Field: "slot", Message: MsgSelectBoth}
	}
	return nil
}

// Clear forgets both inputs, as after a successful merge.
func (s *MergeState) Clear() { s.First, s.Second = nil, nil }

// Validate requires both inputs.
func (s MergeState) Validate() error {
	if s.First == nil || s.Second == nil {
		return &InputValidationError{Field: "files", Message: MsgSelectBoth}
	}
	return nil
}

// Plan returns the single merge output: every page of the first source then
// every page of the second.
func (s MergeState) Plan() (Plan, error) {
	if err := s.Validate(); err != nil {
		return Plan{}, err
	}
	return Plan{
		Name: MergedName,
		Parts: []PlanPart{
			{Source: 0, Indices: AllPages(s.First.Pages)},
			{Source: 1, Indices: AllPages(s.Second.Pages)},
		},
	}, nil
}

// SplitState is the split form: one file, a mode and per-mode selections.
type SplitState struct {
	File    *SourceFile  `json:"file,omitempty"`
	Mode    Mode         `json:"mode"`
	Extract SelectionSet `json:"extract"`
	Range   PageRange    `json:"range"`
}

// NewSplitState returns the idle form in extract mode.
func NewSplitState() SplitState {
	return SplitState{Mode: ModeExtract, Range: PageRange{From: 1, To: 1}}
}

func (s SplitState) pages() int {
	if s.File == nil {
		return 0
	}
	return s.File.Pages
}

// SelectFile installs a new source. Extract selections are cleared and the
// range spans the whole document. A non-PDF leaves the state untouched.
func (s *SplitState) SelectFile(f SourceFile) error {
	if err := checkType(f); err != nil {
		return err
	}
	s.File = &f
	s.Extract = SelectionSet{}
	s.Range = PageRange{From: 1, To: ClampPage(f.Pages, f.Pages)}
	return nil
}

// DiscardFile drops the current source, as when it turns out to be unreadable.
func (s *SplitState) DiscardFile() {
	s.File = nil
	s.Extract = SelectionSet{}
}

// SetMode switches mode. Selections of other modes are kept as they are.
func (s *SplitState) SetMode(m Mode) error {
	if _, err := ParseMode(string(m)); err != nil {
		return err
	}
	s.Mode = m
	return nil
}

// Toggle flips page index i in the extract selection.
func (s *SplitState) Toggle(i int) error {
	if s.File == nil {
		return &InputValidationError{Field: "file", Message: MsgSelectFile}
	}
	if i < 0 || i >= s.File.Pages {
		return &InputValidationError{Field: "page", Message: MsgPageOutOfSpan}
	}
	s.Extract.Toggle(i)
	return nil
}

// SetFrom sets the first range page, clamped to the document.
func (s *SplitState) SetFrom(v int) { s.Range.From = ClampPage(v, s.pages()) }

// SetTo sets the last range page, clamped to the document.
func (s *SplitState) SetTo(v int) { s.Range.To = ClampPage(v, s.pages()) }

// SetFromInput applies raw text from a number field.
func (s *SplitState) SetFromInput(raw string) { s.SetFrom(parseLeadingInt(raw)) }

// SetToInput applies raw text from a number field.
func (s *SplitState) SetToInput(raw string) { s.SetTo(parseLeadingInt(raw)) }

// CanSubmit reports whether the submit control is enabled.
func (s SplitState) CanSubmit() bool {
	if s.File == nil {
		return false
	}
	return s.Mode != ModeExtract || s.Extract.Len() > 0
}

// Plan resolves the current state into output plans, all reading source 0.
func (s SplitState) Plan() ([]Plan, error) {
	if s.File == nil {
		return nil, &InputValidationError{Field: "file", Message: MsgSelectFile}
	}
	name := s.File.Name
	switch s.Mode {
	case ModeEvery:
		plans := make([]Plan, 0, s.File.Pages)
		for i := 0; i < s.File.Pages; i++ {
			plans = append(plans, Plan{
				Name:  PageName(name, i+1),
				Parts: []PlanPart{{Source: 0, Indices: []int{i}}},
			})
		}
		if len(plans) == 0 {
			return nil, &EmptySelectionError{Mode: s.Mode}
		}
		return plans, nil
	case ModeExtract, ModeRange:
		var idx []int
		if s.Mode == ModeExtract {
			idx = s.Extract.Sorted()
		} else {
			idx = s.Range.Indices(s.File.Pages)
		}
		if len(idx) == 0 {
			return nil, &EmptySelectionError{Mode: s.Mode}
		}
		return []Plan{{
			Name:  SplitName(name),
			Parts: []PlanPart{{Source: 0, Indices: idx}},
		}}, nil
	}
	return nil, &InputValidationError{Field: "mode", Message: MsgInvalidMode}
}

// parseLeadingInt reads an optional sign and leading digits; anything
// unparsable, and zero, become 1.
func parseLeadingInt(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n < 1<<30 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 || n == 0 {
		return 1
	}
	if neg {
		return -n
	}
	return n
}
