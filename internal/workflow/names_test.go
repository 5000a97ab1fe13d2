package workflow

import "testing"

func TestOutputNames(t *testing.T) {
	tests := []struct {
		orig, split, page2 string
	}{
		{"a.pdf", "a_split.pdf", "a_page_2.pdf"},
		{"my.pdf.backup.pdf", "my.backup.pdf_split.pdf", "my.backup.pdf_page_2.pdf"},
		{"scan", "scan_split.pdf", "scan_page_2.pdf"},
		{"/tmp/in/report.pdf", "report_split.pdf", "report_page_2.pdf"},
		{`C:\docs\x.pdf`, "x_split.pdf", "x_page_2.pdf"},
	}
	for _, tt := range tests {
		if got := SplitName(tt.orig); got != tt.split {
			t.Errorf("SplitName(%q) = %q, want %q", tt.orig, got, tt.split)
		}
		if got := PageName(tt.orig, 2); got != tt.page2 {
			t.Errorf("PageName(%q, 2) = %q, want %q", tt.orig, got, tt.page2)
		}
	}
	if got := ArchiveName("report.pdf"); got != "report_pages.zip" {
		t.Errorf("ArchiveName = %q", got)
	}
}

func TestMessageFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&InputValidationError{Message: MsgInvalidPDF}, MsgInvalidPDF},
		{&EmptySelectionError{Mode: ModeExtract}, MsgSelectPage},
		{&DecodeError{File: "a.pdf"}, MsgMergeFailed},
		{&SerializationError{Output: "merged.pdf"}, MsgMergeFailed},
	}
	for _, tt := range tests {
		if got := MessageFor(tt.err, MsgMergeFailed); got != tt.want {
			t.Errorf("MessageFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if got := MessageFor(&DecodeError{File: "a.pdf"}, ""); got != MsgUnreadable {
		t.Errorf("decode without fallback = %q", got)
	}
}
