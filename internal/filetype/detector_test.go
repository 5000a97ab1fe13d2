package filetype

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ftwtie/pdfmerger/internal/workflow"
)

var minimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestValidatePDF(t *testing.T) {
	d := New()
	tests := []struct {
		name     string
		declared string
		data     []byte
		wantErr  bool
	}{
		{"pdf without declared type", "", minimalPDF, false},
		{"pdf declared", "application/pdf", minimalPDF, false},
		{"pdf declared with params", "application/pdf; name=a.pdf", minimalPDF, false},
		{"generic upload type", "application/octet-stream", minimalPDF, false},
		{"declared image", "image/png", minimalPDF, true},
		{"text pretending", "application/pdf", []byte("hello world"), true},
		{"empty", "application/pdf", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt, err := d.ValidatePDF("f.pdf", tt.declared, tt.data)
			if tt.wantErr {
				if workflow.Kind(err) != workflow.KindInvalid {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mt != workflow.PDFMIME {
				t.Errorf("mime = %q", mt)
			}
		})
	}
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "doc.bin")
	if err := os.WriteFile(p, minimalPDF, 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := New().DetectFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Supported || info.MIMEType != workflow.PDFMIME || info.Extension != ".pdf" {
		t.Errorf("info = %+v", info)
	}

	txt := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(txt, []byte("just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err = New().DetectFile(txt)
	if err != nil {
		t.Fatal(err)
	}
	if info.Supported {
		t.Errorf("text file with .pdf name accepted: %+v", info)
	}
}
