package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ftwtie/pdfmerger/internal/command/info"
	"github.com/ftwtie/pdfmerger/internal/command/merge"
	"github.com/ftwtie/pdfmerger/internal/command/split"
	"github.com/ftwtie/pdfmerger/internal/pdftest"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("TELEMETRY_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
	app := NewApp("pdfmerger", "test", merge.Command(), split.Command(), info.Command())
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"pdfmerger", "--env-file", ""}, args...))
	return out.String(), errOut.String(), err
}

func writePDF(t *testing.T, dir, name string, widths ...int) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, pdftest.Build(widths...), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func readWidths(t *testing.T, path string) []int {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return pdftest.MustWidths(t, data)
}

func TestMergeCommand(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	a := writePDF(t, in, "a.pdf", 101, 102, 103)
	b := writePDF(t, in, "b.pdf", 201, 202)

	stdout, _, err := run(t, "merge", "--out", out, a, b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(stdout, "merged.pdf") || !strings.Contains(stdout, "5 pages") {
		t.Errorf("stdout = %q", stdout)
	}
	if diff := cmp.Diff([]int{101, 102, 103, 201, 202}, readWidths(t, filepath.Join(out, "merged.pdf"))); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}

	// a second run refuses to replace the result
	_, stderr, err := run(t, "merge", "--out", out, a, b)
	if err == nil || !strings.Contains(stderr, "--overwrite") {
		t.Errorf("second merge: err=%v stderr=%q", err, stderr)
	}
	if _, _, err := run(t, "merge", "--out", out, "--overwrite", b, a); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if diff := cmp.Diff([]int{201, 202, 101, 102, 103}, readWidths(t, filepath.Join(out, "merged.pdf"))); diff != "" {
		t.Errorf("pages after overwrite (-want +got):\n%s", diff)
	}
}

func TestMergeCommandErrors(t *testing.T) {
	in := t.TempDir()
	a := writePDF(t, in, "a.pdf", 101)
	txt := filepath.Join(in, "notes.pdf")
	if err := os.WriteFile(txt, []byte("plain text, not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := run(t, "merge", "--out", t.TempDir(), a)
	if err == nil || !strings.Contains(stderr, workflow.MsgSelectBoth) {
		t.Errorf("one file: err=%v stderr=%q", err, stderr)
	}
	_, stderr, err = run(t, "merge", "--out", t.TempDir(), a, txt)
	if err == nil || !strings.Contains(stderr, workflow.MsgInvalidPDF) {
		t.Errorf("text file: err=%v stderr=%q", err, stderr)
	}
}

func TestSplitCommand(t *testing.T) {
	in := t.TempDir()
	doc := writePDF(t, in, "doc.pdf", pdftest.Sequence(101, 5)...)

	tests := []struct {
		name  string
		args  []string
		files map[string][]int
	}{
		{
			name:  "extract",
			args:  []string{"--pages", "5,1-2"},
			files: map[string][]int{"doc_split.pdf": {101, 102, 105}},
		},
		{
			name:  "range",
			args:  []string{"--mode", "range", "--from", "2", "--to", "4"},
			files: map[string][]int{"doc_split.pdf": {102, 103, 104}},
		},
		{
			name: "every",
			args: []string{"--mode", "every"},
			files: map[string][]int{
				"doc_page_1.pdf": {101}, "doc_page_2.pdf": {102}, "doc_page_3.pdf": {103},
				"doc_page_4.pdf": {104}, "doc_page_5.pdf": {105},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"split", "--out", out}, tt.args...)
			if _, stderr, err := run(t, append(args, doc)...); err != nil {
				t.Fatalf("split: %v (%s)", err, stderr)
			}
			got := map[string][]int{}
			entries, err := os.ReadDir(out)
			if err != nil {
				t.Fatal(err)
			}
			for _, e := range entries {
				got[e.Name()] = readWidths(t, filepath.Join(out, e.Name()))
			}
			if diff := cmp.Diff(tt.files, got); diff != "" {
				t.Errorf("outputs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitCommandEmptySelection(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	doc := writePDF(t, in, "doc.pdf", 101, 102, 103)

	_, stderr, err := run(t, "split", "--out", out, doc)
	if err == nil || !strings.Contains(stderr, workflow.MsgSelectPage) {
		t.Errorf("err=%v stderr=%q", err, stderr)
	}
	_, stderr, err = run(t, "split", "--out", out, "--mode", "range", "--from", "3", "--to", "1", doc)
	if err == nil || !strings.Contains(stderr, workflow.MsgSelectPage) {
		t.Errorf("from>to: err=%v stderr=%q", err, stderr)
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("failed split wrote %d files", len(entries))
	}
}

func TestInfoCommand(t *testing.T) {
	in := t.TempDir()
	doc := writePDF(t, in, "doc.pdf", 101, 102, 103)

	stdout, _, err := run(t, "info", "--json", doc)
	if err != nil {
		t.Fatal(err)
	}
	var files []workflow.SourceFile
	if err := json.Unmarshal([]byte(stdout), &files); err != nil {
		t.Fatalf("json: %v (%q)", err, stdout)
	}
	if len(files) != 1 || files[0].Name != "doc.pdf" || files[0].Pages != 3 {
		t.Errorf("files = %+v", files)
	}

	stdout, _, err = run(t, "info", "--count", doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(stdout), "\t3") {
		t.Errorf("count output = %q", stdout)
	}
}
