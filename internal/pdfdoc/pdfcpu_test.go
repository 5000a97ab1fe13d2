package pdfdoc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
	"github.com/ftwtie/pdfmerger/internal/pdftest"
)

func decode(t *testing.T, c *pdfdoc.PDFCPU, widths ...int) pdfdoc.Document {
	t.Helper()
	doc, err := c.Decode(context.Background(), pdftest.Build(widths...))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func TestDecodePageCount(t *testing.T) {
	c := pdfdoc.NewPDFCPU()
	doc := decode(t, c, 100, 101, 102)
	if doc.PageCount() != 3 {
		t.Errorf("page count = %d, want 3", doc.PageCount())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c := pdfdoc.NewPDFCPU()
	if _, err := c.Decode(context.Background(), nil); !errors.Is(err, pdfdoc.ErrEmptyInput) {
		t.Errorf("nil input: %v", err)
	}
	if _, err := c.Decode(context.Background(), []byte("this is not a pdf at all")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
}

func TestSerializeSingleSourceKeepsOrder(t *testing.T) {
	c := pdfdoc.NewPDFCPU()
	src := decode(t, c, 101, 102, 103, 104, 105)

	out := c.Create()
	pages, err := out.CopyPagesFrom(src, []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pages {
		out.AppendPage(p)
	}
	data, err := out.Serialize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{102, 103, 104}, pdftest.MustWidths(t, data)); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestSerializeTwoSourcesConcatenates(t *testing.T) {
	c := pdfdoc.NewPDFCPU()
	a := decode(t, c, 101, 102, 103)
	b := decode(t, c, 201, 202)

	out := c.Create()
	for _, src := range []pdfdoc.Document{a, b} {
		idx := make([]int, src.PageCount())
		for i := range idx {
			idx[i] = i
		}
		pages, err := out.CopyPagesFrom(src, idx)
		if err != nil {
			t.Fatal(err)
		}
		for _, p := range pages {
			out.AppendPage(p)
		}
	}
	if out.PageCount() != 5 {
		t.Fatalf("output page count = %d", out.PageCount())
	}
	data, err := out.Serialize(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{101, 102, 103, 201, 202}, pdftest.MustWidths(t, data)); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestCopyPagesOutOfRange(t *testing.T) {
	c := pdfdoc.NewPDFCPU()
	src := decode(t, c, 100, 100)
	_, err := c.Create().CopyPagesFrom(src, []int{0, 2})
	var oor *pdfdoc.PageOutOfRangeError
	if !errors.As(err, &oor) || oor.Index != 2 || oor.Count != 2 {
		t.Errorf("err = %v", err)
	}
}

func TestSerializeEmpty(t *testing.T) {
	_, err := pdfdoc.NewPDFCPU().Create().Serialize(context.Background())
	if !errors.Is(err, pdfdoc.ErrEmptyOutput) {
		t.Errorf("err = %v", err)
	}
}

func TestPageCountFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "four.pdf")
	if err := os.WriteFile(p, pdftest.Build(pdftest.Sequence(300, 4)...), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := pdfdoc.PageCountFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("pages = %d, want 4", n)
	}
}

func TestSelfTest(t *testing.T) {
	if err := pdfdoc.SelfTest(context.Background(), pdfdoc.NewPDFCPU()); err != nil {
		t.Fatal(err)
	}
}

func TestBlankWidths(t *testing.T) {
	data, err := pdfdoc.Blank(101, 102, 103)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{101, 102, 103}, pdftest.MustWidths(t, data)); diff != "" {
		t.Errorf("widths (-want +got):\n%s", diff)
	}
	doc, err := pdfdoc.NewPDFCPU().Decode(context.Background(), data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.PageCount() != 3 {
		t.Errorf("pages = %d, want 3", doc.PageCount())
	}
}

func TestBlankRejects(t *testing.T) {
	if _, err := pdfdoc.Blank(); !errors.Is(err, pdfdoc.ErrEmptyOutput) {
		t.Errorf("no widths: err = %v, want ErrEmptyOutput", err)
	}
	if _, err := pdfdoc.Blank(100, 0); err == nil {
		t.Error("zero width: want error")
	}
}
