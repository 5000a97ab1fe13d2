// Package pdftest builds small PDFs for tests. Each page gets its own
// MediaBox width so a page can be recognised after it has been copied into
// another document.
package pdftest

import (
	"bytes"
	"math"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
)

// PageHeight is the height of every generated page, in points.
const PageHeight = pdfdoc.PageHeight

// Build returns a well-formed PDF with one page per width. It panics if the
// document cannot be built.
func Build(widths ...int) []byte {
	data, err := pdfdoc.Blank(widths...)
	if err != nil {
		panic(err)
	}
	return data
}

// Sequence returns widths start, start+1, ... for n pages.
func Sequence(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}

// Widths reads back the page widths of data, in page order.
func Widths(data []byte) ([]int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(math.Round(d.Width))
	}
	return out, nil
}

// MustWidths is Widths failing t on error.
func MustWidths(t testing.TB, data []byte) []int {
	t.Helper()
	w, err := Widths(data)
	if err != nil {
		t.Fatalf("read page widths: %v", err)
	}
	return w
}
