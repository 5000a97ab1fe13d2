// Package pdfdoc is the boundary to the PDF library. Callers decode source
// documents, copy pages by index into a new output document and serialize it;
// they never see PDF objects.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyInput  = errors.New("pdfdoc: empty input")
	ErrNoPages     = errors.New("pdfdoc: document has no pages")
	ErrEmptyOutput = errors.New("pdfdoc: output has no pages")
	ErrForeignPage = errors.New("pdfdoc: page belongs to a document of another codec")
	ErrNilDocument = errors.New("pdfdoc: nil source document")
)

// Document is a decoded source document.
type Document interface {
	PageCount() int
}

// Page references one page of a source document by zero-based index.
type Page struct {
	Source Document
	Index  int
}

// Output is a document under construction. Pages keep the order they were
// appended in.
type Output interface {
	CopyPagesFrom(src Document, indices []int) ([]Page, error)
	AppendPage(p Page)
	PageCount() int
	Serialize(ctx context.Context) ([]byte, error)
}

// Codec decodes source bytes and creates empty outputs.
type Codec interface {
	Decode(ctx context.Context, data []byte) (Document, error)
	Create() Output
}

// PageOutOfRangeError reports an index outside [0, PageCount).
type PageOutOfRangeError struct {
	Index int
	Count int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("pdfdoc: page index %d out of range [0,%d)", e.Index, e.Count)
}

// checkIndices validates indices against src and builds page references.
func checkIndices(src Document, indices []int) ([]Page, error) {
	if src == nil {
		return nil, ErrNilDocument
	}
	n := src.PageCount()
	pages := make([]Page, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, &PageOutOfRangeError{Index: i, Count: n}
		}
		pages = append(pages, Page{Source: src, Index: i})
	}
	return pages, nil
}

// run is a maximal stretch of consecutive appended pages from one source.
type run struct {
	src     Document
	indices []int
}

// runs groups pages into source runs, preserving order.
func runs(pages []Page) []run {
	var out []run
	for _, p := range pages {
		if len(out) > 0 && out[len(out)-1].src == p.Source {
			out[len(out)-1].indices = append(out[len(out)-1].indices, p.Index)
			continue
		}
		out = append(out, run{src: p.Source, indices: []int{p.Index}})
	}
	return out
}
