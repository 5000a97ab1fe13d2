package pdfdoc

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageHeight is the height of every page Blank generates, in points.
const PageHeight = 792

// Blank returns a PDF with one empty page per width. Each page is
// PageHeight points tall.
func Blank(widths ...int) ([]byte, error) {
	if len(widths) == 0 {
		return nil, ErrEmptyOutput
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := pdfcpu.CreateContextWithXRefTable(conf, &types.Dim{Width: float64(widths[0]), Height: PageHeight})
	if err != nil {
		return nil, fmt.Errorf("blank: %w", err)
	}
	root, err := ctx.Pages()
	if err != nil {
		return nil, fmt.Errorf("blank: %w", err)
	}
	tree, err := ctx.DereferenceDict(*root)
	if err != nil {
		return nil, fmt.Errorf("blank: %w", err)
	}
	for _, w := range widths {
		if w <= 0 {
			return nil, fmt.Errorf("blank: page width %d", w)
		}
		page, err := ctx.EmptyPage(root, types.NewRectangle(0, 0, float64(w), PageHeight))
		if err != nil {
			return nil, fmt.Errorf("blank: %w", err)
		}
		if err := ctx.SetValid(*page); err != nil {
			return nil, fmt.Errorf("blank: %w", err)
		}
		if err := model.AppendPageTree(page, 1, tree); err != nil {
			return nil, fmt.Errorf("blank: %w", err)
		}
		ctx.PageCount++
	}
	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("blank: %w", err)
	}
	return buf.Bytes(), nil
}

// SelfTest round-trips a two page document through c, reversing the pages.
func SelfTest(ctx context.Context, c Codec) error {
	data, err := Blank(612, 595)
	if err != nil {
		return fmt.Errorf("self test build: %w", err)
	}
	doc, err := c.Decode(ctx, data)
	if err != nil {
		return fmt.Errorf("self test decode: %w", err)
	}
	out := c.Create()
	pages, err := out.CopyPagesFrom(doc, []int{1, 0})
	if err != nil {
		return fmt.Errorf("self test copy: %w", err)
	}
	for _, p := range pages {
		out.AppendPage(p)
	}
	data, err = out.Serialize(ctx)
	if err != nil {
		return fmt.Errorf("self test serialize: %w", err)
	}
	back, err := c.Decode(ctx, data)
	if err != nil {
		return fmt.Errorf("self test reread: %w", err)
	}
	if back.PageCount() != 2 {
		return fmt.Errorf("self test: got %d pages, want 2", back.PageCount())
	}
	return nil
}
