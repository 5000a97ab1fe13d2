package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// PDFCPU implements Codec on top of github.com/pdfcpu/pdfcpu.
type PDFCPU struct {
	conf *model.Configuration
}

// NewPDFCPU returns a codec using relaxed validation, which accepts the
// slightly broken files real users have.
func NewPDFCPU() *PDFCPU {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPU{conf: conf}
}

// config hands every pdfcpu call its own copy, since pdfcpu records the
// running command in the configuration.
func (c *PDFCPU) config() *model.Configuration {
	cp := *c.conf
	return &cp
}

type pdfcpuDocument struct {
	ctx *model.Context
}

func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

// Decode reads and validates data.
func (c *PDFCPU) Decode(_ context.Context, data []byte) (doc Document, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdfcpu: read panicked: %v", r)
		}
	}()
	pctx, err := api.ReadContext(bytes.NewReader(data), c.config())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if pctx.PageCount <= 0 {
		return nil, ErrNoPages
	}
	return &pdfcpuDocument{ctx: pctx}, nil
}

// Create starts an empty output document.
func (c *PDFCPU) Create() Output { return &pdfcpuOutput{codec: c} }

type pdfcpuOutput struct {
	codec *PDFCPU
	pages []Page
}

func (o *pdfcpuOutput) CopyPagesFrom(src Document, indices []int) ([]Page, error) {
	if src == nil {
		return nil, ErrNilDocument
	}
	if _, ok := src.(*pdfcpuDocument); !ok {
		return nil, ErrForeignPage
	}
	return checkIndices(src, indices)
}

func (o *pdfcpuOutput) AppendPage(p Page) { o.pages = append(o.pages, p) }

func (o *pdfcpuOutput) PageCount() int { return len(o.pages) }

// Serialize extracts each run of same-source pages and, when the output draws
// on more than one run, joins the runs in append order.
func (o *pdfcpuOutput) Serialize(ctx context.Context) (out []byte, err error) {
	if len(o.pages) == 0 {
		return nil, ErrEmptyOutput
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("pdfcpu: write panicked: %v", r)
		}
	}()

	rs := runs(o.pages)
	chunks := make([][]byte, 0, len(rs))
	for _, r := range rs {
		doc, ok := r.src.(*pdfcpuDocument)
		if !ok {
			return nil, ErrForeignPage
		}
		b, err := o.codec.extract(doc, r.indices)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, b)
	}
	if len(chunks) == 1 {
		return chunks[0], nil
	}
	log.Ctx(ctx).Debug().Int("runs", len(chunks)).Int("pages", len(o.pages)).Msg("joining page runs")
	return o.codec.join(chunks)
}

// extract writes the given zero-based pages of doc as a standalone PDF.
func (c *PDFCPU) extract(doc *pdfcpuDocument, indices []int) ([]byte, error) {
	nrs := make([]int, len(indices))
	for i, idx := range indices {
		nrs[i] = idx + 1
	}
	sub, err := pdfcpu.ExtractPages(doc.ctx, nrs, false)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(sub, &buf); err != nil {
		return nil, fmt.Errorf("write pages: %w", err)
	}
	return buf.Bytes(), nil
}

// join concatenates standalone PDFs in order. pdfcpu merges files, so the
// parts go through a private temp dir that is removed afterwards.
func (c *PDFCPU) join(parts [][]byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", tempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files := make([]string, len(parts))
	for i, b := range parts {
		files[i] = filepath.Join(dir, fmt.Sprintf("part-%03d.pdf", i))
		if err := os.WriteFile(files[i], b, 0o600); err != nil {
			return nil, fmt.Errorf("write part: %w", err)
		}
	}
	outPath := filepath.Join(dir, "out.pdf")
	if err := api.MergeCreateFile(files, outPath, false, c.config()); err != nil {
		return nil, fmt.Errorf("merge parts: %w", err)
	}
	return os.ReadFile(outPath)
}

// PageCountFile returns the number of pages of the PDF at path.
func PageCountFile(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdf page count failed: %w", err)
	}
	return n, nil
}
