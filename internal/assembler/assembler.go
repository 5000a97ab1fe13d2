// Package assembler runs the merge and split workflows: it validates and
// decodes sources, resolves the workflow state into plans, copies pages into
// new documents and delivers them. Every failure is contained to the one
// operation and reported as a workflow error.
package assembler

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ftwtie/pdfmerger/internal/download"
	"github.com/ftwtie/pdfmerger/internal/filetype"
	"github.com/ftwtie/pdfmerger/internal/logger"
	"github.com/ftwtie/pdfmerger/internal/metrics"
	"github.com/ftwtie/pdfmerger/internal/pdfdoc"
	"github.com/ftwtie/pdfmerger/internal/telemetry"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

const (
	workflowMerge = "merge"
	workflowSplit = "split"
)

// Source is a file handed in by the user.
type Source struct {
	Name     string
	Declared string // content type claimed by the client, may be empty
	Data     []byte
}

// Output describes one delivered document.
type Output struct {
	Name  string `json:"name"`
	Pages int    `json:"pages"`
	Size  int64  `json:"size"`
}

// Result summarises a finished operation.
type Result struct {
	OpID     string        `json:"op_id"`
	Workflow string        `json:"workflow"`
	Mode     string        `json:"mode,omitempty"`
	Outputs  []Output      `json:"outputs"`
	Duration time.Duration `json:"duration"`
}

// Options wires the collaborators. Nil fields get defaults.
type Options struct {
	Codec    pdfdoc.Codec
	Detector *filetype.Detector
	Notifier telemetry.Notifier
}

// Assembler is safe for concurrent use when its collaborators are; callers
// that need one-operation-at-a-time semantics gate access themselves.
type Assembler struct {
	codec    pdfdoc.Codec
	detector *filetype.Detector
	notifier telemetry.Notifier
}

func New(opts Options) *Assembler {
	a := &Assembler{codec: opts.Codec, detector: opts.Detector, notifier: opts.Notifier}
	if a.codec == nil {
		a.codec = pdfdoc.NewPDFCPU()
	}
	if a.detector == nil {
		a.detector = filetype.New()
	}
	if a.notifier == nil {
		a.notifier = telemetry.Nop{}
	}
	return a
}

// checkType validates src as a PDF without decoding it.
func (a *Assembler) checkType(src Source) (string, error) {
	return a.detector.ValidatePDF(src.Name, src.Declared, src.Data)
}

// decode turns src into a document, assuming its type was checked.
func (a *Assembler) decode(ctx context.Context, src Source, mime string) (workflow.SourceFile, pdfdoc.Document, error) {
	doc, err := a.codec.Decode(ctx, src.Data)
	if err != nil {
		return workflow.SourceFile{}, nil, &workflow.DecodeError{File: src.Name, Err: err}
	}
	return workflow.SourceFile{
		Name:  src.Name,
		Size:  int64(len(src.Data)),
		MIME:  mime,
		Pages: doc.PageCount(),
	}, doc, nil
}

// Inspect validates and decodes src and describes it.
func (a *Assembler) Inspect(ctx context.Context, src Source) (workflow.SourceFile, error) {
	mime, err := a.checkType(src)
	if err != nil {
		return workflow.SourceFile{}, err
	}
	f, _, err := a.decode(ctx, src, mime)
	return f, err
}

// SelectMergeFile validates src and stores it in slot 0 or 1 of state. On
// failure state is left as it was.
func (a *Assembler) SelectMergeFile(ctx context.Context, state *workflow.MergeState, slot int, src Source) error {
	f, err := a.Inspect(ctx, src)
	if err != nil {
		return err
	}
	if err := state.Select(slot, f); err != nil {
		return err
	}
	a.notifier.Track(ctx, telemetry.NewEvent(telemetry.EventFileSelected, map[string]any{
		"file_name":   f.Name,
		"file_size":   f.Size,
		"file_number": slot + 1,
	}))
	return nil
}

// SelectSplitFile validates src and installs it as the split source. A wrong
// type leaves state untouched; an unreadable PDF clears the current file.
func (a *Assembler) SelectSplitFile(ctx context.Context, state *workflow.SplitState, src Source) error {
	mime, err := a.checkType(src)
	if err != nil {
		return err
	}
	f, _, err := a.decode(ctx, src, mime)
	if err != nil {
		state.DiscardFile()
		return err
	}
	if err := state.SelectFile(f); err != nil {
		return err
	}
	a.notifier.Track(ctx, telemetry.NewEvent(telemetry.EventSplitFileSelected, map[string]any{
		"file_name":  f.Name,
		"file_size":  f.Size,
		"page_count": f.Pages,
	}))
	return nil
}

// Merge appends every page of first and then every page of second into one
// document and delivers it as merged.pdf. Both inputs are checked before
// anything is decoded; nothing is delivered unless every step succeeds.
func (a *Assembler) Merge(ctx context.Context, sink download.Sink, first, second Source) (res Result, err error) {
	op := a.begin(ctx, workflowMerge, "")
	ctx = op.log.WithContext(ctx)
	defer func() { op.finish(&res, err) }()

	if len(first.Data) == 0 || len(second.Data) == 0 {
		return res, &workflow.InputValidationError{Field: "files", Message: workflow.MsgSelectBoth}
	}
	mimeA, err := a.checkType(first)
	if err != nil {
		return res, err
	}
	mimeB, err := a.checkType(second)
	if err != nil {
		return res, err
	}

	a.notifier.Track(ctx, telemetry.NewEvent(telemetry.EventMergeClicked, map[string]any{
		"first_file_name":  first.Name,
		"second_file_name": second.Name,
		"first_file_size":  len(first.Data),
		"second_file_size": len(second.Data),
	}))

	var state workflow.MergeState
	fa, docA, err := a.decode(ctx, first, mimeA)
	if err != nil {
		return res, err
	}
	fb, docB, err := a.decode(ctx, second, mimeB)
	if err != nil {
		return res, err
	}
	if err := state.Select(0, fa); err != nil {
		return res, err
	}
	if err := state.Select(1, fb); err != nil {
		return res, err
	}
	plan, err := state.Plan()
	if err != nil {
		return res, err
	}

	data, err := a.assemble(ctx, plan, []pdfdoc.Document{docA, docB})
	if err != nil {
		return res, err
	}
	files := []download.File{{Name: plan.Name, Data: data}}
	outputs := []Output{{Name: plan.Name, Pages: plan.PageCount(), Size: int64(len(data))}}
	if err := deliver(ctx, sink, files); err != nil {
		return res, err
	}
	res.Outputs = outputs
	return res, nil
}

// Split resolves state into plans, builds every output from src and then
// delivers them in order. state.File must describe src.
func (a *Assembler) Split(ctx context.Context, sink download.Sink, state workflow.SplitState, src Source) (res Result, err error) {
	op := a.begin(ctx, workflowSplit, string(state.Mode))
	ctx = op.log.WithContext(ctx)
	defer func() { op.finish(&res, err) }()

	if state.File == nil || len(src.Data) == 0 {
		return res, &workflow.InputValidationError{Field: "file", Message: workflow.MsgSelectFile}
	}
	mime, err := a.checkType(src)
	if err != nil {
		return res, err
	}

	a.notifier.Track(ctx, telemetry.NewEvent(telemetry.EventSplitClicked, map[string]any{
		"file_name":  state.File.Name,
		"mode":       string(state.Mode),
		"page_count": state.File.Pages,
	}))

	plans, err := state.Plan()
	if err != nil {
		return res, err
	}
	_, doc, err := a.decode(ctx, src, mime)
	if err != nil {
		return res, err
	}

	files := make([]download.File, 0, len(plans))
	outputs := make([]Output, 0, len(plans))
	for _, plan := range plans {
		data, err := a.assemble(ctx, plan, []pdfdoc.Document{doc})
		if err != nil {
			return res, err
		}
		files = append(files, download.File{Name: plan.Name, Data: data})
		outputs = append(outputs, Output{Name: plan.Name, Pages: plan.PageCount(), Size: int64(len(data))})
	}
	if err := deliver(ctx, sink, files); err != nil {
		return res, err
	}
	res.Outputs = outputs
	return res, nil
}

// assemble builds one output document from plan. sources[i] backs part
// source number i.
func (a *Assembler) assemble(ctx context.Context, plan workflow.Plan, sources []pdfdoc.Document) ([]byte, error) {
	if plan.PageCount() == 0 {
		return nil, &workflow.SerializationError{Output: plan.Name, Err: pdfdoc.ErrEmptyOutput}
	}
	out := a.codec.Create()
	for _, part := range plan.Parts {
		if part.Source < 0 || part.Source >= len(sources) {
			return nil, &workflow.SerializationError{Output: plan.Name, Err: fmt.Errorf("no source %d", part.Source)}
		}
		pages, err := out.CopyPagesFrom(sources[part.Source], part.Indices)
		if err != nil {
			return nil, &workflow.SerializationError{Output: plan.Name, Err: err}
		}
		for _, p := range pages {
			out.AppendPage(p)
		}
	}
	data, err := out.Serialize(ctx)
	if err != nil {
		return nil, &workflow.SerializationError{Output: plan.Name, Err: err}
	}
	zerolog.Ctx(ctx).Debug().Str("output", plan.Name).Int("pages", out.PageCount()).
		Str("size", humanize.Bytes(uint64(len(data)))).Msg("output assembled")
	return data, nil
}

func deliver(ctx context.Context, sink download.Sink, files []download.File) error {
	if sink == nil {
		return fmt.Errorf("deliver: no sink")
	}
	for i, f := range files {
		if err := sink.Deliver(ctx, f.Name, f.Data); err != nil {
			if d, ok := sink.(download.Discarder); ok && i > 0 {
				if derr := d.Discard(); derr != nil {
					zerolog.Ctx(ctx).Warn().Err(derr).Msg("could not remove partial output")
				}
			}
			return fmt.Errorf("deliver %s: %w", f.Name, err)
		}
	}
	return nil
}

type operation struct {
	id       string
	workflow string
	mode     string
	start    time.Time
	log      zerolog.Logger
}

func (a *Assembler) begin(_ context.Context, wf, mode string) *operation {
	id := uuid.NewString()
	l := logger.WithOperation(id, wf)
	if mode != "" {
		l = l.With().Str("mode", mode).Logger()
	}
	l.Info().Msg("operation started")
	return &operation{id: id, workflow: wf, mode: mode, start: time.Now(), log: l}
}

func (o *operation) finish(res *Result, err error) {
	dur := time.Since(o.start)
	res.OpID, res.Workflow, res.Mode, res.Duration = o.id, o.workflow, o.mode, dur
	kind := workflow.Kind(err)
	metrics.ObserveOperation(o.workflow, o.mode, kind, dur)
	if err != nil {
		res.Outputs = nil
		o.log.Warn().Err(err).Str("result", kind).Dur("took", dur).Msg("operation failed")
		return
	}
	pages := 0
	var size int64
	for _, out := range res.Outputs {
		pages += out.Pages
		size += out.Size
	}
	metrics.AddPages(o.workflow, pages)
	metrics.AddOutputs(o.workflow, len(res.Outputs))
	o.log.Info().Int("outputs", len(res.Outputs)).Int("pages", pages).
		Str("size", humanize.Bytes(uint64(size))).Dur("took", dur).Msg("operation finished")
}
