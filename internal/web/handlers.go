package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ftwtie/pdfmerger/internal/assembler"
	"github.com/ftwtie/pdfmerger/internal/download"
	"github.com/ftwtie/pdfmerger/internal/workflow"
)

const (
	msgBusy     = "Another operation is in progress. Please wait for it to finish."
	msgTooLarge = "That file is too large."
	msgBadForm  = "The upload could not be read. Please try again."

	// parts above this size are spooled to temp files by net/http
	maxMemory = 32 << 20

	// merge and split share one slot
	gateKey = "assemble"
)

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(wr http.ResponseWriter, status int, v any) {
	wr.Header().Set("Content-Type", "application/json")
	wr.WriteHeader(status)
	_ = json.NewEncoder(wr).Encode(v)
}

func fail(wr http.ResponseWriter, status int, msg string) {
	writeJSON(wr, status, errorResp{Error: msg})
}

// statusFor maps workflow errors to HTTP status codes.
func statusFor(err error) int {
	switch workflow.Kind(err) {
	case workflow.KindInvalid, workflow.KindEmpty:
		return http.StatusBadRequest
	case workflow.KindDecode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func failOp(wr http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	ev := zerolog.Ctx(r.Context()).Warn()
	if status >= 500 {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")
	fail(wr, status, workflow.MessageFor(err, fallback))
}

// parseUpload limits and parses a multipart body. On failure it has already
// written the response.
func (w *Web) parseUpload(wr http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(wr, r.Body, w.maxUpload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			fail(wr, http.StatusRequestEntityTooLarge, msgTooLarge)
			return false
		}
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("bad multipart form")
		fail(wr, http.StatusBadRequest, msgBadForm)
		return false
	}
	return true
}

// readUpload returns the file in field. A missing file yields an empty source,
// which validation reports in workflow terms.
func readUpload(r *http.Request, field string) (assembler.Source, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return assembler.Source{}, nil
	}
	if err != nil {
		return assembler.Source{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return assembler.Source{}, fmt.Errorf("read %s: %w", field, err)
	}
	return assembler.Source{Name: hdr.Filename, Declared: hdr.Header.Get("Content-Type"), Data: data}, nil
}

// sendFiles writes a single output as a PDF attachment and several as a zip.
func sendFiles(wr http.ResponseWriter, r *http.Request, opID string, files []download.File, archive string) {
	wr.Header().Set("X-Operation-Id", opID)
	if len(files) == 1 {
		f := files[0]
		wr.Header().Set("Content-Type", workflow.PDFMIME)
		wr.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
		wr.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		_, _ = wr.Write(f.Data)
		return
	}
	var buf bytes.Buffer
	if err := download.WriteZip(&buf, files); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("zip failed")
		fail(wr, http.StatusInternalServerError, workflow.MsgSplitFailed)
		return
	}
	wr.Header().Set("Content-Type", "application/zip")
	wr.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": archive}))
	wr.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(wr)
}

func (w *Web) submitMerge(wr http.ResponseWriter, r *http.Request) {
	release, ok := w.gate.Allow(gateKey)
	if !ok {
		fail(wr, http.StatusConflict, msgBusy)
		return
	}
	defer release()
	if !w.parseUpload(wr, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	first, err := readUpload(r, "file1")
	if err != nil {
		fail(wr, http.StatusBadRequest, msgBadForm)
		return
	}
	second, err := readUpload(r, "file2")
	if err != nil {
		fail(wr, http.StatusBadRequest, msgBadForm)
		return
	}

	sink := &download.MemorySink{}
	res, err := w.asm.Merge(r.Context(), sink, first, second)
	if err != nil {
		failOp(wr, r, err, workflow.MsgMergeFailed)
		return
	}
	sendFiles(wr, r, res.OpID, sink.Files(), workflow.MergedName)
}

func (w *Web) submitSplit(wr http.ResponseWriter, r *http.Request) {
	release, ok := w.gate.Allow(gateKey)
	if !ok {
		fail(wr, http.StatusConflict, msgBusy)
		return
	}
	defer release()
	if !w.parseUpload(wr, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, err := readUpload(r, "file")
	if err != nil {
		fail(wr, http.StatusBadRequest, msgBadForm)
		return
	}
	state, err := w.splitState(r, src)
	if err != nil {
		failOp(wr, r, err, workflow.MsgSplitFailed)
		return
	}

	sink := &download.MemorySink{}
	res, err := w.asm.Split(r.Context(), sink, state, src)
	if err != nil {
		failOp(wr, r, err, workflow.MsgSplitFailed)
		return
	}
	sendFiles(wr, r, res.OpID, sink.Files(), workflow.ArchiveName(src.Name))
}

// splitState rebuilds the split form from the request: file, mode, toggled
// pages and range bounds.
func (w *Web) splitState(r *http.Request, src assembler.Source) (workflow.SplitState, error) {
	state := workflow.NewSplitState()
	f, err := w.asm.Inspect(r.Context(), src)
	if err != nil {
		return state, err
	}
	if err := state.SelectFile(f); err != nil {
		return state, err
	}
	if m := r.FormValue("mode"); m != "" {
		mode, err := workflow.ParseMode(m)
		if err != nil {
			return state, err
		}
		if err := state.SetMode(mode); err != nil {
			return state, err
		}
	}
	for _, v := range r.MultipartForm.Value["pages"] {
		pages, err := workflow.ParsePageList(v)
		if err != nil {
			return state, err
		}
		if err := state.ToggleAll(pages); err != nil {
			return state, err
		}
	}
	if v := r.FormValue("from"); v != "" {
		state.SetFromInput(v)
	}
	if v := r.FormValue("to"); v != "" {
		state.SetToInput(v)
	}
	return state, nil
}

func (w *Web) handleMergeInspect(wr http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wr.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !w.parseUpload(wr, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	slot, err := strconv.Atoi(r.FormValue("slot"))
	if err != nil || slot < 1 || slot > 2 {
		fail(wr, http.StatusBadRequest, workflow.MsgSelectBoth)
		return
	}
	src, err := readUpload(r, "file")
	if err != nil {
		fail(wr, http.StatusBadRequest, msgBadForm)
		return
	}
	var state workflow.MergeState
	if err := w.asm.SelectMergeFile(r.Context(), &state, slot-1, src); err != nil {
		failOp(wr, r, err, workflow.MsgUnreadable)
		return
	}
	f := state.First
	if slot == 2 {
		f = state.Second
	}
	writeJSON(wr, http.StatusOK, f)
}

func (w *Web) handleSplitInspect(wr http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		wr.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !w.parseUpload(wr, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	src, err := readUpload(r, "file")
	if err != nil {
		fail(wr, http.StatusBadRequest, msgBadForm)
		return
	}
	state := workflow.NewSplitState()
	if err := w.asm.SelectSplitFile(r.Context(), &state, src); err != nil {
		failOp(wr, r, err, workflow.MsgUnreadable)
		return
	}
	writeJSON(wr, http.StatusOK, state)
}
