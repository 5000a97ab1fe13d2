// Package web serves the merge and split tools over HTTP on the loopback
// interface. Uploaded files live only for the duration of one request.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/ftwtie/pdfmerger/internal/assembler"
	"github.com/ftwtie/pdfmerger/internal/config"
	"github.com/ftwtie/pdfmerger/internal/limiter"
	"github.com/ftwtie/pdfmerger/internal/metrics"
	"github.com/ftwtie/pdfmerger/internal/statuscheck"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

// page is a rendered markdown document.
type page struct {
	Title       string
	Description string
	Body        template.HTML
}

type Options struct {
	Assembler *assembler.Assembler
	Gate      *limiter.Gate
	Checker   *statuscheck.Checker
	Site      config.SiteConfig
	MaxUpload int64 // bytes per request
}

type Web struct {
	tpl       *template.Template
	pages     map[string]page
	site      config.SiteConfig
	asm       *assembler.Assembler
	gate      *limiter.Gate
	checker   *statuscheck.Checker
	maxUpload int64
}

func New(opts Options) (*Web, error) {
	tpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	pages, err := loadPages(contentFS)
	if err != nil {
		return nil, err
	}
	w := &Web{
		tpl:       tpl,
		pages:     pages,
		site:      opts.Site,
		asm:       opts.Assembler,
		gate:      opts.Gate,
		checker:   opts.Checker,
		maxUpload: opts.MaxUpload,
	}
	if w.asm == nil {
		w.asm = assembler.New(assembler.Options{})
	}
	if w.gate == nil {
		w.gate = limiter.New(limiter.Options{})
	}
	if w.checker == nil {
		w.checker = statuscheck.New(statuscheck.Options{})
	}
	if w.maxUpload <= 0 {
		w.maxUpload = 100 << 20
	}
	if w.site.Name == "" {
		w.site.Name = "PDF Merger"
	}
	return w, nil
}

// loadPages renders every content/*.md file. Front matter supplies the title
// and description.
func loadPages(fsys fs.FS) (map[string]page, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM, meta.Meta))
	files, err := fs.Glob(fsys, "content/*.md")
	if err != nil {
		return nil, err
	}
	out := make(map[string]page, len(files))
	for _, f := range files {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		var buf bytes.Buffer
		pctx := parser.NewContext()
		if err := md.Convert(src, &buf, parser.WithContext(pctx)); err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		p := page{Body: template.HTML(buf.String())}
		fm := meta.Get(pctx)
		if v, ok := fm["title"].(string); ok {
			p.Title = v
		}
		if v, ok := fm["description"].(string); ok {
			p.Description = v
		}
		out[strings.TrimSuffix(path.Base(f), ".md")] = p
	}
	return out, nil
}

// Handler returns the full site with access logging.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()
	w.RegisterRoutes(mux)
	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("took", d).
			Msg("request")
	})(h)
	return hlog.NewHandler(log.Logger)(h)
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", w.handleHome)
	mux.HandleFunc("/tools", w.pageHandler("tools", ""))
	mux.HandleFunc("/merge", w.handleMerge)
	mux.HandleFunc("/merge/inspect", w.handleMergeInspect)
	mux.HandleFunc("/split", w.handleSplit)
	mux.HandleFunc("/split/inspect", w.handleSplitInspect)
	mux.HandleFunc("/health", w.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
}

type view struct {
	page
	Site config.SiteConfig
	Path string
	Form string
}

func (w *Web) render(wr http.ResponseWriter, r *http.Request, name, form string) {
	p, ok := w.pages[name]
	if !ok {
		http.NotFound(wr, r)
		return
	}
	var buf bytes.Buffer
	v := view{page: p, Site: w.site, Path: strings.TrimPrefix(r.URL.Path, "/"), Form: form}
	if err := w.tpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("render failed")
		http.Error(wr, "render failed", http.StatusInternalServerError)
		return
	}
	wr.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(wr)
}

func (w *Web) pageHandler(name, form string) http.HandlerFunc {
	return func(wr http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			wr.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.render(wr, r, name, form)
	}
}

func (w *Web) handleHome(wr http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(wr, r)
		return
	}
	w.pageHandler("home", "")(wr, r)
}

func (w *Web) handleMerge(wr http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		w.render(wr, r, "merge", "merge")
	case http.MethodPost:
		w.submitMerge(wr, r)
	default:
		wr.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (w *Web) handleSplit(wr http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		w.render(wr, r, "split", "split")
	case http.MethodPost:
		w.submitSplit(wr, r)
	default:
		wr.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (w *Web) handleHealth(wr http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	s := w.checker.Summary(ctx)
	status := http.StatusOK
	if !s.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(wr, status, s)
}
