// internal/api/handler/web/renderer.go
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/newthinker/fundrep/internal/core"
	"github.com/newthinker/fundrep/internal/report"
)

//go:embed templates/*
var templateFS embed.FS

// Page templates
const (
	PageIndex = "index.html"
	PageError = "error.html"
	layout    = "layout.html"
)

// Pages lists every page template, excluding layout.html
var Pages = []string{PageIndex, PageError, report.TemplatePrimary, report.TemplateDesignB}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Renderer executes named page templates. It is read-only after
// construction and safe for concurrent use.
type Renderer struct {
	// pages holds one template set per page, each containing
	// layout.html plus the page itself
	pages map[string]*template.Template
}

// NewRenderer parses page templates from templatesDir. If templatesDir is
// empty, it falls back to the embedded templates.
func NewRenderer(templatesDir string) (*Renderer, error) {
	if templatesDir == "" {
		return NewRendererFS(TemplateFS())
	}
	if _, err := os.Stat(filepath.Join(templatesDir, layout)); err != nil {
		return nil, fmt.Errorf("templates dir %s: %w", templatesDir, err)
	}
	return NewRendererFS(os.DirFS(templatesDir))
}

// NewRendererFS parses page templates from fsys. Pages missing from fsys
// are skipped and fail with ErrTemplateNotFound when rendered.
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	pages := make(map[string]*template.Template)

	for _, page := range Pages {
		if _, err := fs.Stat(fsys, page); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		// Parse layout first, then the page template
		tmpl, err := template.New(layout).
			Option("missingkey=error").
			Funcs(funcs).
			ParseFS(fsys, layout, page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pages[page] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Has reports whether the named page can be rendered
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render executes the named page with data and writes it to w. Nothing is
// written unless execution succeeds.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return core.WrapError(core.ErrTemplateNotFound, fmt.Errorf("no template %q", page))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layout, data); err != nil {
		return core.WrapError(core.ErrRender, fmt.Errorf("executing %s: %w", page, err))
	}

	_, err := buf.WriteTo(w)
	return err
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
