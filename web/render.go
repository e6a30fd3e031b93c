// Package web holds the embedded HTML templates and static assets, and the
// renderer gin uses to execute them.
package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/export"
	"faithledger/internal/models"
)

// LayoutTemplate is the page shell. Every other template defines the
// "content" block (and optionally "title" and "scripts") rendered inside it.
const LayoutTemplate = "layout.html"

const displayDateLayout = "02 Jan 2006"

// Renderer is a gin HTMLRender that keeps one template set per page, each
// combining the shared layout with that page's blocks.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. Amounts are formatted with
// currency.
func NewRenderer(currency string) (*Renderer, error) {
	return newRenderer(TemplatesFS, currency)
}

func newRenderer(fsys fs.FS, currency string) (*Renderer, error) {
	layout, err := template.New(LayoutTemplate).Funcs(Funcs(currency)).ParseFS(fsys, "templates/"+LayoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := path.Base(file)
		if name == LayoutTemplate {
			continue
		}
		page, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

// Pages returns the names of the parsed pages.
func (r *Renderer) Pages() []string {
	names := make([]string, 0, len(r.pages))
	for name := range r.pages {
		names = append(names, name)
	}
	return names
}

// Instance implements render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	page, ok := r.pages[name]
	if !ok {
		return missingPage(name)
	}
	return render.HTML{Template: page, Name: LayoutTemplate, Data: data}
}

type missingPage string

func (m missingPage) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %q is not defined", string(m))
}

func (missingPage) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Funcs returns the helpers available to every template.
func Funcs(currency string) template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return export.Money(currency, d)
		},
		"currency": func() string { return currency },
		"date": func(t time.Time) string {
			return t.Format(displayDateLayout)
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(models.DateLayout)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"json": func(v any) (template.JS, error) {
			raw, err := json.Marshal(v)
			return template.JS(raw), err
		},
		"fieldError": func(errs apperrors.FieldErrors, field string) string {
			return errs[field]
		},
		"navClass": func(current, prefix string) string {
			if prefix == "/" {
				if current == "/" {
					return "active"
				}
				return ""
			}
			if strings.HasPrefix(current, prefix) {
				return "active"
			}
			return ""
		},
	}
}
