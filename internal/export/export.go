// Package export turns documents into downloadable artifacts.
package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/render"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Format names an export format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "md"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNoEngine          = errors.New("no print engine configured")
)

var contentTypes = map[Format]string{
	FormatHTML:     "text/html; charset=utf-8",
	FormatPDF:      "application/pdf",
	FormatDOCX:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatMarkdown: "text/markdown; charset=utf-8",
}

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatHTML, FormatPDF, FormatDOCX, FormatMarkdown}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Artifact is a finished export.
type Artifact struct {
	Format      Format `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Body        []byte `json:"-"`
	// Pages is only known for PDF artifacts.
	Pages int `json:"pages,omitempty"`
}

// Size returns the artifact size in bytes.
func (a *Artifact) Size() int { return len(a.Body) }

// Engine renders a standalone page to PDF. *printengine.Client implements it.
type Engine interface {
	Render(ctx context.Context, page, filename string) ([]byte, error)
}

// Options controls naming of the artifact.
type Options struct {
	Title string
	// Basename is the filename without extension. Defaults to "agenda".
	Basename string
}

// Prepared holds the converted forms of a document, ready for any format.
type Prepared struct {
	Doc    *doctree.Document
	Markup string
	Page   string
	opts   Options
}

// Exporter produces artifacts from documents.
type Exporter struct {
	reg    *schema.Registry
	conv   *render.Converter
	engine Engine
}

// New returns an exporter. engine may be nil, in which case PDF export
// fails with ErrNoEngine.
func New(reg *schema.Registry, engine Engine) *Exporter {
	if reg == nil {
		reg = schema.Default()
	}
	return &Exporter{reg: reg, conv: render.New(reg), engine: engine}
}

// Prepare converts doc to markup and wraps it in the print page.
func (e *Exporter) Prepare(doc *doctree.Document, opts Options) (*Prepared, error) {
	markup, err := e.conv.Convert(doc)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	page, err := render.Page(markup, render.PageOptions{Title: opts.Title})
	if err != nil {
		return nil, err
	}
	return &Prepared{Doc: doc, Markup: markup, Page: page, opts: opts}, nil
}

// Produce builds the artifact for format from a prepared document.
func (e *Exporter) Produce(ctx context.Context, p *Prepared, format Format) (*Artifact, error) {
	ct, ok := contentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	art := &Artifact{
		Format:      format,
		ContentType: ct,
		Filename:    filename(p.opts.Basename, format),
	}

	switch format {
	case FormatHTML:
		art.Body = []byte(p.Page)
	case FormatMarkdown:
		md, err := htmltomarkdown.ConvertString(p.Markup)
		if err != nil {
			return nil, fmt.Errorf("markdown: %w", err)
		}
		art.Body = []byte(md)
	case FormatDOCX:
		body, err := e.docx(p.Doc)
		if err != nil {
			return nil, fmt.Errorf("docx: %w", err)
		}
		art.Body = body
	case FormatPDF:
		if e.engine == nil {
			return nil, ErrNoEngine
		}
		pdf, err := e.engine.Render(ctx, p.Page, art.Filename)
		if err != nil {
			return nil, err
		}
		info, err := printengine.Inspect(pdf)
		if err != nil {
			return nil, fmt.Errorf("inspect pdf: %w", err)
		}
		art.Body = pdf
		art.Pages = info.Pages
	}
	return art, nil
}

// Export prepares doc and produces format in one step.
func (e *Exporter) Export(ctx context.Context, doc *doctree.Document, format Format, opts Options) (*Artifact, error) {
	p, err := e.Prepare(doc, opts)
	if err != nil {
		return nil, err
	}
	return e.Produce(ctx, p, format)
}

func filename(base string, format Format) string {
	base = strings.TrimSpace(path.Base(base))
	if base == "" || base == "." || base == "/" {
		base = "agenda"
	}
	return base + "." + string(format)
}
