package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// MarkdownParser imports Markdown agendas using goldmark. Headings, lists,
// rules and inline emphasis map onto the registry's kinds; raw HTML is
// dropped.
type MarkdownParser struct {
	reg *schema.Registry
	md  goldmark.Markdown
}

// NewMarkdownParser returns a parser producing documents valid against reg.
func NewMarkdownParser(reg *schema.Registry) *MarkdownParser {
	return &MarkdownParser{
		reg: reg,
		md:  goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
	}
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	root := p.md.Parser().Parse(text.NewReader(src))

	w := &mdWalker{reg: p.reg, src: src}
	doc := &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, w.blocks(root)...)}
	if err := p.reg.ValidateDocument(doc, true); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

type mdWalker struct {
	reg *schema.Registry
	src []byte
}

func (w *mdWalker) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			out = append(out, doctree.NewNode(schema.Heading, levelAttrs(node.Level), w.inline(node, nil)...))
		case *ast.Paragraph, *ast.TextBlock:
			if content := w.inline(node, nil); len(content) > 0 {
				out = append(out, doctree.NewNode(schema.Paragraph, nil, content...))
			}
		case *ast.List:
			if list := w.list(node); list != nil {
				out = append(out, list)
			}
		case *ast.ThematicBreak:
			out = append(out, doctree.NewNode(schema.HorizontalRule, nil))
		case *ast.Blockquote:
			out = append(out, w.blocks(node)...)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if para := w.code(node); para != nil {
				out = append(out, para)
			}
		}
	}
	return out
}

func levelAttrs(level int) doctree.Attrs {
	if level <= 1 || level > 6 {
		return nil
	}
	return doctree.Attrs{"level": strconv.Itoa(level)}
}

func (w *mdWalker) list(l *ast.List) *doctree.Node {
	var items []*doctree.Node
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		body := w.blocks(c)
		if len(body) == 0 {
			continue
		}
		items = append(items, doctree.NewNode(schema.ListItem, nil, body...))
	}
	if len(items) == 0 {
		return nil
	}
	if !l.IsOrdered() {
		return doctree.NewNode(schema.BulletList, nil, items...)
	}
	var attrs doctree.Attrs
	if l.Start > 1 {
		attrs = doctree.Attrs{"start": strconv.Itoa(l.Start)}
	}
	return doctree.NewNode(schema.OrderedList, attrs, items...)
}

// code keeps code blocks as one paragraph of code-marked lines.
func (w *mdWalker) code(n ast.Node) *doctree.Node {
	lines := n.Lines()
	var content []*doctree.Node
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\r\n")
		if i > 0 {
			content = append(content, doctree.NewNode(schema.HardBreak, nil))
		}
		if line != "" {
			content = append(content, doctree.NewText(line, doctree.Mark{Type: schema.Code}))
		}
	}
	if len(content) == 0 {
		return nil
	}
	return doctree.NewNode(schema.Paragraph, nil, content...)
}

// inline flattens the inline children of n into text runs carrying the
// marks active at each run.
func (w *mdWalker) inline(n ast.Node, active []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			out = w.appendText(out, string(node.Value(w.src)), active)
			switch {
			case node.HardLineBreak():
				out = append(out, doctree.NewNode(schema.HardBreak, nil))
			case node.SoftLineBreak():
				out = w.appendText(out, " ", active)
			}
		case *ast.String:
			out = w.appendText(out, string(node.Value), active)
		case *ast.Emphasis:
			mark := schema.Italic
			if node.Level >= 2 {
				mark = schema.Bold
			}
			out = append(out, w.inline(node, with(active, doctree.Mark{Type: mark}))...)
		case *east.Strikethrough:
			out = append(out, w.inline(node, with(active, doctree.Mark{Type: schema.Strike}))...)
		case *ast.CodeSpan:
			out = append(out, w.inline(node, with(active, doctree.Mark{Type: schema.Code}))...)
		case *ast.Link:
			link := doctree.Mark{Type: schema.Link, Attrs: doctree.Attrs{"href": string(node.Destination)}}
			out = append(out, w.inline(node, with(active, link))...)
		case *ast.AutoLink:
			link := doctree.Mark{Type: schema.Link, Attrs: doctree.Attrs{"href": string(node.URL(w.src))}}
			out = w.appendText(out, string(node.Label(w.src)), with(active, link))
		case *ast.Image:
			// Inline images have no place in the block-level image kind; keep the alt text.
			out = append(out, w.inline(node, active)...)
		case *ast.RawHTML:
		default:
			out = append(out, w.inline(node, active)...)
		}
	}
	return mergeRuns(out)
}

func (w *mdWalker) appendText(out []*doctree.Node, s string, marks []doctree.Mark) []*doctree.Node {
	if s == "" {
		return out
	}
	canon, err := w.reg.Canonical(marks)
	if err != nil {
		canon = nil
	}
	return append(out, doctree.NewText(s, canon...))
}

func with(active []doctree.Mark, m doctree.Mark) []doctree.Mark {
	out := make([]doctree.Mark, 0, len(active)+1)
	out = append(out, active...)
	return append(out, m)
}
