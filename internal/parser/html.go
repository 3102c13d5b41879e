package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// MarkupParser reads converter output (or hand-written markup using the
// same conventions) back into a document tree. Every element is matched
// against the registry's parse rules; elements no rule claims are
// flattened into their children.
type MarkupParser struct {
	reg *schema.Registry
}

// NewMarkupParser returns a parser over reg.
func NewMarkupParser(reg *schema.Registry) *MarkupParser {
	return &MarkupParser{reg: reg}
}

func (p *MarkupParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := doctree.New()
	body := src.Find("body").First()
	if body.Length() > 0 {
		doc.Root.Content = p.blocks(body.Get(0))
	}
	if err := p.reg.ValidateDocument(doc, true); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// blocks reads the children of el in block context. Inline runs that
// appear directly in block context are wrapped in paragraphs.
func (p *MarkupParser) blocks(el *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var pending []*doctree.Node

	flush := func() {
		if len(pending) > 0 {
			out = append(out, doctree.NewNode(schema.Paragraph, nil, pending...))
			pending = nil
		}
	}

	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			pending = append(pending, doctree.NewText(c.Data))
		case html.ElementNode:
			if skipElement(c) {
				continue
			}
			if d, ok := p.reg.MatchKind(c); ok {
				if d.Group == schema.GroupInline {
					pending = append(pending, p.node(d, c))
					continue
				}
				flush()
				out = append(out, p.node(d, c))
				continue
			}
			if _, ok := p.reg.MatchMark(c); ok {
				pending = append(pending, p.inline(c, nil)...)
				continue
			}
			flush()
			out = append(out, p.blocks(c)...)
		}
	}
	flush()
	return out
}

func (p *MarkupParser) node(d *schema.Descriptor, el *html.Node) *doctree.Node {
	n := doctree.NewNode(d.Kind, p.attrs(d, el))
	container := d.ContentElement(el)
	if container == nil {
		return n
	}
	switch d.Content.Shape {
	case schema.InlineContent:
		n.Content = p.inline(container, nil)
	case schema.BlockContent, schema.FixedContent:
		n.Content = p.blocks(container)
	}
	return n
}

// inline reads the children of el as text runs. Mark elements push their
// mark onto the active set for everything inside them.
func (p *MarkupParser) inline(el *html.Node, active []doctree.Mark) []*doctree.Node {
	var out []*doctree.Node
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data == "" {
				continue
			}
			marks, err := p.reg.Canonical(append([]doctree.Mark(nil), active...))
			if err != nil {
				marks = nil
			}
			out = append(out, doctree.NewText(c.Data, marks...))
		case html.ElementNode:
			if d, ok := p.reg.MatchKind(c); ok && d.Group == schema.GroupInline {
				out = append(out, p.node(d, c))
				continue
			}
			if spec, ok := p.reg.MatchMark(c); ok {
				next := active
				if m, keep := p.mark(spec, c); keep {
					next = append(append([]doctree.Mark(nil), active...), m)
				}
				out = append(out, p.inline(c, next)...)
				continue
			}
			out = append(out, p.inline(c, active)...)
		}
	}
	return out
}

func (p *MarkupParser) mark(spec *schema.MarkSpec, el *html.Node) (doctree.Mark, bool) {
	m := doctree.Mark{Type: spec.Type}
	for _, a := range spec.Attrs {
		raw, present := recoverValue(a, el)
		v, err := a.Parse(raw, present)
		if err != nil {
			continue
		}
		if _, keep := a.Serialize(v); keep {
			if m.Attrs == nil {
				m.Attrs = make(doctree.Attrs)
			}
			m.Attrs[a.Name] = v
		}
	}
	if spec.Type == schema.TextStyle && m.Attrs["color"] == "" {
		return m, false
	}
	return m, true
}

// attrs recovers the non-default attribute values of a kind from its markup.
// Values that fail their spec are dropped, leaving the default.
func (p *MarkupParser) attrs(d *schema.Descriptor, el *html.Node) doctree.Attrs {
	var out doctree.Attrs
	for _, a := range d.Attrs {
		target := d.AttrElement(a.Name, el)
		if target == nil {
			continue
		}
		raw, present := recoverValue(a, target)
		v, err := a.Parse(raw, present)
		if err != nil {
			continue
		}
		if _, keep := a.Serialize(v); keep {
			if out == nil {
				out = make(doctree.Attrs)
			}
			out[a.Name] = v
		}
	}
	return out
}

func recoverValue(a schema.AttrSpec, el *html.Node) (string, bool) {
	switch a.Markup.Place {
	case schema.DataAttribute, schema.HTMLAttribute:
		return attrValue(el, a.Markup.Key)
	case schema.ClassSuffix:
		class, _ := attrValue(el, "class")
		for _, c := range strings.Fields(class) {
			if v, ok := strings.CutPrefix(c, a.Markup.Key); ok && v != "" {
				return v, true
			}
		}
	case schema.ElementText:
		return textContent(el), true
	case schema.TagLevel:
		if len(el.Data) == 2 && el.Data[0] == 'h' {
			return el.Data[1:], true
		}
	case schema.StyleProperty:
		style, _ := attrValue(el, "style")
		for _, decl := range strings.Split(style, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if ok && strings.EqualFold(strings.TrimSpace(prop), a.Markup.Key) {
				return strings.TrimSpace(val), true
			}
		}
	}
	return "", false
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func skipElement(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "template", "noscript":
		return true
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
