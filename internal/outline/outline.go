// Package outline splits an agenda into its sections: the runs of content
// headed by a title, a section break or a heading.
package outline

import (
	"strconv"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Section is one agenda section. Breadcrumb holds the titles of the
// enclosing sections, outermost first, ending with this section's own.
type Section struct {
	Index      int           `json:"index"`
	Kind       doctree.Kind  `json:"kind,omitempty"`
	Title      string        `json:"title,omitempty"`
	Breadcrumb []string      `json:"breadcrumb,omitempty"`
	Path       *doctree.Path `json:"path,omitempty"`
	Text       string        `json:"text,omitempty"`
	Words      int           `json:"words"`
}

// Build walks doc in document order and returns its sections. Content
// ahead of the first heading forms an untitled leading section.
func Build(reg *schema.Registry, doc *doctree.Document) []Section {
	if reg == nil {
		reg = schema.Default()
	}
	b := &builder{reg: reg}
	b.walk(doc.Root, doctree.RootPath(doc))
	b.flush()
	return b.sections
}

// Words sums the word counts of sections.
func Words(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += s.Words
	}
	return total
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

type frame struct {
	level int
	title string
}

type builder struct {
	reg      *schema.Registry
	sections []Section
	stack    []frame
	cur      *Section
	paras    []string
}

func (b *builder) walk(n *doctree.Node, p doctree.Path) {
	for i, c := range n.Content {
		cp := p.Child(i, c.ID)
		if level, title, ok := b.heading(c); ok {
			b.open(c, cp, level, title)
			continue
		}
		if isTextblock(c) {
			b.add(inlineText(c))
			continue
		}
		b.walk(c, cp)
	}
}

// heading reports whether n starts a section. Main titles nest outermost,
// then section breaks, then headings by level.
func (b *builder) heading(n *doctree.Node) (level int, title string, ok bool) {
	switch n.Type {
	case schema.Title:
		attrs, err := b.reg.ResolveAttrs(n.Type, n.Attrs)
		if err != nil || attrs["level"] != "main" {
			return 0, "", false
		}
		return 0, strings.TrimSpace(n.TextContent()), true
	case schema.SectionBreak:
		attrs, err := b.reg.ResolveAttrs(n.Type, n.Attrs)
		if err != nil {
			return 0, "", false
		}
		return 1, attrs["text"], true
	case schema.Heading:
		lvl, err := strconv.Atoi(n.Attrs["level"])
		if err != nil || lvl < 1 {
			lvl = 1
		}
		return 1 + lvl, strings.TrimSpace(n.TextContent()), true
	}
	return 0, "", false
}

func (b *builder) open(n *doctree.Node, p doctree.Path, level int, title string) {
	b.flush()
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	b.stack = append(b.stack, frame{level: level, title: title})

	crumbs := make([]string, len(b.stack))
	for i, f := range b.stack {
		crumbs[i] = f.title
	}
	b.cur = &Section{Kind: n.Type, Title: title, Breadcrumb: crumbs, Path: &p}
}

func (b *builder) add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.cur == nil {
		b.cur = &Section{}
	}
	b.paras = append(b.paras, text)
}

func (b *builder) flush() {
	if b.cur == nil {
		return
	}
	b.cur.Text = strings.Join(b.paras, "\n\n")
	b.cur.Words = CountWords(b.cur.Title) + CountWords(b.cur.Text)
	b.cur.Index = len(b.sections)
	b.sections = append(b.sections, *b.cur)
	b.cur, b.paras = nil, nil
}

func isTextblock(n *doctree.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	first := n.Content[0]
	return first.IsText() || first.Type == schema.HardBreak
}

func inlineText(n *doctree.Node) string {
	var buf strings.Builder
	for _, c := range n.Content {
		switch {
		case c.IsText():
			buf.WriteString(c.Text)
		case c.Type == schema.HardBreak:
			buf.WriteByte('\n')
		default:
			buf.WriteString(inlineText(c))
		}
	}
	return buf.String()
}
