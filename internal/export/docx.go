package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Sizes are in half-points.
var headingSizes = map[string]string{"1": "36", "2": "32", "3": "28", "4": "26", "5": "24", "6": "22"}

var justifications = map[string]string{"left": "start", "center": "center", "right": "end", "justify": "both"}

// runStyle is paragraph-wide formatting applied to every run. style names
// the Word paragraph style so importers can recover headings.
type runStyle struct {
	style string
	bold  bool
	size  string
	color string
}

type docxWriter struct {
	f   *docx.Docx
	reg *schema.Registry
}

// docx writes the document as a Word file. Images are not embedded; the
// layout containers collapse into their paragraphs.
func (e *Exporter) docx(doc *doctree.Document) ([]byte, error) {
	w := &docxWriter{f: docx.New(), reg: e.reg}
	for _, b := range doc.Blocks() {
		if err := w.block(b); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *docxWriter) block(n *doctree.Node) error {
	desc, err := w.reg.Lookup(n.Type)
	if err != nil {
		if len(n.Content) == 0 {
			return err
		}
		return w.blocks(n.Content)
	}
	attrs, err := w.reg.ResolveAttrs(n.Type, n.Attrs)
	if err != nil {
		return err
	}

	switch n.Type {
	case schema.Heading:
		return w.paragraph(n, attrs["textAlign"], "", runStyle{style: "Heading" + attrs["level"], bold: true, size: headingSizes[attrs["level"]]})
	case schema.Title:
		st := runStyle{style: "Title", bold: true, size: "36"}
		if attrs["level"] == "sub" {
			st.style, st.size = "Subtitle", "28"
		}
		return w.paragraph(n, "center", "", st)
	case schema.Paragraph:
		return w.paragraph(n, attrs["textAlign"], "", runStyle{})
	case schema.StyledParagraph:
		st := runStyle{color: attrs["color"]}
		switch attrs["variant"] {
		case "heading":
			st.bold, st.size = true, "28"
		case "subtitle":
			st.size = "26"
		case "fine-print":
			st.size = "16"
		}
		return w.paragraph(n, attrs["align"], "", st)
	case schema.BulletList:
		for _, item := range n.Content {
			if err := w.item(item, "• "); err != nil {
				return err
			}
		}
		return nil
	case schema.OrderedList:
		start, _ := strconv.Atoi(attrs["start"])
		for i, item := range n.Content {
			if err := w.item(item, strconv.Itoa(start+i)+". "); err != nil {
				return err
			}
		}
		return nil
	case schema.HorizontalRule:
		w.f.AddParagraph().Justification("center").AddText(strings.Repeat("─", 24))
		return nil
	case schema.Image, schema.Logo:
		return nil
	case schema.CouncilList:
		w.heading(attrs["caption"])
		return w.blocks(n.Content)
	case schema.NoticeBox:
		w.heading(attrs["title"])
		return w.blocks(n.Content)
	case schema.SectionBreak:
		w.f.AddParagraph().Justification("center").AddText(attrs["text"]).Bold()
		return nil
	}

	if desc.Content.Shape == schema.InlineContent {
		return w.paragraph(n, "", "", runStyle{})
	}
	return w.blocks(n.Content)
}

func (w *docxWriter) blocks(nodes []*doctree.Node) error {
	for _, c := range nodes {
		if err := w.block(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *docxWriter) heading(text string) {
	w.f.AddParagraph().Justification("center").AddText(text).Bold().Size("24")
}

// item writes a list item, prefixing its first paragraph with the marker.
func (w *docxWriter) item(li *doctree.Node, marker string) error {
	for i, c := range li.Content {
		if i == 0 && (c.Type == schema.Paragraph || c.Type == schema.StyledParagraph) {
			if err := w.paragraph(c, "", marker, runStyle{}); err != nil {
				return err
			}
			continue
		}
		if i == 0 {
			w.f.AddParagraph().AddText(strings.TrimSpace(marker))
		}
		if err := w.block(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *docxWriter) paragraph(n *doctree.Node, align, prefix string, st runStyle) error {
	p := w.f.AddParagraph()
	if st.style != "" {
		p.Style(st.style)
	}
	if jc, ok := justifications[align]; ok && align != "left" {
		p.Justification(jc)
	}
	if prefix != "" {
		st.apply(addText(p, prefix))
	}
	return w.inline(p, n.Content, st)
}

func (w *docxWriter) inline(p *docx.Paragraph, nodes []*doctree.Node, st runStyle) error {
	for _, c := range nodes {
		switch {
		case c.IsText():
			marks, err := w.reg.Canonical(c.Marks)
			if err != nil {
				return err
			}
			if href, ok := linkTarget(marks); ok {
				p.AddLink(c.Text, href)
				continue
			}
			run := addText(p, c.Text)
			st.apply(run)
			applyMarks(run, marks)
		case c.Type == schema.HardBreak:
			p.AddText("\n")
		default:
			if _, err := w.reg.Lookup(c.Type); err != nil && len(c.Content) == 0 {
				return err
			}
			if err := w.inline(p, c.Content, st); err != nil {
				return err
			}
		}
	}
	return nil
}

// addText adds a run, preserving edge whitespace that Word would otherwise
// collapse.
func addText(p *docx.Paragraph, text string) *docx.Run {
	run := p.AddText(text)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok && strings.TrimSpace(t.Text) != t.Text {
			t.XMLSpace = "preserve"
		}
	}
	return run
}

func (st runStyle) apply(run *docx.Run) {
	if st.bold {
		run.Bold()
	}
	if st.size != "" {
		run.Size(st.size)
	}
	if c, ok := hexColor(st.color); ok {
		run.Color(c)
	}
}

func applyMarks(run *docx.Run, marks []doctree.Mark) {
	for _, m := range marks {
		switch m.Type {
		case schema.Bold:
			run.Bold()
		case schema.Italic:
			run.Italic()
		case schema.Underline:
			run.Underline("single")
		case schema.Strike:
			run.Strike(true)
		case schema.Code:
			run.Font("Courier New", "Courier New", "Courier New", "")
		case schema.TextStyle:
			if c, ok := hexColor(m.Attrs["color"]); ok {
				run.Color(c)
			}
		}
	}
}

func linkTarget(marks []doctree.Mark) (string, bool) {
	for _, m := range marks {
		if m.Type == schema.Link {
			href := m.Attrs["href"]
			if href == "" {
				href = "#"
			}
			return href, true
		}
	}
	return "", false
}

// hexColor converts #rgb or #rrggbb to the bare form Word expects. Named
// colors are dropped.
func hexColor(s string) (string, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", false
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return "", false
	}
	return strings.ToUpper(s), true
}
