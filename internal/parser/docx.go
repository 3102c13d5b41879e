package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// DOCXParser imports Word documents. Heading styles become headings, run
// formatting becomes marks, and paragraphs led by "• " or "N. " are
// gathered into lists. Tables and images are skipped.
type DOCXParser struct {
	reg *schema.Registry
}

// NewDOCXParser returns a parser producing documents valid against reg.
func NewDOCXParser(reg *schema.Registry) *DOCXParser {
	return &DOCXParser{reg: reg}
}

var orderedMarker = regexp.MustCompile(`^(\d+)\.\s+`)

const bulletMarker = "• "

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt and the size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	var (
		blocks []*doctree.Node
		list   *doctree.Node
	)
	for _, item := range f.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			list = nil
			continue
		}
		runs := p.runs(para)
		if strings.TrimSpace(plainText(runs)) == "" {
			list = nil
			continue
		}

		if level := docxHeadingLevel(para); level > 0 {
			list = nil
			blocks = append(blocks, doctree.NewNode(schema.Heading, levelAttrs(level), runs...))
			continue
		}

		if kind, start, rest, ok := listMarker(runs); ok {
			if list == nil || list.Type != kind {
				var attrs doctree.Attrs
				if kind == schema.OrderedList && start != "1" {
					attrs = doctree.Attrs{"start": start}
				}
				list = doctree.NewNode(kind, attrs)
				blocks = append(blocks, list)
			}
			list.Content = append(list.Content, doctree.NewNode(schema.ListItem, nil, doctree.NewNode(schema.Paragraph, nil, rest...)))
			continue
		}

		list = nil
		var attrs doctree.Attrs
		if align := docxAlignment(para); align != "" {
			attrs = doctree.Attrs{"textAlign": align}
		}
		blocks = append(blocks, doctree.NewNode(schema.Paragraph, attrs, runs...))
	}

	doc := &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, blocks...)}
	if err := p.reg.ValidateDocument(doc, true); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// runs converts the text runs of para into marked text nodes. Hyperlinks
// keep their text only; the relationship targets are not exposed.
func (p *DOCXParser) runs(para *docx.Paragraph) []*doctree.Node {
	var out []*doctree.Node
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			out = p.run(out, c)
		case *docx.Hyperlink:
			out = p.run(out, &c.Run)
		}
	}
	return mergeRuns(out)
}

func (p *DOCXParser) run(out []*doctree.Node, run *docx.Run) []*doctree.Node {
	marks, err := p.reg.Canonical(runMarks(run))
	if err != nil {
		marks = nil
	}
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, doctree.NewText(buf.String(), marks...))
			buf.Reset()
		}
	}
	buf.WriteString(run.InstrText)
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteString(" ")
		case *docx.BarterRabbet:
			flush()
			out = append(out, doctree.NewNode(schema.HardBreak, nil))
		}
	}
	flush()
	return out
}

func runMarks(run *docx.Run) []doctree.Mark {
	props := run.RunProperties
	if props == nil {
		return nil
	}
	var marks []doctree.Mark
	if props.Bold != nil {
		marks = append(marks, doctree.Mark{Type: schema.Bold})
	}
	if props.Italic != nil {
		marks = append(marks, doctree.Mark{Type: schema.Italic})
	}
	if props.Underline != nil && props.Underline.Val != "none" {
		marks = append(marks, doctree.Mark{Type: schema.Underline})
	}
	if props.Strike != nil && props.Strike.Val != "false" && props.Strike.Val != "0" {
		marks = append(marks, doctree.Mark{Type: schema.Strike})
	}
	return marks
}

// listMarker recognizes the list prefixes the Word export writes and
// returns the remaining runs.
func listMarker(runs []*doctree.Node) (kind doctree.Kind, start string, rest []*doctree.Node, ok bool) {
	if len(runs) == 0 || !runs[0].IsText() {
		return "", "", nil, false
	}
	first := runs[0].Text
	var stripped string
	switch {
	case strings.HasPrefix(first, bulletMarker):
		kind, stripped = schema.BulletList, strings.TrimPrefix(first, bulletMarker)
	case orderedMarker.MatchString(first):
		m := orderedMarker.FindStringSubmatch(first)
		kind, start, stripped = schema.OrderedList, m[1], first[len(m[0]):]
	default:
		return "", "", nil, false
	}

	rest = append(rest, runs[1:]...)
	if stripped != "" {
		head := doctree.NewText(stripped, runs[0].Marks...)
		rest = append([]*doctree.Node{head}, rest...)
	}
	if len(rest) == 0 {
		return "", "", nil, false
	}
	return kind, start, rest, true
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok && len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
		return int(rest[0] - '0')
	}
	return 0
}

func docxAlignment(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Justification == nil {
		return ""
	}
	switch para.Properties.Justification.Val {
	case "center":
		return "center"
	case "end", "right":
		return "right"
	case "both", "distribute":
		return "justify"
	}
	return ""
}
