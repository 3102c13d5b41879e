package edit

import (
	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Placeholder content for the insert commands. Editors replace it in place.
var (
	DefaultCouncilMembers = []string{"Mayor", "Vice Mayor", "Councilmember", "Councilmember", "Councilmember"}
	DefaultLocationLines  = []string{"Council Chamber", "Civic Center", "Street Address", "City, State ZIP"}
	DefaultNoticeText     = "This meeting will be broadcast live and livestreamed on the City's website."
)

func paragraphs(lines []string) []*doctree.Node {
	out := make([]*doctree.Node, len(lines))
	for i, l := range lines {
		out[i] = doctree.NewNode(schema.Paragraph, nil, doctree.NewText(l))
	}
	return out
}

// CouncilListNode builds a member list; no members means the placeholders.
func CouncilListNode(members ...string) *doctree.Node {
	if len(members) == 0 {
		members = DefaultCouncilMembers
	}
	return doctree.NewNode(schema.CouncilList, nil, paragraphs(members)...)
}

// LocationBlockNode builds a location block; no lines means the placeholders.
func LocationBlockNode(lines ...string) *doctree.Node {
	if len(lines) == 0 {
		lines = DefaultLocationLines
	}
	return doctree.NewNode(schema.LocationBlock, nil, paragraphs(lines)...)
}

// CoverHeaderNode builds the three-column cover header with placeholder
// columns and the default logo in the middle.
func CoverHeaderNode() *doctree.Node {
	return doctree.NewNode(schema.CoverHeader, nil,
		CouncilListNode(),
		doctree.NewNode(schema.Logo, nil),
		LocationBlockNode(),
	)
}

// InsertCoverHeader inserts a placeholder cover header.
func (e *Editor) InsertCoverHeader(doc *doctree.Document, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
	return e.InsertSubtree(doc, CoverHeaderNode(), parent, index)
}

// InsertCouncilList inserts a member list.
func (e *Editor) InsertCouncilList(doc *doctree.Document, parent doctree.Path, index int, members ...string) (*doctree.Document, doctree.Path, error) {
	return e.InsertSubtree(doc, CouncilListNode(members...), parent, index)
}

// InsertLocationBlock inserts a location block.
func (e *Editor) InsertLocationBlock(doc *doctree.Document, parent doctree.Path, index int, lines ...string) (*doctree.Document, doctree.Path, error) {
	return e.InsertSubtree(doc, LocationBlockNode(lines...), parent, index)
}

// InsertNoticeBox inserts a notice box holding one paragraph of text. An
// empty title keeps the default.
func (e *Editor) InsertNoticeBox(doc *doctree.Document, parent doctree.Path, index int, title, text string) (*doctree.Document, doctree.Path, error) {
	if text == "" {
		text = DefaultNoticeText
	}
	var attrs doctree.Attrs
	if title != "" {
		attrs = doctree.Attrs{"title": title}
	}
	body := doctree.NewNode(schema.Paragraph, nil, doctree.NewText(text))
	return e.InsertNode(doc, schema.NoticeBox, parent, index, attrs, []*doctree.Node{body})
}

// InsertSectionBreak inserts a section break; empty text keeps the default.
func (e *Editor) InsertSectionBreak(doc *doctree.Document, parent doctree.Path, index int, text string) (*doctree.Document, doctree.Path, error) {
	var attrs doctree.Attrs
	if text != "" {
		attrs = doctree.Attrs{"text": text}
	}
	return e.InsertNode(doc, schema.SectionBreak, parent, index, attrs, nil)
}

// InsertLogo inserts a logo of the given size; empty src keeps the seal.
func (e *Editor) InsertLogo(doc *doctree.Document, parent doctree.Path, index int, src, size string) (*doctree.Document, doctree.Path, error) {
	attrs := doctree.Attrs{}
	if src != "" {
		attrs["src"] = src
	}
	if size != "" {
		attrs["size"] = size
	}
	return e.InsertNode(doc, schema.Logo, parent, index, attrs, nil)
}

// InsertTitle inserts an agenda title at level "main" or "sub".
func (e *Editor) InsertTitle(doc *doctree.Document, parent doctree.Path, index int, text, level string) (*doctree.Document, doctree.Path, error) {
	var attrs doctree.Attrs
	if level != "" {
		attrs = doctree.Attrs{"level": level}
	}
	var content []*doctree.Node
	if text != "" {
		content = []*doctree.Node{doctree.NewText(text)}
	}
	return e.InsertNode(doc, schema.Title, parent, index, attrs, content)
}
