package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/agendagen/internal/doctree"
)

func para(text string) *doctree.Node {
	return doctree.NewNode(Paragraph, nil, doctree.NewText(text))
}

func TestLookup(t *testing.T) {
	reg := Default()

	d, err := reg.Lookup(NoticeBox)
	require.NoError(t, err)
	assert.Equal(t, NoticeBox, d.Kind)

	_, err = reg.Lookup("agendaItem")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNodeKind))
	var ke *KindError
	require.True(t, errors.As(err, &ke))
	assert.Equal(t, doctree.Kind("agendaItem"), ke.Kind)

	_, err = reg.LookupMark("highlight")
	assert.True(t, errors.Is(err, ErrUnknownMarkType))
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	descs := defaultKinds()
	descs = append(descs, descs[2])
	_, err := NewRegistry(descs, defaultMarks())
	assert.Error(t, err)

	marks := defaultMarks()
	marks = append(marks, marks[0])
	_, err = NewRegistry(defaultKinds(), marks)
	assert.Error(t, err)
}

func TestNewRegistryRejectsBadSelector(t *testing.T) {
	descs := defaultKinds()
	descs[2].Match = "p[["
	_, err := NewRegistry(descs, defaultMarks())
	assert.Error(t, err)
}

func TestAttrSpecParseSerialize(t *testing.T) {
	reg := Default()
	cases := []struct {
		kind    doctree.Kind
		attr    string
		samples []string
	}{
		{NoticeBox, "title", []string{"Special Notice", "Public Hearing"}},
		{CouncilList, "caption", []string{"COUNCIL MEMBERS", "BOARD"}},
		{SectionBreak, "text", []string{"CLOSED SESSION 6:00 PM"}},
		{StyledParagraph, "align", []string{"center", "right", "justify"}},
		{StyledParagraph, "spacing", []string{"tight", "loose"}},
		{StyledParagraph, "variant", []string{"heading", "fine-print"}},
		{StyledParagraph, "color", []string{"#336699", "red", "rgb(0, 0, 0)"}},
		{Heading, "level", []string{"2", "6"}},
		{OrderedList, "start", []string{"4"}},
		{Logo, "size", []string{"small", "medium"}},
		{Title, "level", []string{"sub"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+tc.attr, func(t *testing.T) {
			d, err := reg.Lookup(tc.kind)
			require.NoError(t, err)
			spec, ok := d.Attr(tc.attr)
			require.True(t, ok)

			// Default round-trips as omission.
			v, err := spec.Parse("", false)
			require.NoError(t, err)
			assert.Equal(t, spec.Default, v)
			_, keep := spec.Serialize(v)
			assert.False(t, keep, "default value should be omitted")

			for _, s := range tc.samples {
				v, err := spec.Parse(s, true)
				require.NoError(t, err)
				out, keep := spec.Serialize(v)
				require.True(t, keep)
				back, err := spec.Parse(out, true)
				require.NoError(t, err)
				assert.Equal(t, v, back)
			}
		})
	}
}

func TestAttrSpecRejectsInvalid(t *testing.T) {
	reg := Default()
	cases := []struct {
		kind  doctree.Kind
		attr  string
		value string
	}{
		{Heading, "level", "7"},
		{StyledParagraph, "align", "middle"},
		{StyledParagraph, "color", "not a color;"},
		{OrderedList, "start", "0"},
		{NoticeBox, "title", "   "},
		{Logo, "size", "huge"},
	}
	for _, tc := range cases {
		d, _ := reg.Lookup(tc.kind)
		spec, _ := d.Attr(tc.attr)
		_, err := spec.Parse(tc.value, true)
		assert.ErrorIs(t, err, ErrInvalidAttribute, "%s.%s=%q", tc.kind, tc.attr, tc.value)
	}
}

func TestParseAttrs(t *testing.T) {
	reg := Default()

	attrs, err := reg.ParseAttrs(NoticeBox, doctree.Attrs{"title": "Special Notice"})
	require.NoError(t, err)
	assert.Equal(t, doctree.Attrs{"title": "Special Notice"}, attrs)

	attrs, err = reg.ParseAttrs(NoticeBox, doctree.Attrs{"title": "Additional Meeting Procedures"})
	require.NoError(t, err)
	assert.Nil(t, attrs)

	_, err = reg.ParseAttrs(NoticeBox, doctree.Attrs{"colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	attrs, err = reg.ParseAttrs(SectionBreak, doctree.Attrs{"text": "  CLOSED SESSION\n"})
	require.NoError(t, err)
	assert.Equal(t, doctree.Attrs{"text": "CLOSED SESSION"}, attrs)
}

func TestResolveAttrs(t *testing.T) {
	attrs, err := Default().ResolveAttrs(Logo, doctree.Attrs{"size": "small", "bogus": "x"})
	require.NoError(t, err)
	assert.Equal(t, "small", attrs["size"])
	assert.Equal(t, "City Logo", attrs["alt"])
	assert.Equal(t, DefaultLogoSrc, attrs["src"])
	_, ok := attrs["bogus"]
	assert.False(t, ok)
}

func coverChildren() []*doctree.Node {
	return []*doctree.Node{
		doctree.NewNode(CouncilList, nil, para("Mayor Jane Doe")),
		doctree.NewNode(Logo, nil),
		doctree.NewNode(LocationBlock, nil, para("Civic Center")),
	}
}

func TestValidateChildren(t *testing.T) {
	reg := Default()

	cases := []struct {
		name     string
		kind     doctree.Kind
		children []*doctree.Node
		wantErr  error
	}{
		{"doc empty", Doc, nil, nil},
		{"doc blocks", Doc, []*doctree.Node{para("a"), doctree.NewNode(HorizontalRule, nil)}, nil},
		{"doc rejects text", Doc, []*doctree.Node{doctree.NewText("a")}, ErrContentModel},
		{"doc rejects list item", Doc, []*doctree.Node{doctree.NewNode(ListItem, nil, para("a"))}, ErrContentModel},
		{"paragraph inline", Paragraph, []*doctree.Node{doctree.NewText("a"), doctree.NewNode(HardBreak, nil)}, nil},
		{"paragraph rejects block", Paragraph, []*doctree.Node{para("a")}, ErrContentModel},
		{"list needs an item", BulletList, nil, ErrContentModel},
		{"list rejects paragraph", BulletList, []*doctree.Node{para("a")}, ErrContentModel},
		{"cover exact", CoverHeader, coverChildren(), nil},
		{"cover title in middle", CoverHeader, []*doctree.Node{
			doctree.NewNode(CouncilList, nil, para("a")),
			doctree.NewNode(Title, nil, doctree.NewText("Agenda")),
			doctree.NewNode(LocationBlock, nil, para("b")),
		}, nil},
		{"cover two children", CoverHeader, coverChildren()[:2], ErrContentModel},
		{"cover wrong order", CoverHeader, []*doctree.Node{
			doctree.NewNode(Logo, nil),
			doctree.NewNode(CouncilList, nil, para("a")),
			doctree.NewNode(LocationBlock, nil, para("b")),
		}, ErrContentModel},
		{"council rejects heading", CouncilList, []*doctree.Node{doctree.NewNode(Heading, nil, doctree.NewText("x"))}, ErrContentModel},
		{"council styled paragraphs", CouncilList, []*doctree.Node{doctree.NewNode(StyledParagraph, nil, doctree.NewText("x"))}, nil},
		{"leaf rejects children", SectionBreak, []*doctree.Node{doctree.NewText("x")}, ErrContentModel},
		{"unknown child kind", Doc, []*doctree.Node{doctree.NewNode("agendaItem", nil)}, ErrUnknownNodeKind},
		{"unknown parent kind", "agendaItem", nil, ErrUnknownNodeKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.ValidateChildren(tc.kind, tc.children)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidatePartial(t *testing.T) {
	reg := Default()
	assert.NoError(t, reg.ValidatePartial(BulletList, nil))
	assert.ErrorIs(t, reg.ValidatePartial(CoverHeader, coverChildren()[:2]), ErrContentModel)
	assert.ErrorIs(t, reg.ValidatePartial(BulletList, []*doctree.Node{para("a")}), ErrContentModel)
}

func TestValidateNode(t *testing.T) {
	reg := Default()

	ok := doctree.NewNode(NoticeBox, doctree.Attrs{"title": "Special Notice"},
		doctree.NewNode(Paragraph, nil, doctree.NewText("Speak at the podium", doctree.Mark{Type: Bold})),
	)
	assert.NoError(t, reg.ValidateNode(ok))

	badMark := doctree.NewNode(Paragraph, nil, doctree.NewText("x", doctree.Mark{Type: "highlight"}))
	assert.ErrorIs(t, reg.ValidateNode(badMark), ErrUnknownMarkType)

	badMarkAttr := doctree.NewNode(Paragraph, nil, doctree.NewText("x", doctree.Mark{Type: Link, Attrs: doctree.Attrs{"rel": "nofollow"}}))
	assert.ErrorIs(t, reg.ValidateNode(badMarkAttr), ErrUnknownAttribute)

	badAttr := doctree.NewNode(NoticeBox, doctree.Attrs{"colour": "red"}, para("x"))
	assert.ErrorIs(t, reg.ValidateNode(badAttr), ErrUnknownAttribute)

	textOnBlock := &doctree.Node{Type: Paragraph, Text: "stray"}
	assert.ErrorIs(t, reg.ValidateNode(textOnBlock), ErrContentModel)

	deep := doctree.NewNode(BulletList, nil, doctree.NewNode(ListItem, nil, doctree.NewNode(BulletList, nil)))
	assert.ErrorIs(t, reg.ValidateNode(deep), ErrContentModel)
}

func TestValidateNodeRejectsUnstableText(t *testing.T) {
	reg := Default()

	padded := doctree.NewNode(NoticeBox, doctree.Attrs{"title": " Special "}, para("x"))
	assert.ErrorIs(t, reg.ValidateNode(padded), ErrInvalidAttribute)

	paddedBreak := doctree.NewNode(SectionBreak, doctree.Attrs{"text": "CLOSED SESSION\n"})
	assert.ErrorIs(t, reg.ValidateNode(paddedBreak), ErrInvalidAttribute)

	nul := para("a\x00b")
	assert.ErrorIs(t, reg.ValidateNode(nul), ErrContentModel)
}

func TestNormalize(t *testing.T) {
	reg := Default()
	doc := &doctree.Document{Root: doctree.NewNode(Doc, nil,
		doctree.NewNode(SectionBreak, doctree.Attrs{"text": "  CLOSED SESSION  "}),
		doctree.NewNode(NoticeBox, doctree.Attrs{"title": "\tSpecial"}, para("a\x00b")),
		doctree.NewNode(StyledParagraph, doctree.Attrs{"variant": "fine-print"}, doctree.NewText(" keep ")),
	)}

	reg.Normalize(doc)
	require.NoError(t, reg.ValidateDocument(doc, true))

	blocks := doc.Blocks()
	assert.Equal(t, "CLOSED SESSION", blocks[0].Attrs["text"])
	assert.Equal(t, "Special", blocks[1].Attrs["title"])
	assert.Equal(t, "ab", blocks[1].TextContent())
	assert.Equal(t, " keep ", blocks[2].TextContent())
}

func TestCanonicalMarks(t *testing.T) {
	reg := Default()

	got, err := reg.Canonical([]doctree.Mark{
		{Type: Link, Attrs: doctree.Attrs{"href": "https://a.example"}},
		{Type: Bold},
		{Type: Code},
		{Type: Link, Attrs: doctree.Attrs{"href": "https://b.example"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Code, got[0].Type)
	assert.Equal(t, Bold, got[1].Type)
	assert.Equal(t, Link, got[2].Type)
	assert.Equal(t, "https://b.example", got[2].Attrs["href"])

	_, err = reg.Canonical([]doctree.Mark{{Type: "blink"}})
	assert.ErrorIs(t, err, ErrUnknownMarkType)
}

func TestMarkTypesOrder(t *testing.T) {
	assert.Equal(t, []doctree.MarkType{Code, Bold, Italic, Underline, Strike, TextStyle, Link}, Default().MarkTypes())
}

func TestProducersOmitDefaults(t *testing.T) {
	reg := Default()
	produce := func(kind doctree.Kind, attrs doctree.Attrs, inner string) string {
		d, err := reg.Lookup(kind)
		require.NoError(t, err)
		resolved, err := reg.ResolveAttrs(kind, attrs)
		require.NoError(t, err)
		return d.Produce(doctree.NewNode(kind, attrs), resolved, inner)
	}

	assert.Equal(t, "<p>x</p>", produce(StyledParagraph, nil, "x"))
	assert.Equal(t, `<p data-align="center">x</p>`, produce(StyledParagraph, doctree.Attrs{"align": "center"}, "x"))
	assert.Equal(t, "<ol>x</ol>", produce(OrderedList, nil, "x"))
	assert.Equal(t, `<ol start="3">x</ol>`, produce(OrderedList, doctree.Attrs{"start": "3"}, "x"))
	assert.Equal(t, "<h1>x</h1>", produce(Heading, nil, "x"))
	assert.Equal(t, `<h2 class="text-center">x</h2>`, produce(Heading, doctree.Attrs{"level": "2", "textAlign": "center"}, "x"))
	assert.Equal(t,
		`<div data-type="section-break" class="section-break">A &amp; B</div>`,
		produce(SectionBreak, doctree.Attrs{"text": "A & B"}, ""))
}
