package export

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/printengine/enginetest"
	"github.com/dgallion1/agendagen/internal/schema"
)

func sampleDoc() *doctree.Document {
	return &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil,
		doctree.NewNode(schema.Title, nil, doctree.NewText("Regular Meeting Agenda")),
		doctree.NewNode(schema.Heading, doctree.Attrs{"level": "2"}, doctree.NewText("Call to Order", doctree.Mark{Type: schema.Bold})),
		doctree.NewNode(schema.Paragraph, doctree.Attrs{"textAlign": "center"},
			doctree.NewText("Pledge of "),
			doctree.NewText("Allegiance", doctree.Mark{Type: schema.Italic}),
		),
		doctree.NewNode(schema.OrderedList, doctree.Attrs{"start": "3"},
			doctree.NewNode(schema.ListItem, nil, doctree.NewNode(schema.Paragraph, nil, doctree.NewText("Roll Call"))),
			doctree.NewNode(schema.ListItem, nil, doctree.NewNode(schema.Paragraph, nil, doctree.NewText("Minutes"))),
		),
		doctree.NewNode(schema.BulletList, nil,
			doctree.NewNode(schema.ListItem, nil, doctree.NewNode(schema.Paragraph, nil, doctree.NewText("Consent Calendar"))),
		),
		doctree.NewNode(schema.SectionBreak, nil),
		doctree.NewNode(schema.NoticeBox, nil,
			doctree.NewNode(schema.Paragraph, nil, doctree.NewText("Masks are optional.", doctree.Mark{Type: schema.TextStyle, Attrs: doctree.Attrs{"color": "#2e8b57"}})),
		),
	)}
}

func docxParagraphs(t *testing.T, body []byte) []string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	var out []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			out = append(out, p.String())
		}
	}
	return out
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"html": FormatHTML, ".HTM": FormatHTML, "pdf": FormatPDF, "word": FormatDOCX, "markdown": FormatMarkdown, "md": FormatMarkdown} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("odt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportHTML(t *testing.T) {
	art, err := New(nil, nil).Export(context.Background(), sampleDoc(), FormatHTML, Options{Title: "Riverside"})
	require.NoError(t, err)

	body := string(art.Body)
	assert.Equal(t, "agenda.html", art.Filename)
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<title>Riverside</title>")
	assert.Contains(t, body, `<ol start="3">`)
	assert.Contains(t, body, "REGULAR MEETING 7:00 PM")
	assert.Zero(t, art.Pages)
}

func TestExportMarkdown(t *testing.T) {
	art, err := New(nil, nil).Export(context.Background(), sampleDoc(), FormatMarkdown, Options{Basename: "minutes"})
	require.NoError(t, err)

	md := string(art.Body)
	assert.Equal(t, "minutes.md", art.Filename)
	assert.Contains(t, md, "## **Call to Order**")
	assert.Contains(t, md, "*Allegiance*")
	assert.Contains(t, md, "Roll Call")
	assert.NotContains(t, md, "<ol")
}

func TestExportDOCX(t *testing.T) {
	art, err := New(nil, nil).Export(context.Background(), sampleDoc(), FormatDOCX, Options{})
	require.NoError(t, err)
	assert.Equal(t, "agenda.docx", art.Filename)

	paras := docxParagraphs(t, art.Body)
	assert.Equal(t, []string{
		"Regular Meeting Agenda",
		"Call to Order",
		"Pledge of Allegiance",
		"3. Roll Call",
		"4. Minutes",
		"• Consent Calendar",
		"REGULAR MEETING 7:00 PM",
		"Additional Meeting Procedures",
		"Masks are optional.",
	}, paras)
}

func TestExportDOCXUnknownLeafFails(t *testing.T) {
	doc := &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, doctree.NewNode("signatureLine", nil))}
	_, err := New(nil, nil).Produce(context.Background(), &Prepared{Doc: doc}, FormatDOCX)
	assert.ErrorIs(t, err, schema.ErrUnknownNodeKind)
}

func TestExportPDF(t *testing.T) {
	engine := enginetest.New(t)
	exp := New(nil, printengine.NewClient(engine.URL, 0))

	art, err := exp.Export(context.Background(), sampleDoc(), FormatPDF, Options{Basename: "june-agenda"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, "june-agenda.pdf", art.Filename)
	assert.Equal(t, 2, art.Pages)

	reqs := engine.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "june-agenda.pdf", reqs[0].Filename)
	assert.Contains(t, reqs[0].HTML, "Call to Order")
	assert.Contains(t, reqs[0].HTML, ".section-break")
}

func TestExportPDFErrors(t *testing.T) {
	_, err := New(nil, nil).Export(context.Background(), sampleDoc(), FormatPDF, Options{})
	assert.ErrorIs(t, err, ErrNoEngine)

	engine := enginetest.New(t)
	engine.Fail(http.StatusServiceUnavailable)
	exp := New(nil, printengine.NewClient(engine.URL, 0))
	_, err = exp.Export(context.Background(), sampleDoc(), FormatPDF, Options{})
	assert.True(t, printengine.IsRetryable(err), "got %v", err)
}

func TestExportUnknownLeafFailsBeforeRendering(t *testing.T) {
	engine := enginetest.New(t)
	exp := New(nil, printengine.NewClient(engine.URL, 0))
	doc := &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, doctree.NewNode("signatureLine", nil))}

	_, err := exp.Export(context.Background(), doc, FormatPDF, Options{})
	assert.ErrorIs(t, err, schema.ErrUnknownNodeKind)
	assert.Empty(t, engine.Requests())
}

func TestProduceRejectsUnknownFormat(t *testing.T) {
	exp := New(nil, nil)
	p, err := exp.Prepare(sampleDoc(), Options{})
	require.NoError(t, err)
	_, err = exp.Produce(context.Background(), p, Format("odt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
