package doctree

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "type": "doc",
  "content": [
    {"type": "heading", "attrs": {"level": 2, "textAlign": null}, "content": [{"type": "text", "text": "Call to Order"}]},
    {"type": "paragraph", "content": [
      {"type": "text", "text": "Roll "},
      {"type": "text", "text": "call", "marks": [{"type": "bold"}]}
    ]}
  ]
}`

func TestDecodeStringifiesAttrs(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	h := doc.Blocks()[0]
	assert.Equal(t, Kind("heading"), h.Type)
	assert.Equal(t, Attrs{"level": "2"}, h.Attrs)
	assert.Equal(t, "Roll call", doc.Blocks()[1].TextContent())
}

func TestDecodeRejectsNonDocRoot(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"type":"paragraph"}`))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	doc.AssignIDs()

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	back, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc.Root, back.Root)
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	cp := doc.Clone()

	cp.Blocks()[0].Attrs["level"] = "3"
	cp.Blocks()[1].Content[1].Marks[0].Type = "italic"
	cp.Root.Content = cp.Root.Content[:1]

	assert.Equal(t, "2", doc.Blocks()[0].Attrs["level"])
	assert.Equal(t, MarkType("bold"), doc.Blocks()[1].Content[1].Marks[0].Type)
	assert.Len(t, doc.Blocks(), 2)
}

func TestAssignIDsReplacesDuplicates(t *testing.T) {
	a := &Node{ID: "same", Type: "paragraph"}
	b := &Node{ID: "same", Type: "paragraph"}
	doc := &Document{Root: &Node{Type: RootKind, Content: []*Node{a, b}}}

	assigned := doc.AssignIDs()
	assert.Equal(t, 2, assigned) // root plus the duplicate
	assert.Equal(t, "same", a.ID)
	assert.NotEqual(t, "same", b.ID)
	assert.NotEmpty(t, doc.Root.ID)
}

func TestResolve(t *testing.T) {
	first := NewNode("paragraph", nil, NewText("a"))
	second := NewNode("paragraph", nil, NewText("b"))
	doc := &Document{Root: NewNode(RootKind, nil, first, second)}

	n, err := doc.Resolve(Path{Indices: []int{1}, ID: second.ID})
	require.NoError(t, err)
	assert.Same(t, second, n)

	root, err := doc.Resolve(RootPath(doc))
	require.NoError(t, err)
	assert.Same(t, doc.Root, root)

	_, err = doc.Resolve(Path{Indices: []int{0}, ID: second.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = doc.Resolve(Path{Indices: []int{5}, ID: second.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = doc.Resolve(Path{Indices: []int{1}})
	var pe *PathError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, "identity")
}

func TestPathOf(t *testing.T) {
	text := NewText("deep")
	doc := &Document{Root: NewNode(RootKind, nil,
		NewNode("paragraph", nil),
		NewNode("bulletList", nil, NewNode("listItem", nil, NewNode("paragraph", nil, text))),
	)}

	p, ok := doc.PathOf(text.ID)
	require.True(t, ok)
	assert.Equal(t, []int{1, 0, 0, 0}, p.Indices)

	n, err := doc.Resolve(p)
	require.NoError(t, err)
	assert.Same(t, text, n)

	_, ok = doc.PathOf("missing")
	assert.False(t, ok)
}

func TestPathStringParse(t *testing.T) {
	p := Path{Indices: []int{0, 2}, ID: "abc"}
	assert.Equal(t, "/0/2@abc", p.String())

	back, err := ParsePath(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, back)

	root, err := ParsePath("/")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	_, err = ParsePath("/0/x")
	assert.Error(t, err)

	assert.Equal(t, []int{0}, p.Parent().Indices)
	assert.Equal(t, 2, p.Last())
}

func TestDump(t *testing.T) {
	doc := &Document{Root: NewNode(RootKind, nil,
		NewNode("heading", Attrs{"level": "2"}, NewText("Agenda", Mark{Type: "bold"})),
	)}
	out := Dump(doc.Root)
	assert.Contains(t, out, "doc")
	assert.Contains(t, out, "heading {level=2}")
	assert.Contains(t, out, `text "Agenda" [bold]`)
}
