package doctree

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Kind is the type tag of a node. The set of valid kinds lives in the schema registry.
type Kind string

// MarkType is the type tag of an inline mark.
type MarkType string

const (
	// RootKind is the kind of every document root.
	RootKind Kind = "doc"
	// TextKind is the only kind that carries text and marks.
	TextKind Kind = "text"
)

// Node is one element of a document tree. Text nodes carry Text and Marks;
// every other kind carries Attrs and/or Content.
type Node struct {
	ID      string  `json:"id,omitempty"`
	Type    Kind    `json:"type"`
	Attrs   Attrs   `json:"attrs,omitempty"`
	Content []*Node `json:"content,omitempty"`
	Text    string  `json:"text,omitempty"`
	Marks   []Mark  `json:"marks,omitempty"`
}

// Mark is inline formatting applied to a text node.
type Mark struct {
	Type  MarkType `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

// Attrs maps attribute names to their external (string) representation.
type Attrs map[string]string

// UnmarshalJSON accepts scalar JSON values and stringifies them. Editing
// surfaces send heading levels as numbers; nulls mean "unset".
func (a *Attrs) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode attrs: %w", err)
	}
	if raw == nil {
		*a = nil
		return nil
	}
	out := make(Attrs, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return fmt.Errorf("decode attr %s: %w", k, err)
			}
			out[k] = string(b)
		}
	}
	*a = out
	return nil
}

// Clone returns a copy of the attribute map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// NewID returns a fresh node identity.
func NewID() string {
	return uuid.NewString()
}

// NewText creates a text node with the given marks.
func NewText(text string, marks ...Mark) *Node {
	return &Node{ID: NewID(), Type: TextKind, Text: text, Marks: marks}
}

// NewNode creates a node of the given kind.
func NewNode(kind Kind, attrs Attrs, content ...*Node) *Node {
	return &Node{ID: NewID(), Type: kind, Attrs: attrs, Content: content}
}

// IsText reports whether n is a text run.
func (n *Node) IsText() bool {
	return n.Type == TextKind
}

// Attr returns the raw attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Clone returns a deep copy of the subtree rooted at n, identities included.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:    n.ID,
		Type:  n.Type,
		Attrs: n.Attrs.Clone(),
		Text:  n.Text,
	}
	if n.Marks != nil {
		out.Marks = make([]Mark, len(n.Marks))
		for i, m := range n.Marks {
			out.Marks[i] = Mark{Type: m.Type, Attrs: m.Attrs.Clone()}
		}
	}
	if n.Content != nil {
		out.Content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}

// TextContent concatenates the text of every text node below n, in order.
func (n *Node) TextContent() string {
	var buf []byte
	Walk(n, func(c *Node, _ []int) bool {
		if c.IsText() {
			buf = append(buf, c.Text...)
		}
		return true
	})
	return string(buf)
}

// Walk visits n and its descendants depth-first, passing each node's index
// path relative to n. Returning false skips the node's children.
func Walk(n *Node, fn func(*Node, []int) bool) {
	var walk func(*Node, []int)
	walk = func(c *Node, path []int) {
		if c == nil || !fn(c, path) {
			return
		}
		for i, child := range c.Content {
			next := make([]int, len(path)+1)
			copy(next, path)
			next[len(path)] = i
			walk(child, next)
		}
	}
	walk(n, nil)
}
