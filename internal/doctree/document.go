package doctree

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is one agenda document: a root node of kind "doc" whose children
// are the top-level blocks. A Document value is treated as immutable once
// published; mutation primitives return new documents.
type Document struct {
	Root *Node
}

// New returns an empty document.
func New() *Document {
	return &Document{Root: &Node{ID: NewID(), Type: RootKind}}
}

// FromRoot wraps an existing root node.
func FromRoot(root *Node) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("document has no root")
	}
	if root.Type != RootKind {
		return nil, fmt.Errorf("document root has type %q, expected %q", root.Type, RootKind)
	}
	return &Document{Root: root}, nil
}

// Decode reads a JSON document in the editing surface's interchange format.
func Decode(r io.Reader) (*Document, error) {
	var root Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return FromRoot(&root)
}

// Encode writes d as JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Root)
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Root)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return err
	}
	doc, err := FromRoot(&root)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	return &Document{Root: d.Root.Clone()}
}

// Blocks returns the top-level block nodes.
func (d *Document) Blocks() []*Node {
	return d.Root.Content
}

// AssignIDs gives every node without an identity a fresh one and returns
// the number of identities assigned. Duplicate identities are replaced too,
// so that every path resolves to exactly one node.
func (d *Document) AssignIDs() int {
	seen := make(map[string]bool)
	assigned := 0
	Walk(d.Root, func(n *Node, _ []int) bool {
		if n.ID == "" || seen[n.ID] {
			n.ID = NewID()
			assigned++
		}
		seen[n.ID] = true
		return true
	})
	return assigned
}
