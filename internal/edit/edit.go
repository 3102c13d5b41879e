// Package edit implements the structural mutation primitives of the
// document tree.
//
// Every primitive takes the current document and returns a new one; the
// input is never modified, so a failed call leaves the caller's tree exactly
// as it was. Only the nodes on the path from the root to the edited node are
// copied, the rest of the tree is shared.
package edit

import (
	"fmt"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Editor applies mutations checked against a registry.
type Editor struct {
	reg *schema.Registry
}

// New returns an editor over reg. A nil registry means schema.Default().
func New(reg *schema.Registry) *Editor {
	if reg == nil {
		reg = schema.Default()
	}
	return &Editor{reg: reg}
}

// Registry returns the registry the editor checks against.
func (e *Editor) Registry() *schema.Registry {
	return e.reg
}

// InsertNode creates a node of kind with the given attributes and children
// and inserts it as child index of the node at parent. An index of -1
// appends. It returns the new document and the path of the inserted node.
func (e *Editor) InsertNode(doc *doctree.Document, kind doctree.Kind, parent doctree.Path, index int, attrs doctree.Attrs, children []*doctree.Node) (*doctree.Document, doctree.Path, error) {
	if kind == doctree.TextKind {
		return nil, doctree.Path{}, &schema.ContentModelError{Parent: kind, Reason: "use InsertText for text runs"}
	}
	parsed, err := e.reg.ParseAttrs(kind, attrs)
	if err != nil {
		return nil, doctree.Path{}, err
	}
	n := doctree.NewNode(kind, parsed, freshCopies(children)...)
	return e.insert(doc, n, parent, index)
}

// InsertText inserts a text run with marks into an inline container.
func (e *Editor) InsertText(doc *doctree.Document, parent doctree.Path, index int, text string, marks []doctree.Mark) (*doctree.Document, doctree.Path, error) {
	canon, err := e.reg.Canonical(marks)
	if err != nil {
		return nil, doctree.Path{}, err
	}
	return e.insert(doc, doctree.NewText(text, canon...), parent, index)
}

// InsertSubtree inserts an existing subtree, such as one taken from a seed
// or a parsed fragment. The subtree is copied and given fresh identities.
func (e *Editor) InsertSubtree(doc *doctree.Document, n *doctree.Node, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
	if n == nil {
		return nil, doctree.Path{}, fmt.Errorf("insert: nil node")
	}
	return e.insert(doc, freshCopies([]*doctree.Node{n})[0], parent, index)
}

func (e *Editor) insert(doc *doctree.Document, n *doctree.Node, parent doctree.Path, index int) (*doctree.Document, doctree.Path, error) {
	target, err := resolveParent(doc, parent)
	if err != nil {
		return nil, doctree.Path{}, err
	}
	if err := e.reg.ValidateNode(n); err != nil {
		return nil, doctree.Path{}, err
	}

	if index == -1 {
		index = len(target.Content)
	}
	if index < 0 || index > len(target.Content) {
		return nil, doctree.Path{}, &doctree.PathError{Path: parent, Reason: fmt.Sprintf("insert index %d out of range [0, %d]", index, len(target.Content))}
	}
	children := make([]*doctree.Node, 0, len(target.Content)+1)
	children = append(children, target.Content[:index]...)
	children = append(children, n)
	children = append(children, target.Content[index:]...)
	if err := e.reg.ValidatePartial(target.Type, children); err != nil {
		return nil, doctree.Path{}, err
	}

	root := rewrite(doc.Root, parent.Indices, func(cp *doctree.Node) {
		cp.Content = children
	})
	return &doctree.Document{Root: root}, parent.Child(index, n.ID), nil
}

// UpdateAttributes merges attrs into the attributes of the node at path.
// An empty value resets the attribute to its default.
func (e *Editor) UpdateAttributes(doc *doctree.Document, path doctree.Path, attrs doctree.Attrs) (*doctree.Document, error) {
	n, err := doc.Resolve(path)
	if err != nil {
		return nil, err
	}
	d, err := e.reg.Lookup(n.Type)
	if err != nil {
		return nil, err
	}
	merged := n.Attrs.Clone()
	if merged == nil {
		merged = make(doctree.Attrs)
	}
	for name, v := range attrs {
		spec, ok := d.Attr(name)
		if !ok {
			return nil, &schema.AttributeError{Kind: n.Type, Name: name, Value: v, Err: schema.ErrUnknownAttribute}
		}
		parsed, err := spec.Parse(v, v != "")
		if err != nil {
			return nil, &schema.AttributeError{Kind: n.Type, Name: name, Value: v, Err: err}
		}
		if _, keep := spec.Serialize(parsed); keep {
			merged[name] = parsed
		} else {
			delete(merged, name)
		}
	}
	if len(merged) == 0 {
		merged = nil
	}

	root := rewrite(doc.Root, path.Indices, func(cp *doctree.Node) {
		cp.Attrs = merged
	})
	return &doctree.Document{Root: root}, nil
}

// RemoveNode removes the node at path. A stale path fails with
// doctree.ErrNotFound and removes nothing.
func (e *Editor) RemoveNode(doc *doctree.Document, path doctree.Path) (*doctree.Document, error) {
	if path.IsRoot() {
		return nil, &schema.ContentModelError{Parent: doctree.RootKind, Reason: "the document root cannot be removed"}
	}
	if _, err := doc.Resolve(path); err != nil {
		return nil, err
	}
	parentIdx := path.Parent().Indices
	parent, err := doc.ResolvePosition(parentIdx)
	if err != nil {
		return nil, err
	}
	i := path.Last()
	children := make([]*doctree.Node, 0, len(parent.Content)-1)
	children = append(children, parent.Content[:i]...)
	children = append(children, parent.Content[i+1:]...)
	if err := e.reg.ValidatePartial(parent.Type, children); err != nil {
		return nil, err
	}

	root := rewrite(doc.Root, parentIdx, func(cp *doctree.Node) {
		if len(children) == 0 {
			children = nil
		}
		cp.Content = children
	})
	return &doctree.Document{Root: root}, nil
}

// SetMarks replaces the marks of the text node at path. Marks are stored in
// canonical nesting order; a type given twice keeps its last occurrence.
func (e *Editor) SetMarks(doc *doctree.Document, path doctree.Path, marks []doctree.Mark) (*doctree.Document, error) {
	n, err := doc.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !n.IsText() {
		return nil, &schema.ContentModelError{Parent: n.Type, Reason: "marks apply to text nodes only"}
	}
	canon, err := e.reg.Canonical(marks)
	if err != nil {
		return nil, err
	}
	if err := e.reg.CheckMarks(canon); err != nil {
		return nil, err
	}
	for i := range canon {
		canon[i].Attrs = canon[i].Attrs.Clone()
	}

	root := rewrite(doc.Root, path.Indices, func(cp *doctree.Node) {
		cp.Marks = canon
	})
	return &doctree.Document{Root: root}, nil
}

// SetText replaces the text of the text node at path, keeping its marks.
func (e *Editor) SetText(doc *doctree.Document, path doctree.Path, text string) (*doctree.Document, error) {
	n, err := doc.Resolve(path)
	if err != nil {
		return nil, err
	}
	if !n.IsText() {
		return nil, &schema.ContentModelError{Parent: n.Type, Reason: "only text nodes carry text"}
	}
	if err := e.reg.ValidateNode(doctree.NewText(text, n.Marks...)); err != nil {
		return nil, err
	}
	root := rewrite(doc.Root, path.Indices, func(cp *doctree.Node) {
		cp.Text = text
	})
	return &doctree.Document{Root: root}, nil
}

func resolveParent(doc *doctree.Document, p doctree.Path) (*doctree.Node, error) {
	if p.ID != "" || p.IsRoot() {
		return doc.Resolve(p)
	}
	return doc.ResolvePosition(p.Indices)
}

// rewrite copies the spine from root to the node at indices, applies fn to
// the copy of that node, and returns the new root. Indices must resolve.
func rewrite(n *doctree.Node, indices []int, fn func(*doctree.Node)) *doctree.Node {
	cp := shallow(n)
	if len(indices) == 0 {
		fn(cp)
		return cp
	}
	i := indices[0]
	cp.Content[i] = rewrite(n.Content[i], indices[1:], fn)
	return cp
}

func shallow(n *doctree.Node) *doctree.Node {
	cp := *n
	if n.Content != nil {
		cp.Content = append([]*doctree.Node(nil), n.Content...)
	}
	if n.Marks != nil {
		cp.Marks = append([]doctree.Mark(nil), n.Marks...)
	}
	cp.Attrs = n.Attrs.Clone()
	return &cp
}

// freshCopies deep-copies nodes and gives every copied node a new identity,
// so inserted content never aliases nodes already in a document.
func freshCopies(nodes []*doctree.Node) []*doctree.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*doctree.Node, len(nodes))
	for i, n := range nodes {
		cp := n.Clone()
		doctree.Walk(cp, func(c *doctree.Node, _ []int) bool {
			c.ID = doctree.NewID()
			return true
		})
		out[i] = cp
	}
	return out
}
