package schema

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/dgallion1/agendagen/internal/doctree"
)

// Group classifies kinds for content models.
type Group int

const (
	GroupBlock Group = iota
	GroupInline
	GroupRoot
	GroupItem // legal only where a content model names the kind
)

func (g Group) String() string {
	switch g {
	case GroupBlock:
		return "block"
	case GroupInline:
		return "inline"
	case GroupRoot:
		return "root"
	case GroupItem:
		return "item"
	}
	return fmt.Sprintf("group(%d)", int(g))
}

// Shape is the overall form of a content model.
type Shape int

const (
	NoContent     Shape = iota // leaf
	InlineContent              // zero or more inline nodes
	BlockContent               // at least Min children, each from Allowed (any block when nil)
	FixedContent               // exactly one child per position, positional
)

func (s Shape) String() string {
	switch s {
	case NoContent:
		return "none"
	case InlineContent:
		return "inline"
	case BlockContent:
		return "blocks"
	case FixedContent:
		return "fixed"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ContentModel constrains the children of a kind.
type ContentModel struct {
	Shape     Shape
	Allowed   mapset.Set[doctree.Kind]
	Min       int
	Positions []mapset.Set[doctree.Kind]
}

func kinds(ks ...doctree.Kind) mapset.Set[doctree.Kind] {
	return mapset.NewSet(ks...)
}

func leaf() ContentModel { return ContentModel{Shape: NoContent} }

func inline() ContentModel { return ContentModel{Shape: InlineContent} }

func blocks(min int, allowed ...doctree.Kind) ContentModel {
	cm := ContentModel{Shape: BlockContent, Min: min}
	if len(allowed) > 0 {
		cm.Allowed = kinds(allowed...)
	}
	return cm
}

func fixed(positions ...mapset.Set[doctree.Kind]) ContentModel {
	return ContentModel{Shape: FixedContent, Positions: positions}
}

// ValidateChildren checks that children form legal content for a node of
// the given kind. Child kinds must be registered.
func (r *Registry) ValidateChildren(kind doctree.Kind, children []*doctree.Node) error {
	return r.validateChildren(kind, children, false)
}

// ValidatePartial is ValidateChildren without the minimum-count rule of
// one-or-more content models. Editing sessions may transiently hold an
// under-filled container (an empty list) after a removal; fixed positional
// models stay exact.
func (r *Registry) ValidatePartial(kind doctree.Kind, children []*doctree.Node) error {
	return r.validateChildren(kind, children, true)
}

func (r *Registry) validateChildren(kind doctree.Kind, children []*doctree.Node, partial bool) error {
	d, err := r.Lookup(kind)
	if err != nil {
		return err
	}
	cm := d.Content
	for i, c := range children {
		if c == nil {
			return &ContentModelError{Parent: kind, Index: i, Reason: "nil child"}
		}
		cd, err := r.Lookup(c.Type)
		if err != nil {
			return err
		}
		switch cm.Shape {
		case NoContent:
			return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: "kind allows no children"}
		case InlineContent:
			if cd.Group != GroupInline {
				return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: "only inline content allowed"}
			}
		case BlockContent:
			if cm.Allowed != nil {
				if !cm.Allowed.Contains(c.Type) {
					return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: fmt.Sprintf("allowed kinds are %v", sortedKinds(cm.Allowed))}
				}
			} else if cd.Group != GroupBlock {
				return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: "only block content allowed"}
			}
		case FixedContent:
			if i >= len(cm.Positions) {
				return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: fmt.Sprintf("exactly %d children required", len(cm.Positions))}
			}
			if !cm.Positions[i].Contains(c.Type) {
				return &ContentModelError{Parent: kind, Child: c.Type, Index: i, Reason: fmt.Sprintf("position %d requires one of %v", i, sortedKinds(cm.Positions[i]))}
			}
		}
	}
	switch cm.Shape {
	case BlockContent:
		if !partial && len(children) < cm.Min {
			return &ContentModelError{Parent: kind, Reason: fmt.Sprintf("at least %d children required, got %d", cm.Min, len(children))}
		}
	case FixedContent:
		if len(children) != len(cm.Positions) {
			return &ContentModelError{Parent: kind, Reason: fmt.Sprintf("exactly %d children required, got %d", len(cm.Positions), len(children))}
		}
	}
	return nil
}

// ValidateNode checks the subtree rooted at n: every kind registered, every
// content model satisfied, every attribute declared and valid, every mark known.
func (r *Registry) ValidateNode(n *doctree.Node) error {
	return r.validateNode(n, false)
}

// ValidateNodePartial is ValidateNode with the relaxed arity of ValidatePartial.
func (r *Registry) ValidateNodePartial(n *doctree.Node) error {
	return r.validateNode(n, true)
}

func (r *Registry) validateNode(n *doctree.Node, partial bool) error {
	d, err := r.Lookup(n.Type)
	if err != nil {
		return err
	}
	if n.IsText() {
		if len(n.Content) > 0 {
			return &ContentModelError{Parent: n.Type, Reason: "text nodes hold no children"}
		}
		if strings.ContainsRune(n.Text, 0) {
			return &ContentModelError{Parent: n.Type, Reason: "text contains NUL"}
		}
		return r.CheckMarks(n.Marks)
	}
	if n.Text != "" || len(n.Marks) > 0 {
		return &ContentModelError{Parent: n.Type, Reason: "only text nodes carry text or marks"}
	}
	if err := checkAttrs(n.Type, d.Attrs, n.Attrs); err != nil {
		return err
	}
	if err := r.validateChildren(n.Type, n.Content, partial); err != nil {
		return err
	}
	for _, c := range n.Content {
		if err := r.validateNode(c, partial); err != nil {
			return err
		}
	}
	return nil
}

// Normalize rewrites d in place into the form markup parsing yields:
// element-text attributes are trimmed and NUL is removed from text. It is
// meant for freshly decoded documents that are not yet shared.
func (r *Registry) Normalize(d *doctree.Document) {
	if d == nil || d.Root == nil {
		return
	}
	doctree.Walk(d.Root, func(n *doctree.Node, _ []int) bool {
		if n.IsText() {
			n.Text = strings.ReplaceAll(n.Text, "\x00", "")
			return true
		}
		if desc, err := r.Lookup(n.Type); err == nil && len(n.Attrs) > 0 {
			normalizeAttrs(desc.Attrs, n.Attrs)
		}
		return true
	})
}

// ValidateDocument validates the whole tree of d. With partial set,
// one-or-more containers may be under-filled.
func (r *Registry) ValidateDocument(d *doctree.Document, partial bool) error {
	if d == nil || d.Root == nil {
		return &ContentModelError{Parent: doctree.RootKind, Reason: "document has no root"}
	}
	if d.Root.Type != doctree.RootKind {
		return &ContentModelError{Parent: d.Root.Type, Reason: "document root must be doc"}
	}
	return r.validateNode(d.Root, partial)
}
