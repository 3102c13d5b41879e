// Package render converts document trees into print-ready markup.
//
// Conversion is pure: the same tree always yields the same string, and the
// converter keeps no state between calls. Kinds, attribute decorations and
// mark wrappers all come from the schema registry.
package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Converter turns documents into markup.
type Converter struct {
	reg *schema.Registry
}

// New returns a converter over reg. A nil registry means schema.Default().
func New(reg *schema.Registry) *Converter {
	if reg == nil {
		reg = schema.Default()
	}
	return &Converter{reg: reg}
}

// Convert returns the markup of doc. On error no partial output is returned.
func (c *Converter) Convert(doc *doctree.Document) (string, error) {
	if doc == nil || doc.Root == nil {
		return "", nil
	}
	return c.ConvertNode(doc.Root)
}

// ConvertNode returns the markup of the subtree rooted at n.
func (c *Converter) ConvertNode(n *doctree.Node) (string, error) {
	var sb strings.Builder
	if err := c.write(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *Converter) write(sb *strings.Builder, n *doctree.Node) error {
	if n == nil {
		return nil
	}
	if n.IsText() {
		return c.writeText(sb, n)
	}

	d, err := c.reg.Lookup(n.Type)
	if err != nil {
		if len(n.Content) == 0 {
			return fmt.Errorf("convert: %w", err)
		}
		// Unknown containers are transparent: their children still print.
		for _, child := range n.Content {
			if err := c.write(sb, child); err != nil {
				return err
			}
		}
		return nil
	}

	var inner strings.Builder
	for _, child := range n.Content {
		if err := c.write(&inner, child); err != nil {
			return err
		}
	}
	attrs, err := c.reg.ResolveAttrs(n.Type, n.Attrs)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	sb.WriteString(d.Produce(n, attrs, inner.String()))
	return nil
}

func (c *Converter) writeText(sb *strings.Builder, n *doctree.Node) error {
	if n.Text == "" {
		return nil
	}
	marks, err := c.reg.Canonical(n.Marks)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	out := schema.Escape(n.Text)
	for _, m := range marks {
		spec, err := c.reg.LookupMark(m.Type)
		if err != nil {
			return fmt.Errorf("convert: %w", err)
		}
		out = spec.Wrap(spec.ResolveAttrs(m.Attrs), out)
	}
	sb.WriteString(out)
	return nil
}

// Convert renders doc with the default registry.
func Convert(doc *doctree.Document) (string, error) {
	return New(nil).Convert(doc)
}
