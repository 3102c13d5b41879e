package parser

import (
	"fmt"
	"io"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// JSONParser reads documents in the editing surface's JSON interchange format.
// Documents are normalized to the form markup parsing yields before they
// are validated.
type JSONParser struct {
	reg *schema.Registry
}

// NewJSONParser returns a parser validating against reg.
func NewJSONParser(reg *schema.Registry) *JSONParser {
	return &JSONParser{reg: reg}
}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	doc, err := doctree.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	doc.AssignIDs()
	p.reg.Normalize(doc)
	if err := p.reg.ValidateDocument(doc, true); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}
