package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/agendagen/internal/schema"
)

func TestTextParser(t *testing.T) {
	input := "Regular Meeting\r\nCivic Center\n\n\n   \nAgendas are posted online.\n"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "agenda.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := doc.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(blocks))
	}
	first := blocks[0].Content
	if len(first) != 3 || first[0].Text != "Regular Meeting" || first[1].Type != schema.HardBreak || first[2].Text != "Civic Center" {
		t.Errorf("unexpected first paragraph: %+v", first)
	}
	if blocks[1].TextContent() != "Agendas are posted online." {
		t.Errorf("unexpected second paragraph: %q", blocks[1].TextContent())
	}
	if err := schema.Default().ValidateDocument(doc, false); err != nil {
		t.Errorf("expected valid document, got %v", err)
	}
}

func TestTextParser_Empty(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader("\n\n"), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks()) != 0 {
		t.Errorf("expected no blocks, got %d", len(doc.Blocks()))
	}
}
