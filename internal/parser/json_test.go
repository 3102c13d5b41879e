package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/agendagen/internal/schema"
)

func TestJSONParser_Valid(t *testing.T) {
	input := `{"type":"doc","content":[
		{"type":"noticeBox","attrs":{"title":"Special Notice"},"content":[
			{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}
		]},
		{"type":"heading","attrs":{"level":3},"content":[{"type":"text","text":"Item"}]}
	]}`
	doc, err := NewJSONParser(schema.Default()).Parse(strings.NewReader(input), "agenda.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Blocks()) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(doc.Blocks()))
	}
	if doc.Blocks()[1].Attrs["level"] != "3" {
		t.Errorf("expected numeric level to decode as %q, got %q", "3", doc.Blocks()[1].Attrs["level"])
	}
	if doc.Root.ID == "" || doc.Blocks()[0].ID == "" {
		t.Errorf("expected identities to be assigned")
	}
}

func TestJSONParser_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown kind", `{"type":"doc","content":[{"type":"signatureLine"}]}`, schema.ErrUnknownNodeKind},
		{"unknown attribute", `{"type":"doc","content":[{"type":"noticeBox","attrs":{"colour":"red"},"content":[{"type":"paragraph"}]}]}`, schema.ErrUnknownAttribute},
		{"unknown mark", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"blink"}]}]}]}`, schema.ErrUnknownMarkType},
		{"block in paragraph", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"paragraph"}]}]}`, schema.ErrContentModel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewJSONParser(schema.Default()).Parse(strings.NewReader(tc.input), "bad.json")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"agenda.html", false},
		{"agenda.HTM", false},
		{"agenda.json", false},
		{"agenda.md", false},
		{"notes.txt", false},
		{"minutes.docx", false},
		{"items.csv", false},
		{"agenda.pdf", true},
		{"agenda", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q): wantErr=%v, got %v", tt.name, tt.wantErr, err)
		}
		if IsSupportedExtension(tt.name) == tt.wantErr {
			t.Errorf("IsSupportedExtension(%q) disagrees with ForFile", tt.name)
		}
	}
}
