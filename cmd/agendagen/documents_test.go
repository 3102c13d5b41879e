package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/printengine/enginetest"
)

const agendaJSON = `{"type":"doc","content":[
  {"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Call to Order"}]},
  {"type":"paragraph","content":[{"type":"text","text":"Roll call of members."}]}
]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertJSON(t *testing.T) {
	out, err := run(t, "convert", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "<h2>Call to Order</h2><p>Roll call of members.</p>\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestConvertMarkupRoundTrips(t *testing.T) {
	markup := `<h2>Call to Order</h2><p class="text-center"><strong>Roll call</strong></p>`
	out, err := run(t, "convert", writeFile(t, "agenda.html", markup))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.TrimSpace(out) != markup {
		t.Errorf("expected %q, got %q", markup, out)
	}
}

func TestConvertImports(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"agenda.md", "## Call to Order\n\nRoll **call**\n", "<h2>Call to Order</h2><p>Roll <strong>call</strong></p>"},
		{"agenda.txt", "Regular Meeting\nCivic Center\n", "<p>Regular Meeting<br>Civic Center</p>"},
		{"items.csv", "Item\nAdjournment\n", "<ol><li><p><strong>Adjournment</strong></p></li></ol>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "convert", writeFile(t, tt.name, tt.body))
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, out)
			}
		})
	}
}

func TestOutline(t *testing.T) {
	out, err := run(t, "outline", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	want := "1. Call to Order (7 words)\n1 sections, 7 words\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestParseMarkup(t *testing.T) {
	out, err := run(t, "parse", writeFile(t, "agenda.html", `<h3>Consent Calendar</h3>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{`"type": "heading"`, `"level": "3"`, `"text": "Consent Calendar"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestPage(t *testing.T) {
	out, err := run(t, "page", "--title", "June", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.Contains(out, "<title>June</title>") {
		t.Errorf("expected standalone page, got %q", out)
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "ok (2 blocks, 5 nodes)") {
		t.Errorf("unexpected output %q", out)
	}

	emptyList := `{"type":"doc","content":[{"type":"orderedList"}]}`
	if _, err := run(t, "validate", writeFile(t, "empty.json", emptyList)); err == nil {
		t.Error("expected an empty list to fail strict validation")
	}

	if _, err := run(t, "validate", writeFile(t, "agenda.txt", "hello")); err == nil {
		t.Error("expected unsupported extension to fail")
	}
}

func TestTree(t *testing.T) {
	out, err := run(t, "tree", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "heading") || !strings.Contains(out, "Call to Order") {
		t.Errorf("unexpected tree %q", out)
	}
}

func TestSeed(t *testing.T) {
	out, err := run(t, "seed")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if out != "blank\ncover\nformal\n" {
		t.Errorf("unexpected seed list %q", out)
	}

	out, err = run(t, "seed", "formal")
	if err != nil {
		t.Fatalf("seed formal: %v", err)
	}
	if !strings.Contains(out, "City Council Agenda") {
		t.Errorf("expected formal seed, got %q", out)
	}

	if _, err := run(t, "seed", "missing"); err == nil {
		t.Error("expected unknown seed to fail")
	}
}

func TestExportMarkdownToStdout(t *testing.T) {
	out, err := run(t, "export", "-f", "md", "-o", "-", "--engine=", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "## Call to Order") {
		t.Errorf("expected markdown heading, got %q", out)
	}
}

func TestExportDOCXToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "june.docx")
	out, err := run(t, "export", "-f", "docx", "-o", dest, "--engine=", writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("PK")) {
		t.Error("expected a zip container")
	}
	if !strings.Contains(out, "wrote "+dest) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExportPDF(t *testing.T) {
	engine := enginetest.New(t)
	dest := filepath.Join(t.TempDir(), "june.pdf")
	out, err := run(t, "export", "-f", "pdf", "-o", dest, "--engine", engine.URL, writeFile(t, "agenda.json", agendaJSON))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "2 pages") {
		t.Errorf("expected page count in %q", out)
	}
	reqs := engine.Requests()
	if len(reqs) != 1 || reqs[0].Filename != "agenda.pdf" {
		t.Fatalf("expected one render of agenda.pdf, got %+v", reqs)
	}
}

func TestExportPDFWithoutEngine(t *testing.T) {
	_, err := run(t, "export", "-f", "pdf", "-o", "-", "--engine=", writeFile(t, "agenda.json", agendaJSON))
	if !errors.Is(err, export.ErrNoEngine) {
		t.Fatalf("expected ErrNoEngine, got %v", err)
	}
}
