package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// TextParser imports plain text. Blank lines separate paragraphs; line
// breaks inside a paragraph are kept as hard breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		blocks  []*doctree.Node
		current []*doctree.Node
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, doctree.NewNode(schema.Paragraph, nil, current...))
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(strings.ReplaceAll(scanner.Text(), "\x00", ""), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(current) > 0 {
			current = append(current, doctree.NewNode(schema.HardBreak, nil))
		}
		current = append(current, doctree.NewText(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, blocks...)}, nil
}
