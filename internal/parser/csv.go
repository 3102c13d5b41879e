package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// CSVParser imports agenda items from a spreadsheet export. The first row
// names the columns; each further row becomes one numbered item. The item
// column is "item" or "title" (else the first column); "description" and
// "presenter" columns are optional.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if len(records) < 2 {
		return doctree.New(), nil
	}

	cols := csvColumns(records[0])
	var items []*doctree.Node
	for _, row := range records[1:] {
		title := cell(row, cols.item)
		if title == "" {
			continue
		}
		body := []*doctree.Node{
			doctree.NewNode(schema.Paragraph, nil, doctree.NewText(title, doctree.Mark{Type: schema.Bold})),
		}
		if desc := cell(row, cols.description); desc != "" {
			body = append(body, doctree.NewNode(schema.Paragraph, nil, doctree.NewText(desc)))
		}
		if who := cell(row, cols.presenter); who != "" {
			body = append(body, doctree.NewNode(schema.StyledParagraph, doctree.Attrs{"variant": "fine-print"}, doctree.NewText("Presenter: "+who)))
		}
		items = append(items, doctree.NewNode(schema.ListItem, nil, body...))
	}
	if len(items) == 0 {
		return doctree.New(), nil
	}
	return &doctree.Document{Root: doctree.NewNode(doctree.RootKind, nil, doctree.NewNode(schema.OrderedList, nil, items...))}, nil
}

type columns struct {
	item, description, presenter int
}

func csvColumns(header []string) columns {
	cols := columns{item: -1, description: -1, presenter: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "item", "title":
			if cols.item < 0 {
				cols.item = i
			}
		case "description", "details":
			cols.description = i
		case "presenter", "speaker":
			cols.presenter = i
		}
	}
	if cols.item < 0 {
		cols.item = 0
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(row[i], "\x00", ""))
}
