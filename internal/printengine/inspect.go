package printengine

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Info describes a rendered PDF.
type Info struct {
	Pages int `json:"pages"`
}

// Inspect reads the page count of a PDF artifact.
func Inspect(b []byte) (Info, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return Info{}, fmt.Errorf("read pdf: %w", err)
	}
	return Info{Pages: reader.NumPage()}, nil
}

// PlainText extracts the text of every page, pages separated by a form feed.
// Pages whose content cannot be decoded are left empty.
func PlainText(b []byte) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if i > 1 {
			buf.WriteString("\f")
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}
