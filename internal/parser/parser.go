package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".json":     true,
	".md":       true,
	".markdown": true,
	".txt":      true,
	".docx":     true,
	".csv":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	return ForFileWith(schema.Default(), filename)
}

// ForFileWith is ForFile over an explicit registry.
func ForFileWith(reg *schema.Registry, filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return NewMarkupParser(reg), nil
	case ".json":
		return NewJSONParser(reg), nil
	case ".md", ".markdown":
		return NewMarkdownParser(reg), nil
	case ".txt":
		return &TextParser{}, nil
	case ".docx":
		return NewDOCXParser(reg), nil
	case ".csv":
		return &CSVParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
