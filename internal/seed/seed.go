// Package seed provides starting documents for new agendas.
package seed

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/schema"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// ErrUnknown is returned for seed names without a fixture.
var ErrUnknown = errors.New("unknown seed")

// Names lists the available seeds.
func Names() []string {
	entries, err := fs.ReadDir(fixtures, "fixtures")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// Raw returns the JSON of a seed.
func Raw(name string) ([]byte, error) {
	b, err := fixtures.ReadFile(path.Join("fixtures", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return b, nil
}

// Load returns a fresh copy of the named seed, validated against reg and
// with new node identities.
func Load(reg *schema.Registry, name string) (*doctree.Document, error) {
	b, err := Raw(name)
	if err != nil {
		return nil, err
	}
	doc, err := doctree.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", name, err)
	}
	doc.AssignIDs()
	if err := reg.ValidateDocument(doc, false); err != nil {
		return nil, fmt.Errorf("seed %s: %w", name, err)
	}
	return doc, nil
}
