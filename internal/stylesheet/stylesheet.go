// Package stylesheet holds the fixed print stylesheet that agenda markup is
// styled with. Converted markup carries only class names and data
// attributes; this sheet supplies every visual decision.
package stylesheet

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

//go:embed print.css
var source string

// Source returns the stylesheet text.
func Source() string {
	return source
}

// Sheet is a parsed stylesheet indexed by the class and data-attribute
// hooks its selectors use.
type Sheet struct {
	css     *css.Stylesheet
	classes map[string]bool
	dataSel map[string]bool
}

var classRe = regexp.MustCompile(`\.([A-Za-z_][A-Za-z0-9_-]*)`)
var dataRe = regexp.MustCompile(`\[(data-[a-z-]+)(?:="([^"]*)")?\]`)

// Parse reads CSS text into a Sheet.
func Parse(text string) (*Sheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse stylesheet: %w", err)
	}
	s := &Sheet{css: sheet, classes: make(map[string]bool), dataSel: make(map[string]bool)}
	s.index(sheet.Rules)
	return s, nil
}

func (s *Sheet) index(rules []*css.Rule) {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			s.index(r.Rules)
			continue
		}
		for _, sel := range r.Selectors {
			for _, m := range classRe.FindAllStringSubmatch(sel, -1) {
				s.classes[m[1]] = true
			}
			for _, m := range dataRe.FindAllStringSubmatch(sel, -1) {
				s.dataSel[m[1]] = true
				if m[2] != "" {
					s.dataSel[m[1]+"="+m[2]] = true
				}
			}
		}
	}
}

var loaded = sync.OnceValues(func() (*Sheet, error) {
	return Parse(source)
})

// Load returns the parsed embedded stylesheet.
func Load() (*Sheet, error) {
	return loaded()
}

// Classes returns every class name some selector refers to, sorted.
func (s *Sheet) Classes() []string {
	out := make([]string, 0, len(s.classes))
	for c := range s.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Covers reports whether some rule selects elements of the given class.
func (s *Sheet) Covers(class string) bool {
	return s.classes[class]
}

// CoversData reports whether some rule selects on the data attribute name,
// or on name="value" when value is non-empty.
func (s *Sheet) CoversData(name, value string) bool {
	if value == "" {
		return s.dataSel[name]
	}
	return s.dataSel[name+"="+value]
}

// RuleCount returns the number of top-level rules.
func (s *Sheet) RuleCount() int {
	return len(s.css.Rules)
}
