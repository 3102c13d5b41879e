package schema

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/agendagen/internal/doctree"
)

// Placement says where an attribute lives in the produced markup, so the
// parser can recover it.
type Placement int

const (
	DataAttribute Placement = iota // Key is a data-* attribute name
	HTMLAttribute                  // Key is a plain attribute name
	ClassSuffix                    // Key is a class prefix; the value is the rest of the class
	ElementText                    // the value is the text of the element (or of In)
	TagLevel                       // the value is the digit of an h1..h6 tag
	StyleProperty                  // Key is a property of the inline style attribute
)

// Markup locates an attribute value in produced markup. In, when set, is a
// selector for the descendant that carries the value.
type Markup struct {
	Place Placement
	Key   string
	In    string
}

// AttrSpec is one entry of a kind's attribute schema.
type AttrSpec struct {
	Name    string
	Default string
	// Values is the closed set of accepted values, when non-empty.
	Values []string
	// Check validates free-form values.
	Check  func(string) error
	Markup Markup
}

// Parse derives the attribute's value from its external representation.
// Absent or empty input yields the default. Element text is trimmed, since
// markup parsing cannot recover surrounding whitespace.
func (a AttrSpec) Parse(raw string, present bool) (string, error) {
	if n := a.normalize(raw); n != "" {
		raw = n
	}
	if !present || raw == "" {
		return a.Default, nil
	}
	if err := a.validate(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// Serialize returns the external representation of v, and false when the
// attribute should be omitted because v equals the default.
func (a AttrSpec) Serialize(v string) (string, bool) {
	if v == a.Default || v == "" {
		return "", false
	}
	return v, true
}

func (a AttrSpec) normalize(v string) string {
	if a.Markup.Place == ElementText {
		return strings.TrimSpace(v)
	}
	return v
}

func (a AttrSpec) validate(v string) error {
	if len(a.Values) > 0 && !slices.Contains(a.Values, v) {
		return fmt.Errorf("%w: %q not one of %v", ErrInvalidAttribute, v, a.Values)
	}
	if a.Check != nil {
		if err := a.Check(v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAttribute, err)
		}
	}
	return nil
}

func findAttr(specs []AttrSpec, name string) (AttrSpec, bool) {
	for _, a := range specs {
		if a.Name == name {
			return a, true
		}
	}
	return AttrSpec{}, false
}

// resolveAttrs applies defaults to every declared attribute. Undeclared
// names are dropped.
func resolveAttrs(specs []AttrSpec, attrs doctree.Attrs) doctree.Attrs {
	out := make(doctree.Attrs, len(specs))
	for _, a := range specs {
		v, ok := attrs[a.Name]
		v = a.normalize(v)
		if !ok || v == "" {
			v = a.Default
		}
		out[a.Name] = v
	}
	return out
}

// checkAttrs validates attrs against specs.
func checkAttrs(kind doctree.Kind, specs []AttrSpec, attrs doctree.Attrs) error {
	for name, v := range attrs {
		spec, ok := findAttr(specs, name)
		if !ok {
			return &AttributeError{Kind: kind, Name: name, Value: v, Err: ErrUnknownAttribute}
		}
		if _, err := spec.Parse(v, true); err != nil {
			return &AttributeError{Kind: kind, Name: name, Value: v, Err: err}
		}
		if v != "" && spec.normalize(v) != v {
			return &AttributeError{Kind: kind, Name: name, Value: v, Err: fmt.Errorf("%w: surrounding whitespace", ErrInvalidAttribute)}
		}
	}
	return nil
}

// normalizeAttrs trims element-text values in place.
func normalizeAttrs(specs []AttrSpec, attrs doctree.Attrs) {
	for name, v := range attrs {
		if spec, ok := findAttr(specs, name); ok {
			if n := spec.normalize(v); n != "" {
				attrs[name] = n
			}
		}
	}
}

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\))$`)

func checkColor(v string) error {
	if !colorRe.MatchString(v) {
		return fmt.Errorf("not a color: %q", v)
	}
	return nil
}

func checkPositiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("not a positive integer: %q", v)
	}
	return nil
}

func checkNonBlank(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("blank value")
	}
	return nil
}
