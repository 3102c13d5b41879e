package schema

import (
	"sort"

	"github.com/dgallion1/agendagen/internal/doctree"
)

const (
	Bold      doctree.MarkType = "bold"
	Italic    doctree.MarkType = "italic"
	Underline doctree.MarkType = "underline"
	Strike    doctree.MarkType = "strike"
	Code      doctree.MarkType = "code"
	Link      doctree.MarkType = "link"
	TextStyle doctree.MarkType = "textStyle"
)

// WrapFunc wraps already-produced inner markup in a mark's element.
type WrapFunc func(attrs doctree.Attrs, inner string) string

// MarkSpec describes one inline mark type.
type MarkSpec struct {
	Type doctree.MarkType
	// Rank fixes nesting: lower ranks wrap closer to the text.
	Rank  int
	Attrs []AttrSpec
	Wrap  WrapFunc
	// Match is the selector recognizing the mark's element on parse-back.
	Match string
}

func tagWrap(tag string) WrapFunc {
	return func(_ doctree.Attrs, inner string) string {
		return element(tag, nil, inner)
	}
}

func defaultMarks() []MarkSpec {
	return []MarkSpec{
		{Type: Code, Rank: 0, Wrap: tagWrap("code"), Match: "code"},
		{Type: Bold, Rank: 1, Wrap: tagWrap("strong"), Match: "strong, b"},
		{Type: Italic, Rank: 2, Wrap: tagWrap("em"), Match: "em, i"},
		{Type: Underline, Rank: 3, Wrap: tagWrap("u"), Match: "u"},
		{Type: Strike, Rank: 4, Wrap: tagWrap("s"), Match: "s, strike, del"},
		{
			Type: TextStyle,
			Rank: 5,
			Attrs: []AttrSpec{
				{Name: "color", Check: checkColor, Markup: Markup{Place: StyleProperty, Key: "color"}},
			},
			Wrap: func(attrs doctree.Attrs, inner string) string {
				if attrs["color"] == "" {
					return inner
				}
				return element("span", []attr{{"style", "color: " + attrs["color"]}}, inner)
			},
			Match: "span[style]",
		},
		{
			Type: Link,
			Rank: 6,
			Attrs: []AttrSpec{
				{Name: "href", Default: "#", Markup: Markup{Place: HTMLAttribute, Key: "href"}},
				{Name: "target", Values: []string{"_blank", "_self", "_parent", "_top"}, Markup: Markup{Place: HTMLAttribute, Key: "target"}},
			},
			Wrap: func(attrs doctree.Attrs, inner string) string {
				as := []attr{{"href", attrs["href"]}}
				if attrs["target"] != "" {
					as = append(as, attr{"target", attrs["target"]})
				}
				return element("a", as, inner)
			},
			Match: "a",
		},
	}
}

// ResolveAttrs applies the mark's attribute defaults.
func (m *MarkSpec) ResolveAttrs(attrs doctree.Attrs) doctree.Attrs {
	return resolveAttrs(m.Attrs, attrs)
}

// Canonical returns the mark set in nesting order, innermost first. When a
// type occurs more than once the last occurrence wins. Unknown types are an error.
func (r *Registry) Canonical(marks []doctree.Mark) ([]doctree.Mark, error) {
	if len(marks) == 0 {
		return nil, nil
	}
	byType := make(map[doctree.MarkType]doctree.Mark, len(marks))
	for _, m := range marks {
		if _, err := r.LookupMark(m.Type); err != nil {
			return nil, err
		}
		byType[m.Type] = m
	}
	out := make([]doctree.Mark, 0, len(byType))
	for _, m := range byType {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.marks[out[i].Type].Rank < r.marks[out[j].Type].Rank
	})
	return out, nil
}

func (r *Registry) checkMark(m doctree.Mark) error {
	spec, err := r.LookupMark(m.Type)
	if err != nil {
		return err
	}
	for name, v := range m.Attrs {
		a, ok := findAttr(spec.Attrs, name)
		if !ok {
			return &AttributeError{Kind: doctree.Kind(m.Type), Name: name, Value: v, Err: ErrUnknownAttribute}
		}
		if _, err := a.Parse(v, true); err != nil {
			return &AttributeError{Kind: doctree.Kind(m.Type), Name: name, Value: v, Err: err}
		}
	}
	return nil
}

// CheckMarks validates a mark set: known types and valid attributes.
func (r *Registry) CheckMarks(marks []doctree.Mark) error {
	for _, m := range marks {
		if err := r.checkMark(m); err != nil {
			return err
		}
	}
	return nil
}
