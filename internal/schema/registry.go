package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andybalholm/cascadia"
	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/net/html"

	"github.com/dgallion1/agendagen/internal/doctree"
)

// Descriptor is the registry entry of one node kind.
type Descriptor struct {
	Kind    doctree.Kind
	Group   Group
	Content ContentModel
	Attrs   []AttrSpec
	Produce Producer

	// Match is the selector recognizing this kind's element when markup is
	// parsed back; the highest Priority among matching kinds wins.
	Match    string
	Priority int
	// Inner selects the descendant wrapping the children, when the kind
	// puts fixed decoration (captions, titles) around them.
	Inner string

	selector cascadia.Selector
	inner    cascadia.Selector
	attrIn   map[string]cascadia.Selector
}

// Matches reports whether the markup element n was produced by this kind.
func (d *Descriptor) Matches(n *html.Node) bool {
	return d.selector != nil && d.selector.Match(n)
}

// ContentElement returns the element of n's markup that holds the
// children, or nil when the kind's wrapper is missing from n.
func (d *Descriptor) ContentElement(n *html.Node) *html.Node {
	if d.inner == nil {
		return n
	}
	return cascadia.Query(n, d.inner)
}

// AttrElement returns the element of n's markup that carries the named
// attribute, or nil when it is missing.
func (d *Descriptor) AttrElement(name string, n *html.Node) *html.Node {
	sel, ok := d.attrIn[name]
	if !ok {
		return n
	}
	return cascadia.Query(n, sel)
}

// Attr returns the spec of the named attribute.
func (d *Descriptor) Attr(name string) (AttrSpec, bool) {
	return findAttr(d.Attrs, name)
}

// Registry is the closed catalog of node kinds and mark types. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	kinds map[doctree.Kind]*Descriptor
	order []doctree.Kind
	marks map[doctree.MarkType]*MarkSpec

	markSelectors map[doctree.MarkType]cascadia.Selector
}

// NewRegistry builds a registry from kind descriptors and mark specs.
func NewRegistry(descs []Descriptor, marks []MarkSpec) (*Registry, error) {
	r := &Registry{
		kinds:         make(map[doctree.Kind]*Descriptor, len(descs)),
		marks:         make(map[doctree.MarkType]*MarkSpec, len(marks)),
		markSelectors: make(map[doctree.MarkType]cascadia.Selector, len(marks)),
	}
	for i := range descs {
		d := descs[i]
		if _, dup := r.kinds[d.Kind]; dup {
			return nil, fmt.Errorf("duplicate node kind %q", d.Kind)
		}
		if d.Match != "" {
			sel, err := cascadia.Compile(d.Match)
			if err != nil {
				return nil, fmt.Errorf("kind %s: compile selector %q: %w", d.Kind, d.Match, err)
			}
			d.selector = sel
		}
		if d.Inner != "" {
			sel, err := cascadia.Compile(d.Inner)
			if err != nil {
				return nil, fmt.Errorf("kind %s: compile content selector %q: %w", d.Kind, d.Inner, err)
			}
			d.inner = sel
		}
		for _, a := range d.Attrs {
			if a.Markup.In == "" {
				continue
			}
			sel, err := cascadia.Compile(a.Markup.In)
			if err != nil {
				return nil, fmt.Errorf("kind %s: compile selector of attribute %s: %w", d.Kind, a.Name, err)
			}
			if d.attrIn == nil {
				d.attrIn = make(map[string]cascadia.Selector)
			}
			d.attrIn[a.Name] = sel
		}
		if d.Produce == nil && d.Kind != doctree.TextKind {
			return nil, fmt.Errorf("kind %s has no production rule", d.Kind)
		}
		r.kinds[d.Kind] = &d
		r.order = append(r.order, d.Kind)
	}
	for i := range marks {
		m := marks[i]
		if _, dup := r.marks[m.Type]; dup {
			return nil, fmt.Errorf("duplicate mark type %q", m.Type)
		}
		sel, err := cascadia.Compile(m.Match)
		if err != nil {
			return nil, fmt.Errorf("mark %s: compile selector %q: %w", m.Type, m.Match, err)
		}
		r.marks[m.Type] = &m
		r.markSelectors[m.Type] = sel
	}
	if _, ok := r.kinds[doctree.RootKind]; !ok {
		return nil, fmt.Errorf("registry lacks the %q kind", doctree.RootKind)
	}
	if _, ok := r.kinds[doctree.TextKind]; !ok {
		return nil, fmt.Errorf("registry lacks the %q kind", doctree.TextKind)
	}
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(defaultKinds(), defaultMarks())
	if err != nil {
		panic("schema: default registry: " + err.Error())
	}
	return r
})

// Default returns the agenda document registry.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns the descriptor of kind.
func (r *Registry) Lookup(kind doctree.Kind) (*Descriptor, error) {
	d, ok := r.kinds[kind]
	if !ok {
		return nil, &KindError{Kind: kind}
	}
	return d, nil
}

// LookupMark returns the spec of a mark type.
func (r *Registry) LookupMark(t doctree.MarkType) (*MarkSpec, error) {
	m, ok := r.marks[t]
	if !ok {
		return nil, &MarkError{Type: t}
	}
	return m, nil
}

// Kinds returns every registered kind in registration order.
func (r *Registry) Kinds() []doctree.Kind {
	return append([]doctree.Kind(nil), r.order...)
}

// MarkTypes returns every mark type, innermost first.
func (r *Registry) MarkTypes() []doctree.MarkType {
	out := make([]doctree.MarkType, 0, len(r.marks))
	for t := range r.marks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return r.marks[out[i]].Rank < r.marks[out[j]].Rank })
	return out
}

// ResolveAttrs returns attrs with every declared attribute of kind present,
// defaults filled in.
func (r *Registry) ResolveAttrs(kind doctree.Kind, attrs doctree.Attrs) (doctree.Attrs, error) {
	d, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	return resolveAttrs(d.Attrs, attrs), nil
}

// ParseAttrs runs every supplied value through its spec's parse rule.
// Unknown names fail with ErrUnknownAttribute.
func (r *Registry) ParseAttrs(kind doctree.Kind, raw doctree.Attrs) (doctree.Attrs, error) {
	d, err := r.Lookup(kind)
	if err != nil {
		return nil, err
	}
	out := make(doctree.Attrs, len(raw))
	for name, v := range raw {
		spec, ok := d.Attr(name)
		if !ok {
			return nil, &AttributeError{Kind: kind, Name: name, Value: v, Err: ErrUnknownAttribute}
		}
		parsed, err := spec.Parse(v, true)
		if err != nil {
			return nil, &AttributeError{Kind: kind, Name: name, Value: v, Err: err}
		}
		if _, keep := spec.Serialize(parsed); keep {
			out[name] = parsed
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// MatchKind returns the highest-priority kind whose selector matches the
// markup element n.
func (r *Registry) MatchKind(n *html.Node) (*Descriptor, bool) {
	var best *Descriptor
	for _, k := range r.order {
		d := r.kinds[k]
		if !d.Matches(n) {
			continue
		}
		if best == nil || d.Priority > best.Priority {
			best = d
		}
	}
	return best, best != nil
}

// MatchMark returns the mark type whose selector matches the inline element n.
func (r *Registry) MatchMark(n *html.Node) (*MarkSpec, bool) {
	for _, t := range r.MarkTypes() {
		if r.markSelectors[t].Match(n) {
			return r.marks[t], true
		}
	}
	return nil, false
}

func sortedKinds(s mapset.Set[doctree.Kind]) []doctree.Kind {
	out := s.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
