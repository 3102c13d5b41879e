package doctree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a path no longer resolves to the node it was
// computed for.
var ErrNotFound = errors.New("node not found")

// Path addresses a node by child indices from the root, plus the identity of
// the node it was computed for. A path whose indices now lead to a different
// node (because an earlier sibling was inserted or removed) is stale and
// does not resolve.
type Path struct {
	Indices []int  `json:"indices"`
	ID      string `json:"id,omitempty"`
}

// RootPath addresses the document root.
func RootPath(d *Document) Path {
	return Path{ID: d.Root.ID}
}

// IsRoot reports whether p addresses the root.
func (p Path) IsRoot() bool {
	return len(p.Indices) == 0
}

// Parent returns the path of the parent position, without identity.
func (p Path) Parent() Path {
	if p.IsRoot() {
		return p
	}
	return Path{Indices: append([]int(nil), p.Indices[:len(p.Indices)-1]...)}
}

// Last returns the index of the addressed node within its parent.
func (p Path) Last() int {
	if p.IsRoot() {
		return -1
	}
	return p.Indices[len(p.Indices)-1]
}

// Child returns the path of the child at index i, addressing id.
func (p Path) Child(i int, id string) Path {
	idx := make([]int, len(p.Indices)+1)
	copy(idx, p.Indices)
	idx[len(p.Indices)] = i
	return Path{Indices: idx, ID: id}
}

func (p Path) String() string {
	parts := make([]string, len(p.Indices))
	for i, n := range p.Indices {
		parts[i] = strconv.Itoa(n)
	}
	s := "/" + strings.Join(parts, "/")
	if p.ID != "" {
		s += "@" + p.ID
	}
	return s
}

// ParsePath reads the String form of a path: "/0/2@id".
func ParsePath(s string) (Path, error) {
	var p Path
	body, id, _ := strings.Cut(s, "@")
	p.ID = id
	body = strings.Trim(body, "/")
	if body == "" {
		return p, nil
	}
	for _, part := range strings.Split(body, "/") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", part, s)
		}
		p.Indices = append(p.Indices, n)
	}
	return p, nil
}

// PathError describes a path that failed to resolve.
type PathError struct {
	Path   Path
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error {
	return ErrNotFound
}

// Resolve returns the node addressed by p. Non-root paths must carry the
// identity of the node they address.
func (d *Document) Resolve(p Path) (*Node, error) {
	n := d.Root
	if p.IsRoot() {
		if p.ID != "" && p.ID != n.ID {
			return nil, &PathError{Path: p, Reason: "root identity changed"}
		}
		return n, nil
	}
	if p.ID == "" {
		return nil, &PathError{Path: p, Reason: "path carries no node identity"}
	}
	for depth, i := range p.Indices {
		if i < 0 || i >= len(n.Content) {
			return nil, &PathError{Path: p, Reason: fmt.Sprintf("index %d out of range at depth %d", i, depth)}
		}
		n = n.Content[i]
	}
	if n.ID != p.ID {
		return nil, &PathError{Path: p, Reason: "stale path: node at position changed"}
	}
	return n, nil
}

// ResolvePosition follows indices without an identity check. It is used for
// insertion parents addressed positionally.
func (d *Document) ResolvePosition(indices []int) (*Node, error) {
	n := d.Root
	for depth, i := range indices {
		if i < 0 || i >= len(n.Content) {
			return nil, &PathError{Path: Path{Indices: indices}, Reason: fmt.Sprintf("index %d out of range at depth %d", i, depth)}
		}
		n = n.Content[i]
	}
	return n, nil
}

// PathOf recomputes the current path of the node with the given identity.
func (d *Document) PathOf(id string) (Path, bool) {
	var found Path
	ok := false
	Walk(d.Root, func(n *Node, idx []int) bool {
		if ok {
			return false
		}
		if n.ID == id {
			found = Path{Indices: idx, ID: id}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
