package schema

import (
	"errors"
	"fmt"

	"github.com/dgallion1/agendagen/internal/doctree"
)

var (
	ErrUnknownNodeKind  = errors.New("unknown node kind")
	ErrContentModel     = errors.New("content model violation")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrInvalidAttribute = errors.New("invalid attribute value")
	ErrUnknownMarkType  = errors.New("unknown mark type")
)

// KindError reports a node kind missing from the registry.
type KindError struct {
	Kind doctree.Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("unknown node kind %q", e.Kind)
}

func (e *KindError) Unwrap() error { return ErrUnknownNodeKind }

// ContentModelError reports children a parent kind may not hold.
type ContentModelError struct {
	Parent doctree.Kind
	Child  doctree.Kind // empty when the violation is about arity
	Index  int
	Reason string
}

func (e *ContentModelError) Error() string {
	if e.Child == "" {
		return fmt.Sprintf("%s: %s", e.Parent, e.Reason)
	}
	return fmt.Sprintf("%s: child %d (%s): %s", e.Parent, e.Index, e.Child, e.Reason)
}

func (e *ContentModelError) Unwrap() error { return ErrContentModel }

// AttributeError reports an unknown attribute or an unacceptable value.
type AttributeError struct {
	Kind  doctree.Kind
	Name  string
	Value string
	Err   error
}

func (e *AttributeError) Error() string {
	if errors.Is(e.Err, ErrUnknownAttribute) {
		return fmt.Sprintf("%s: unknown attribute %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: attribute %s=%q: %v", e.Kind, e.Name, e.Value, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

// MarkError reports a mark type missing from the registry.
type MarkError struct {
	Type doctree.MarkType
}

func (e *MarkError) Error() string {
	return fmt.Sprintf("unknown mark type %q", e.Type)
}

func (e *MarkError) Unwrap() error { return ErrUnknownMarkType }
