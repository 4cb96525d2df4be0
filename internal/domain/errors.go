package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCollectionNotFound signals a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrTypeNotRegistered signals an entry whose content type has no node builder.
	ErrTypeNotRegistered = errors.New("content type not registered")
	// ErrAmbiguousReference signals a linked-item field spanning more than one type.
	ErrAmbiguousReference = errors.New("ambiguous reference")
	// ErrInvalidNode signals a node that fails construction-time validation.
	ErrInvalidNode = errors.New("invalid node")
	// ErrStoreClosed signals an operation on a closed store.
	ErrStoreClosed = errors.New("store closed")
)

// AmbiguousReferenceError wraps ErrAmbiguousReference with the offending
// field and the distinct type names its linked items resolve to.
type AmbiguousReferenceError struct {
	Field string
	Types []string
}

func (e *AmbiguousReferenceError) Error() string {
	return fmt.Sprintf("%s: field %q links items of types %s",
		ErrAmbiguousReference.Error(), e.Field, strings.Join(e.Types, ", "))
}

func (e *AmbiguousReferenceError) Unwrap() error { return ErrAmbiguousReference }

// NewAmbiguousReference creates an ambiguous reference error for a field.
func NewAmbiguousReference(field string, types []string) error {
	return &AmbiguousReferenceError{Field: field, Types: types}
}
