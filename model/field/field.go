// Package field implements the typed value model for workflow inputs.  Every
// input exposed by a workflow document is materialised into one of a closed
// set of variants (String, Integer, Float, Boolean, Image, Board,
// ModelIdentifier, Color, BoundingBox, Collection) that all satisfy the same
// Field contract.  Fields hold identifiers and plain values only – uploading
// or downloading the bytes behind a resource reference is the client's job,
// never the field's.
package field

import (
	"fmt"
)

// Kind is the semantic type tag of a field.
type Kind string

const (
	KindString          Kind = "string"
	KindInteger         Kind = "integer"
	KindFloat           Kind = "float"
	KindBoolean         Kind = "boolean"
	KindImage           Kind = "image"
	KindBoard           Kind = "board"
	KindModelIdentifier Kind = "model_identifier"
	KindColor           Kind = "color"
	KindBoundingBox     Kind = "bounding_box"
	KindCollection      Kind = "collection"
)

// Field is the contract shared by every variant.
type Field interface {
	// Kind returns the semantic type tag.
	Kind() Kind

	// Name returns the field name within its owning node.
	Name() string

	// Value returns the current value and whether one has been set.
	Value() (interface{}, bool)

	// Set assigns a new value.  A value outside the declared constraints
	// fails with *ValidationError and leaves the stored value untouched.
	Set(value interface{}) error

	// ToWire renders the current value in the wire representation.  It is
	// total: an unset field produces the type's null placeholder rather
	// than failing.
	ToWire() interface{}

	// FromWire assigns the value from its wire representation, applying
	// the same constraints as Set.
	FromWire(value interface{}) error

	// Validate re-checks the stored value against the declared
	// constraints.
	Validate() error
}

// ValidationError reports a value that violates a field constraint.  The
// Constraint names the violated rule (e.g. "type", "maximum", "min_length")
// so callers can react programmatically.
type ValidationError struct {
	Field      string
	Constraint string
	Message    string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid value (%s): %s", e.Constraint, e.Message)
	}
	return fmt.Sprintf("invalid value for field %q (%s): %s", e.Field, e.Constraint, e.Message)
}

func validationError(field, constraint, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:      field,
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	}
}

// New creates an unset field of the given kind.  Collections created through
// New accept any element kind; use NewCollection to constrain elements.
func New(kind Kind, name string) (Field, error) {
	switch kind {
	case KindString:
		return NewString(name), nil
	case KindInteger:
		return NewInteger(name), nil
	case KindFloat:
		return NewFloat(name), nil
	case KindBoolean:
		return NewBoolean(name), nil
	case KindImage:
		return NewImage(name), nil
	case KindBoard:
		return NewBoard(name), nil
	case KindModelIdentifier:
		return NewModelIdentifier(name), nil
	case KindColor:
		return NewColor(name), nil
	case KindBoundingBox:
		return NewBoundingBox(name), nil
	case KindCollection:
		return NewCollection(name, ""), nil
	}
	return nil, fmt.Errorf("unknown field kind %q", kind)
}
