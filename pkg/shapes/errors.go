package shapes

import (
	"fmt"
	"reflect"
)

// InvalidArgumentError indicates a required input was absent or malformed.
type InvalidArgumentError struct {
	What string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.What)
}

func NewInvalidArgumentError(what string) *InvalidArgumentError {
	return &InvalidArgumentError{What: what}
}

// IncompatibleTypeError indicates a registered shape does not satisfy the
// factory's base type constraint.
type IncompatibleTypeError struct {
	Type reflect.Type
	Base reflect.Type
}

func (e *IncompatibleTypeError) Error() string {
	return fmt.Sprintf("type %v is not compatible with base type %v", e.Type, e.Base)
}

// NoSuitableShapeError indicates no registered shape's grammar accepts the
// argument signature.
type NoSuitableShapeError struct {
	Signature string
}

func (e *NoSuitableShapeError) Error() string {
	return fmt.Sprintf("no registered shape accepts signature %q", e.Signature)
}

// AmbiguousShapesError indicates several shapes accept the signature and the
// disambiguation hook did not resolve the tie.
type AmbiguousShapesError struct {
	Signature  string
	Candidates []*Shape
}

func (e *AmbiguousShapesError) Error() string {
	return fmt.Sprintf("signature %q matches %d shapes and disambiguation did not resolve it", e.Signature, len(e.Candidates))
}

// ArityViolationError indicates a value group incompatible with a scalar
// field: more than one value, or zero values for a field that cannot hold an
// absent value.
type ArityViolationError struct {
	Field string
	Count int
}

func (e *ArityViolationError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("field %s cannot hold an absent value", e.Field)
	}
	return fmt.Sprintf("field %s cannot hold %d values", e.Field, e.Count)
}

// UnassignableFieldError indicates a field that can neither be assigned nor
// mutated with its allocated value group.
type UnassignableFieldError struct {
	Field  string
	Type   reflect.Type
	Reason string
}

func (e *UnassignableFieldError) Error() string {
	return fmt.Sprintf("field %s (%v) cannot receive values: %s", e.Field, e.Type, e.Reason)
}
