// Package collections implements the collection field adapter: a capability
// lookup that decides whether a field type holds a single value or a
// multi-element container, and how such a container is built or refilled.
//
// Recognition runs over an ordered list of recognizers, first match wins.
// The builtin recognizer covers the closed set of native collection shapes
// (slices, fixed arrays, pointers to slices) plus the Container and
// MutableContainer capability interfaces; hosts extend the set by prepending
// their own recognizers.
package collections

import (
	"fmt"
	"reflect"
)

// Container is the read-only capability a custom collection type exposes so
// the engine can treat it as a multi-valued field.
type Container interface {
	// ElemType reports the static element type of the container.
	ElemType() reflect.Type
	// Len reports the number of stored elements.
	Len() int
	// Values returns the stored elements in order.
	Values() []any
}

// MutableContainer adds in-place replacement: SetValues clears the container
// and repopulates it with the given elements.
type MutableContainer interface {
	Container
	SetValues(values []any) error
}

// Adapter describes the collection capabilities of one field type. A field
// type may support construction, mutation, both, or neither (read-only
// containers).
type Adapter struct {
	// Elem is the element type, or nil when it cannot be derived from the
	// field type alone (interface container fields). The field descriptor
	// must supply the element type explicitly in that case.
	Elem reflect.Type

	CanConstruct bool
	// Construct builds a fresh collection holding values. Only valid when
	// CanConstruct is true.
	Construct func(values []reflect.Value) (reflect.Value, error)

	CanMutate bool
	// Mutate clears target and repopulates it with values. target is the
	// current field value and must be non-nil. Only valid when CanMutate is
	// true.
	Mutate func(target reflect.Value, values []reflect.Value) error
}

// Recognizer inspects a field type and returns its collection adapter, or
// nil when the type is not a collection it understands.
type Recognizer interface {
	Recognize(t reflect.Type) *Adapter
}

// RecognizerFunc adapts a plain function to the Recognizer interface.
type RecognizerFunc func(t reflect.Type) *Adapter

func (f RecognizerFunc) Recognize(t reflect.Type) *Adapter {
	return f(t)
}

// Recognize queries recognizers in order and returns the first non-nil
// adapter. A nil result means t is a plain scalar field type.
func Recognize(t reflect.Type, recognizers []Recognizer) *Adapter {
	if t == nil {
		return nil
	}
	for _, r := range recognizers {
		if a := r.Recognize(t); a != nil {
			return a
		}
	}
	return nil
}

// NotMutableError indicates a mutate call on a container value that does not
// support in-place replacement (typically a nil interface field).
type NotMutableError struct {
	Type reflect.Type
}

func (e *NotMutableError) Error() string {
	return fmt.Sprintf("value of type %v cannot be mutated in place", e.Type)
}

// LengthMismatchError indicates a fixed-size collection cannot hold the
// requested number of elements.
type LengthMismatchError struct {
	Type  reflect.Type
	Count int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("collection %v cannot hold %d values", e.Type, e.Count)
}

// ElementTypeError indicates a value is not assignable to the container's
// element type.
type ElementTypeError struct {
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

func (e *ElementTypeError) Error() string {
	return fmt.Sprintf("element %d: %v is not assignable to %v", e.Index, e.Got, e.Want)
}
