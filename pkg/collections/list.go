package collections

import (
	"reflect"
)

// List is a growable container with a statically known element type. It
// implements MutableContainer, so it works both as a concrete parameter
// field (*List[T], constructed by the engine) and as the pre-seeded value
// behind a MutableContainer interface field (mutated in place).
type List[T any] struct {
	items []T
}

// NewList creates a list holding the given items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: append([]T(nil), items...)}
}

// ElemType reports T.
func (l *List[T]) ElemType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Len reports the number of stored items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Values returns the stored items in order as untyped values.
func (l *List[T]) Values() []any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = v
	}
	return out
}

// Items returns a copy of the stored items.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Append adds items to the end of the list.
func (l *List[T]) Append(items ...T) {
	l.items = append(l.items, items...)
}

// SetValues clears the list and repopulates it. Every value must be
// assignable to T.
func (l *List[T]) SetValues(values []any) error {
	items := make([]T, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		tv, ok := v.(T)
		if !ok {
			return &ElementTypeError{Index: i, Want: reflect.TypeOf((*T)(nil)).Elem(), Got: reflect.TypeOf(v)}
		}
		items[i] = tv
	}
	l.items = items
	return nil
}
