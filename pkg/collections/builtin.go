package collections

import (
	"reflect"
)

var (
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	mutableType   = reflect.TypeOf((*MutableContainer)(nil)).Elem()
)

// Builtin returns the default recognizer. It covers, in this order:
// Container/MutableContainer implementations, growable slices, fixed-size
// arrays and pointers to slices. Hosts that need more run their own
// recognizers ahead of this one.
func Builtin() Recognizer {
	return RecognizerFunc(recognizeBuiltin)
}

func recognizeBuiltin(t reflect.Type) *Adapter {
	if a := recognizeContainer(t); a != nil {
		return a
	}
	switch t.Kind() {
	case reflect.Slice:
		return sliceAdapter(t)
	case reflect.Array:
		return arrayAdapter(t)
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Slice {
			return pointerSliceAdapter(t)
		}
	}
	return nil
}

func sliceAdapter(t reflect.Type) *Adapter {
	return &Adapter{
		Elem:         t.Elem(),
		CanConstruct: true,
		Construct: func(values []reflect.Value) (reflect.Value, error) {
			return buildSlice(t, values)
		},
	}
}

func arrayAdapter(t reflect.Type) *Adapter {
	return &Adapter{
		Elem:         t.Elem(),
		CanConstruct: true,
		Construct: func(values []reflect.Value) (reflect.Value, error) {
			if len(values) != t.Len() {
				return reflect.Value{}, &LengthMismatchError{Type: t, Count: len(values)}
			}
			arr := reflect.New(t).Elem()
			for i, v := range values {
				if err := setElem(arr.Index(i), v, i); err != nil {
					return reflect.Value{}, err
				}
			}
			return arr, nil
		},
	}
}

func pointerSliceAdapter(t reflect.Type) *Adapter {
	sliceType := t.Elem()
	return &Adapter{
		Elem:         sliceType.Elem(),
		CanConstruct: true,
		Construct: func(values []reflect.Value) (reflect.Value, error) {
			s, err := buildSlice(sliceType, values)
			if err != nil {
				return reflect.Value{}, err
			}
			p := reflect.New(sliceType)
			p.Elem().Set(s)
			return p, nil
		},
		CanMutate: true,
		Mutate: func(target reflect.Value, values []reflect.Value) error {
			if target.IsNil() {
				return &NotMutableError{Type: t}
			}
			s, err := buildSlice(sliceType, values)
			if err != nil {
				return err
			}
			target.Elem().Set(s)
			return nil
		},
	}
}

// recognizeContainer handles types implementing the capability interfaces.
// Concrete pointer-to-struct implementations are constructible via
// reflect.New; interface types are mutate-only since there is no concrete
// type to instantiate.
func recognizeContainer(t reflect.Type) *Adapter {
	if !t.Implements(mutableType) {
		if t.Implements(containerType) {
			// Read-only container: collection-backed, no capabilities.
			return &Adapter{Elem: probeElemType(t)}
		}
		return nil
	}
	a := &Adapter{
		Elem:      probeElemType(t),
		CanMutate: true,
		Mutate: func(target reflect.Value, values []reflect.Value) error {
			if canBeNil(target.Kind()) && target.IsNil() {
				return &NotMutableError{Type: t}
			}
			mc, ok := target.Interface().(MutableContainer)
			if !ok {
				return &NotMutableError{Type: target.Type()}
			}
			return mc.SetValues(anyValues(values))
		},
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		a.CanConstruct = true
		a.Construct = func(values []reflect.Value) (reflect.Value, error) {
			p := reflect.New(t.Elem())
			mc := p.Interface().(MutableContainer)
			if err := mc.SetValues(anyValues(values)); err != nil {
				return reflect.Value{}, err
			}
			return p, nil
		}
	}
	return a
}

// probeElemType asks a zero instance for its element type. Interface types
// have no instance to probe and report nil; the field descriptor supplies
// the element type then.
func probeElemType(t reflect.Type) reflect.Type {
	var probe reflect.Value
	switch {
	case t.Kind() == reflect.Interface:
		return nil
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		probe = reflect.New(t.Elem())
	default:
		probe = reflect.Zero(t)
	}
	if c, ok := probe.Interface().(Container); ok {
		return c.ElemType()
	}
	return nil
}

func buildSlice(t reflect.Type, values []reflect.Value) (reflect.Value, error) {
	s := reflect.MakeSlice(t, len(values), len(values))
	for i, v := range values {
		if err := setElem(s.Index(i), v, i); err != nil {
			return reflect.Value{}, err
		}
	}
	return s, nil
}

func setElem(dst, v reflect.Value, i int) error {
	if !v.IsValid() {
		// nil argument: leave the zero value in place.
		return nil
	}
	if !v.Type().AssignableTo(dst.Type()) {
		return &ElementTypeError{Index: i, Want: dst.Type(), Got: v.Type()}
	}
	dst.Set(v)
	return nil
}

func anyValues(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if v.IsValid() {
			out[i] = v.Interface()
		}
	}
	return out
}

func canBeNil(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
