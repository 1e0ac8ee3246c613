// Package shapes implements the runtime overload-resolution and
// field-binding engine.
//
// A Factory holds a set of registered shapes (struct types with ordered,
// arity-constrained parameter fields). Given an argument list, Create maps
// every argument's type to a directory token, finds the shape whose
// quantified token grammar accepts the resulting signature, partitions the
// arguments across the shape's fields with greedy-leftmost allocation, and
// populates a fresh instance.
//
// A factory is designed for single-threaded use: registration and creation
// share the type directory and candidate list without internal locking.
package shapes

import (
	"fmt"
	"io"
	"reflect"

	"github.com/charmbracelet/log"

	"github.com/fhaag/parametrizedobjects/internal/grammar"
	"github.com/fhaag/parametrizedobjects/internal/typedir"
	"github.com/fhaag/parametrizedobjects/pkg/collections"
)

// TypeOfFunc maps an argument value to the type used for signature
// building.
type TypeOfFunc func(value any) reflect.Type

// DisambiguateFunc picks among several matching shapes. It returns an index
// into candidates, or any out-of-range value to report the tie as
// unresolved.
type DisambiguateFunc func(args []any, candidates []*Shape) int

// Instantiate produces a fresh instance of the selected shape's struct
// type. ctx carries the host context passed to CreateContext.
type Instantiate[T any] func(t reflect.Type, ctx any) (T, error)

// Factory selects and populates registered shapes. Every shape must be
// compatible with the base type T: either the struct type itself or a
// pointer to it has to be assignable to T.
type Factory[T any] struct {
	dir          *typedir.Directory
	shapes       []*Shape
	typeOf       TypeOfFunc
	disambiguate DisambiguateFunc
	recognizers  []collections.Recognizer
	logger       *log.Logger
}

// Option configures a Factory.
type Option[T any] func(*Factory[T])

// WithTypeOf overrides how argument values are mapped to types. The default
// uses the value's runtime type.
func WithTypeOf[T any](fn TypeOfFunc) Option[T] {
	return func(f *Factory[T]) { f.typeOf = fn }
}

// WithDisambiguator overrides the tie-break hook. The default always
// returns -1, so unresolved ties fail with AmbiguousShapesError.
func WithDisambiguator[T any](fn DisambiguateFunc) Option[T] {
	return func(f *Factory[T]) { f.disambiguate = fn }
}

// WithRecognizers prepends collection recognizers ahead of the builtin one.
// Recognizers are queried in order, first match wins.
func WithRecognizers[T any](recognizers ...collections.Recognizer) Option[T] {
	return func(f *Factory[T]) {
		f.recognizers = append(recognizers, f.recognizers...)
	}
}

// WithLogger enables debug tracing of registration, matching and
// allocation. The default logger discards everything.
func WithLogger[T any](logger *log.Logger) Option[T] {
	return func(f *Factory[T]) { f.logger = logger }
}

// New creates an empty factory.
func New[T any](opts ...Option[T]) *Factory[T] {
	f := &Factory[T]{
		dir:          typedir.New(),
		typeOf:       func(v any) reflect.Type { return reflect.TypeOf(v) },
		disambiguate: func([]any, []*Shape) int { return -1 },
		recognizers:  []collections.Recognizer{collections.Builtin()},
		logger:       log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RegisterShape adds a candidate shape. prototype is a value, pointer or
// reflect.Type naming the struct type; specs describe its parameter fields.
// Registration either fully succeeds or leaves the factory untouched.
func (f *Factory[T]) RegisterShape(prototype any, specs ...FieldSpec) (*Shape, error) {
	if prototype == nil {
		return nil, NewInvalidArgumentError("prototype must not be nil")
	}
	structType, err := structTypeOf(prototype)
	if err != nil {
		return nil, err
	}
	base := reflect.TypeOf((*T)(nil)).Elem()
	if !compatibleWithBase(structType, base) {
		return nil, &IncompatibleTypeError{Type: structType, Base: base}
	}
	shape, err := f.newShape(structType, specs)
	if err != nil {
		return nil, err
	}
	f.shapes = append(f.shapes, shape)
	f.logger.Debug("shape registered", "shape", shape.typ.String(), "id", shape.id, "grammar", shape.grammar.String())
	return shape, nil
}

// Shapes returns the registered candidates in registration order.
func (f *Factory[T]) Shapes() []*Shape {
	out := make([]*Shape, len(f.shapes))
	copy(out, f.shapes)
	return out
}

// TypeForIdentifier resolves a directory token back to its type. Unknown
// tokens report ok=false.
func (f *Factory[T]) TypeForIdentifier(token string) (reflect.Type, bool) {
	return f.dir.TypeForIdentifier(token)
}

// IdentifierFor returns the directory token for t, assigning one on first
// use.
func (f *Factory[T]) IdentifierFor(t reflect.Type) (string, error) {
	if t == nil {
		return "", NewInvalidArgumentError("type must not be nil")
	}
	return f.dir.IdentifierFor(t)
}

// Create selects a shape for args and populates a fresh instance obtained
// via parameterless construction (reflect.New on the struct type).
func (f *Factory[T]) Create(args []any) (T, error) {
	return f.CreateContext(args, nil, func(t reflect.Type, _ any) (T, error) {
		instance, ok := reflect.New(t).Interface().(T)
		if !ok {
			var zero T
			return zero, &IncompatibleTypeError{Type: t, Base: reflect.TypeOf((*T)(nil)).Elem()}
		}
		return instance, nil
	})
}

// CreateWith is Create with a host-supplied construction strategy.
func (f *Factory[T]) CreateWith(args []any, instantiate func(t reflect.Type) (T, error)) (T, error) {
	if instantiate == nil {
		var zero T
		return zero, NewInvalidArgumentError("instantiate must not be nil")
	}
	return f.CreateContext(args, nil, func(t reflect.Type, _ any) (T, error) {
		return instantiate(t)
	})
}

// CreateContext is Create with a construction strategy that receives a host
// context.
//
// On failure the returned instance is the zero value of T; note that a
// failing assignment may already have populated some fields of the instance
// produced by instantiate. Callers needing atomicity construct into a
// temporary and swap.
func (f *Factory[T]) CreateContext(args []any, ctx any, instantiate Instantiate[T]) (T, error) {
	var zero T
	if args == nil {
		return zero, NewInvalidArgumentError("arguments must not be nil")
	}
	if instantiate == nil {
		return zero, NewInvalidArgumentError("instantiate must not be nil")
	}

	sig, err := f.signatureOf(args)
	if err != nil {
		return zero, err
	}
	shape, counts, err := f.match(args, sig)
	if err != nil {
		return zero, err
	}
	f.logger.Debug("shape selected", "signature", sig.String(), "shape", shape.typ.String(), "counts", counts)

	instance, err := instantiate(shape.typ, ctx)
	if err != nil {
		return zero, err
	}
	target, err := settableStruct(instance, shape.typ)
	if err != nil {
		return zero, err
	}
	if err := f.assign(shape, target, counts, args); err != nil {
		return zero, err
	}
	return instance, nil
}

// signatureOf maps every argument through the typeOf hook into a directory
// token. Untyped nil arguments get the reserved nil token, which no field
// token can equal.
func (f *Factory[T]) signatureOf(args []any) (grammar.Signature, error) {
	sig := make(grammar.Signature, len(args))
	for i, arg := range args {
		t := f.typeOf(arg)
		if t == nil {
			sig[i] = typedir.NilToken
			continue
		}
		token, err := f.dir.IdentifierFor(t)
		if err != nil {
			return nil, NewInvalidArgumentError(fmt.Sprintf("argument %d: %v", i, err))
		}
		sig[i] = token
	}
	return sig, nil
}

// match filters candidates whose grammar accepts sig in full and resolves
// ties via the disambiguation hook.
func (f *Factory[T]) match(args []any, sig grammar.Signature) (*Shape, []int, error) {
	var matched []*Shape
	var allocations [][]int
	for _, s := range f.shapes {
		if counts, ok := s.grammar.Allocate(sig); ok {
			matched = append(matched, s)
			allocations = append(allocations, counts)
		}
	}
	switch len(matched) {
	case 0:
		return nil, nil, &NoSuitableShapeError{Signature: sig.String()}
	case 1:
		return matched[0], allocations[0], nil
	}
	f.logger.Debug("ambiguous signature", "signature", sig.String(), "candidates", len(matched))
	idx := f.disambiguate(args, matched)
	if idx < 0 || idx >= len(matched) {
		return nil, nil, &AmbiguousShapesError{Signature: sig.String(), Candidates: matched}
	}
	return matched[idx], allocations[idx], nil
}

// assign distributes args across the shape's fields: each field draws its
// allocated count from the leading unconsumed portion, in order.
func (f *Factory[T]) assign(shape *Shape, target reflect.Value, counts []int, args []any) error {
	pos := 0
	for i := range shape.fields {
		group := args[pos : pos+counts[i]]
		pos += counts[i]
		if err := assignField(&shape.fields[i], target, group); err != nil {
			return err
		}
	}
	return nil
}

func assignField(fb *fieldBinding, target reflect.Value, group []any) error {
	field := target.FieldByIndex(fb.index)

	if fb.adapter != nil {
		switch {
		case fb.adapter.CanConstruct && field.CanSet():
			// Always construct, even for zero values: an empty collection,
			// not an absent one.
			col, err := fb.adapter.Construct(reflectValues(group, fb.elem))
			if err != nil {
				return err
			}
			field.Set(col)
			return nil
		case fb.adapter.CanMutate:
			// Mutate-only collections must already hold a container, seeded
			// by the instantiate callback.
			if fb.nillable && field.IsNil() {
				return &UnassignableFieldError{Field: fb.spec.Field, Type: fb.typ, Reason: "no existing collection to mutate"}
			}
			return fb.adapter.Mutate(field, reflectValues(group, fb.elem))
		}
		// Collection-backed without construct capability: fall through to
		// the scalar rule.
	}

	if !field.CanSet() {
		return &UnassignableFieldError{Field: fb.spec.Field, Type: fb.typ, Reason: "field is not settable"}
	}
	switch len(group) {
	case 0:
		if !fb.nillable {
			return &ArityViolationError{Field: fb.spec.Field, Count: 0}
		}
		field.Set(reflect.Zero(fb.typ))
		return nil
	case 1:
		return assignScalar(fb, field, group[0])
	default:
		return &ArityViolationError{Field: fb.spec.Field, Count: len(group)}
	}
}

func assignScalar(fb *fieldBinding, field reflect.Value, value any) error {
	if value == nil {
		if !fb.nillable {
			return &ArityViolationError{Field: fb.spec.Field, Count: 0}
		}
		field.Set(reflect.Zero(fb.typ))
		return nil
	}
	rv := reflect.ValueOf(value)
	if fb.boxed {
		if !rv.Type().AssignableTo(fb.elem) {
			return &UnassignableFieldError{Field: fb.spec.Field, Type: fb.typ, Reason: fmt.Sprintf("value of type %v is not assignable to element type %v", rv.Type(), fb.elem)}
		}
		boxed := reflect.New(fb.elem)
		boxed.Elem().Set(rv)
		field.Set(boxed)
		return nil
	}
	if !rv.Type().AssignableTo(fb.typ) {
		return &UnassignableFieldError{Field: fb.spec.Field, Type: fb.typ, Reason: fmt.Sprintf("value of type %v is not assignable", rv.Type())}
	}
	field.Set(rv)
	return nil
}

// reflectValues converts an argument group to reflect values; nil arguments
// become zero values of the element type.
func reflectValues(group []any, elem reflect.Type) []reflect.Value {
	out := make([]reflect.Value, len(group))
	for i, v := range group {
		if v == nil {
			out[i] = reflect.Zero(elem)
			continue
		}
		out[i] = reflect.ValueOf(v)
	}
	return out
}

// settableStruct unwraps an instance produced by the instantiate callback
// down to the addressable struct the fields are written into.
func settableStruct(instance any, structType reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() {
		return reflect.Value{}, NewInvalidArgumentError("instantiate returned nil")
	}
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, NewInvalidArgumentError("instantiate returned nil")
		}
		rv = rv.Elem()
	}
	if rv.Type() != structType {
		return reflect.Value{}, &IncompatibleTypeError{Type: rv.Type(), Base: structType}
	}
	if !rv.CanSet() {
		return reflect.Value{}, NewInvalidArgumentError("instantiate must return an addressable instance (pointer to struct)")
	}
	return rv, nil
}

// structTypeOf normalizes a prototype (value, pointer or reflect.Type) to
// its underlying struct type.
func structTypeOf(prototype any) (reflect.Type, error) {
	t, ok := prototype.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(prototype)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, NewInvalidArgumentError(fmt.Sprintf("prototype %v is not a struct type", t))
	}
	return t, nil
}

// compatibleWithBase reports whether the struct type or a pointer to it is
// assignable to the factory's base type.
func compatibleWithBase(structType, base reflect.Type) bool {
	if structType.AssignableTo(base) {
		return true
	}
	return reflect.PointerTo(structType).AssignableTo(base)
}
