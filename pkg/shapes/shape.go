package shapes

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/fhaag/parametrizedobjects/internal/grammar"
	"github.com/fhaag/parametrizedobjects/pkg/collections"
)

// FieldSpec describes one parameter field of a shape.
//
// MinCount and MaxCount bound how many argument values the field may
// consume. MaxCount 0 means unbounded for collection fields and is ignored
// for mandatory scalars. A zero MinCount makes the field optional; use the
// Field/OptionalField/CollectionField constructors to get the conventional
// defaults.
type FieldSpec struct {
	// Field is the struct field name. The field must be exported.
	Field string

	// SortKey orders fields within the shape. Equal keys keep the order in
	// which the specs were passed to RegisterShape.
	SortKey int

	MinCount int
	MaxCount int

	// ElementType overrides element type inference. Required only when the
	// field type alone does not determine it, e.g. interface container
	// fields.
	ElementType reflect.Type
}

// Field returns a mandatory scalar field spec (MinCount 1).
func Field(name string, sortKey int) FieldSpec {
	return FieldSpec{Field: name, SortKey: sortKey, MinCount: 1}
}

// OptionalField returns an optional field spec (MinCount 0).
func OptionalField(name string, sortKey int) FieldSpec {
	return FieldSpec{Field: name, SortKey: sortKey}
}

// CollectionField returns a field spec with explicit arity bounds. maxCount
// 0 means unbounded.
func CollectionField(name string, sortKey, minCount, maxCount int) FieldSpec {
	return FieldSpec{Field: name, SortKey: sortKey, MinCount: minCount, MaxCount: maxCount}
}

// fieldBinding is a FieldSpec resolved against the shape's struct type.
type fieldBinding struct {
	spec     FieldSpec
	index    []int
	typ      reflect.Type
	elem     reflect.Type
	adapter  *collections.Adapter
	nillable bool
	// boxed marks scalar pointer fields matched by their element type; the
	// single value is wrapped in a fresh pointer on assignment.
	boxed bool
}

// Shape is a registered candidate type with its compiled grammar. Immutable
// after registration.
type Shape struct {
	id      uuid.UUID
	typ     reflect.Type // struct type
	fields  []fieldBinding
	grammar grammar.Grammar
}

// ID returns the handle assigned at registration.
func (s *Shape) ID() uuid.UUID {
	return s.id
}

// Type returns the shape's struct type.
func (s *Shape) Type() reflect.Type {
	return s.typ
}

// Fields returns the field specs in allocation order.
func (s *Shape) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	for i, fb := range s.fields {
		out[i] = fb.spec
	}
	return out
}

// Grammar renders the compiled grammar for diagnostics.
func (s *Shape) Grammar() string {
	return s.grammar.String()
}

func (s *Shape) String() string {
	return fmt.Sprintf("%v [%s]", s.typ, s.id)
}

// newShape resolves the field specs against structType, sorts them and
// compiles the grammar. dir assigns tokens for the element types.
func (f *Factory[T]) newShape(structType reflect.Type, specs []FieldSpec) (*Shape, error) {
	if len(specs) == 0 {
		return nil, NewInvalidArgumentError("shape has no parameter fields")
	}
	ordered := make([]FieldSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortKey < ordered[j].SortKey
	})

	bindings := make([]fieldBinding, len(ordered))
	gspecs := make([]grammar.Spec, len(ordered))
	for i, spec := range ordered {
		fb, err := f.bindField(structType, spec)
		if err != nil {
			return nil, err
		}
		token, err := f.dir.IdentifierFor(fb.elem)
		if err != nil {
			return nil, NewInvalidArgumentError(fmt.Sprintf("field %s: %v", spec.Field, err))
		}
		bindings[i] = fb
		gspecs[i] = grammar.Spec{
			Token:      token,
			Min:        spec.MinCount,
			Max:        spec.MaxCount,
			Collection: fb.adapter != nil,
		}
	}

	return &Shape{
		id:      uuid.New(),
		typ:     structType,
		fields:  bindings,
		grammar: grammar.Compile(gspecs),
	}, nil
}

// bindField resolves one spec against the struct type and determines its
// element type and collection capabilities.
func (f *Factory[T]) bindField(structType reflect.Type, spec FieldSpec) (fieldBinding, error) {
	if spec.Field == "" {
		return fieldBinding{}, NewInvalidArgumentError("field spec without a field name")
	}
	if spec.MinCount < 0 || spec.MaxCount < 0 {
		return fieldBinding{}, NewInvalidArgumentError(fmt.Sprintf("field %s: negative arity bound", spec.Field))
	}
	sf, ok := structType.FieldByName(spec.Field)
	if !ok {
		return fieldBinding{}, NewInvalidArgumentError(fmt.Sprintf("type %v has no field %s", structType, spec.Field))
	}
	if !sf.IsExported() {
		return fieldBinding{}, NewInvalidArgumentError(fmt.Sprintf("field %s of %v is not exported", spec.Field, structType))
	}

	fb := fieldBinding{
		spec:     spec,
		index:    sf.Index,
		typ:      sf.Type,
		adapter:  collections.Recognize(sf.Type, f.recognizers),
		nillable: nillableKind(sf.Type.Kind()),
	}
	switch {
	case spec.ElementType != nil:
		fb.elem = spec.ElementType
	case fb.adapter != nil:
		if fb.adapter.Elem == nil {
			return fieldBinding{}, NewInvalidArgumentError(fmt.Sprintf("field %s: element type cannot be inferred from %v", spec.Field, sf.Type))
		}
		fb.elem = fb.adapter.Elem
	case sf.Type.Kind() == reflect.Pointer:
		// Nullable scalar: matched by the pointed-to type, assigned boxed.
		fb.elem = sf.Type.Elem()
		fb.boxed = true
	default:
		fb.elem = sf.Type
	}
	return fb, nil
}

func nillableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	}
	return false
}
