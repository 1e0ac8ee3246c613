package shapes

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML authoring surface for shape registration. It is one
// of several ways to produce field specs; hosts that declare descriptors in
// code bypass it entirely.
//
// Example:
//
//	shapes:
//	  - type: Segment
//	    fields:
//	      - field: Name
//	        sort: 0
//	      - field: Points
//	        sort: 1
//	        min: 2
//	        max: 10
type Manifest struct {
	Shapes []ManifestShape `yaml:"shapes"`
}

// ManifestShape declares one shape by type-index name.
type ManifestShape struct {
	// Type is the key under which the host registered the prototype in the
	// type index.
	Type string `yaml:"type"`

	Fields []ManifestField `yaml:"fields"`
}

// ManifestField declares one parameter field.
type ManifestField struct {
	Field string `yaml:"field"`
	Sort  int    `yaml:"sort"`

	// Min defaults to 1 when omitted. Max 0 means unbounded for collection
	// fields.
	Min *int `yaml:"min,omitempty"`
	Max int  `yaml:"max,omitempty"`

	// Element names a type-index entry supplying the element type for
	// fields where inference fails (interface container fields).
	Element string `yaml:"element,omitempty"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, NewInvalidArgumentError(fmt.Sprintf("manifest: %v", err))
	}
	if len(m.Shapes) == 0 {
		return nil, NewInvalidArgumentError("manifest declares no shapes")
	}
	for i, s := range m.Shapes {
		if s.Type == "" {
			return nil, NewInvalidArgumentError(fmt.Sprintf("manifest shape %d has no type", i))
		}
		if len(s.Fields) == 0 {
			return nil, NewInvalidArgumentError(fmt.Sprintf("manifest shape %s has no fields", s.Type))
		}
		for j, fl := range s.Fields {
			if fl.Field == "" {
				return nil, NewInvalidArgumentError(fmt.Sprintf("manifest shape %s field %d has no name", s.Type, j))
			}
			if fl.Min != nil && *fl.Min < 0 || fl.Max < 0 {
				return nil, NewInvalidArgumentError(fmt.Sprintf("manifest shape %s field %s has a negative arity bound", s.Type, fl.Field))
			}
		}
	}
	return &m, nil
}

// RegisterManifest registers every shape in the manifest. typeIndex maps
// manifest type names to prototypes (values, pointers or reflect.Type),
// since Go cannot resolve types by name at runtime.
func (f *Factory[T]) RegisterManifest(m *Manifest, typeIndex map[string]any) error {
	if m == nil {
		return NewInvalidArgumentError("manifest must not be nil")
	}
	for _, ms := range m.Shapes {
		prototype, ok := typeIndex[ms.Type]
		if !ok {
			return NewInvalidArgumentError(fmt.Sprintf("manifest shape %s is not in the type index", ms.Type))
		}
		specs := make([]FieldSpec, len(ms.Fields))
		for i, fl := range ms.Fields {
			spec := FieldSpec{
				Field:    fl.Field,
				SortKey:  fl.Sort,
				MinCount: 1,
				MaxCount: fl.Max,
			}
			if fl.Min != nil {
				spec.MinCount = *fl.Min
			}
			if fl.Element != "" {
				elem, ok := typeIndex[fl.Element]
				if !ok {
					return NewInvalidArgumentError(fmt.Sprintf("manifest shape %s field %s: element %s is not in the type index", ms.Type, fl.Field, fl.Element))
				}
				spec.ElementType = typeOfIndexEntry(elem)
			}
			specs[i] = spec
		}
		if _, err := f.RegisterShape(prototype, specs...); err != nil {
			return fmt.Errorf("manifest shape %s: %w", ms.Type, err)
		}
	}
	return nil
}

func typeOfIndexEntry(entry any) reflect.Type {
	if t, ok := entry.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(entry)
}
