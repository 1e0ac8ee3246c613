package shapes

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fhaag/parametrizedobjects/pkg/collections"
)

type segment struct {
	Name   string
	Points []float64
}

const segmentManifest = `
shapes:
  - type: Segment
    fields:
      - field: Name
        sort: 0
      - field: Points
        sort: 1
        min: 2
        max: 10
`

func TestRegisterManifest(t *testing.T) {
	m, err := ParseManifest([]byte(segmentManifest))
	require.NoError(t, err)

	f := New[any]()
	err = f.RegisterManifest(m, map[string]any{"Segment": segment{}})
	require.NoError(t, err)

	got, err := f.Create([]any{"left", 1.0, 2.0})
	require.NoError(t, err)
	seg := got.(*segment)
	assert.Equal(t, "left", seg.Name)
	assert.Equal(t, []float64{1.0, 2.0}, seg.Points)

	// Omitted min defaults to 1: the name is mandatory.
	_, err = f.Create([]any{1.0, 2.0})
	var noShape *NoSuitableShapeError
	assert.ErrorAs(t, err, &noShape)
}

func TestRegisterManifestElementReference(t *testing.T) {
	manifest := `
shapes:
  - type: Bag
    fields:
      - field: Items
        sort: 0
        element: Int
`
	m, err := ParseManifest([]byte(manifest))
	require.NoError(t, err)

	f := New[any]()
	err = f.RegisterManifest(m, map[string]any{
		"Bag": bagShape{},
		"Int": reflect.TypeOf((*int)(nil)).Elem(),
	})
	require.NoError(t, err)

	got, err := f.CreateContext([]any{4, 5}, nil, func(_ reflect.Type, _ any) (any, error) {
		return &bagShape{Items: collections.NewList[int]()}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{4, 5}, got.(*bagShape).Items.Values())
}

func TestParseManifestRejectsMalformedInput(t *testing.T) {
	var invalid *InvalidArgumentError

	_, err := ParseManifest([]byte("shapes: [what"))
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseManifest([]byte("shapes: []"))
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseManifest([]byte("shapes:\n  - fields:\n      - field: A\n"))
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseManifest([]byte("shapes:\n  - type: T\n"))
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseManifest([]byte("shapes:\n  - type: T\n    fields:\n      - sort: 0\n"))
	assert.ErrorAs(t, err, &invalid)

	_, err = ParseManifest([]byte("shapes:\n  - type: T\n    fields:\n      - field: A\n        min: -1\n"))
	assert.ErrorAs(t, err, &invalid)
}

func TestRegisterManifestUnknownTypes(t *testing.T) {
	m, err := ParseManifest([]byte(segmentManifest))
	require.NoError(t, err)

	f := New[any]()
	err = f.RegisterManifest(m, map[string]any{})
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)

	err = f.RegisterManifest(nil, map[string]any{})
	assert.ErrorAs(t, err, &invalid)
	assert.Empty(t, f.Shapes())
}
