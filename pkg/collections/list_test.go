package collections

import (
	"errors"
	"reflect"
	"testing"
)

func TestListBasics(t *testing.T) {
	l := NewList("a", "b")
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	if l.ElemType() != reflect.TypeOf((*string)(nil)).Elem() {
		t.Errorf("ElemType = %v, want string", l.ElemType())
	}
	l.Append("c")
	if !reflect.DeepEqual(l.Items(), []string{"a", "b", "c"}) {
		t.Errorf("Items = %v", l.Items())
	}
	if !reflect.DeepEqual(l.Values(), []any{"a", "b", "c"}) {
		t.Errorf("Values = %v", l.Values())
	}
}

func TestListItemsIsACopy(t *testing.T) {
	l := NewList(1, 2)
	items := l.Items()
	items[0] = 99
	if l.Items()[0] != 1 {
		t.Error("Items exposed the internal slice")
	}
}

func TestListSetValues(t *testing.T) {
	l := NewList[int]()
	if err := l.SetValues([]any{3, 4, 5}); err != nil {
		t.Fatalf("SetValues: %v", err)
	}
	if !reflect.DeepEqual(l.Items(), []int{3, 4, 5}) {
		t.Errorf("Items = %v", l.Items())
	}

	// Repopulation replaces, never appends.
	if err := l.SetValues([]any{6}); err != nil {
		t.Fatalf("SetValues: %v", err)
	}
	if !reflect.DeepEqual(l.Items(), []int{6}) {
		t.Errorf("Items = %v", l.Items())
	}

	err := l.SetValues([]any{"not an int"})
	var mismatch *ElementTypeError
	if !errors.As(err, &mismatch) {
		t.Errorf("SetValues with a foreign element returned %v, want *ElementTypeError", err)
	}
}
