package typedir

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type Alpha struct{}
type Anchor struct{}
type Abyss struct{}

func TestIdentifierForRoundTrip(t *testing.T) {
	d := New()
	types := []reflect.Type{
		reflect.TypeOf((*int)(nil)).Elem(),
		reflect.TypeOf((*string)(nil)).Elem(),
		reflect.TypeOf((*float64)(nil)).Elem(),
		reflect.TypeOf((*Alpha)(nil)).Elem(),
		reflect.TypeOf((*[]int)(nil)).Elem(),
		reflect.TypeOf((*map[string]bool)(nil)).Elem(),
	}

	seen := make(map[string]bool)
	for _, typ := range types {
		tok, err := d.IdentifierFor(typ)
		if err != nil {
			t.Fatalf("IdentifierFor(%v): %v", typ, err)
		}
		if tok == "" {
			t.Fatalf("IdentifierFor(%v) returned an empty token", typ)
		}
		if strings.Contains(tok, Delimiter) {
			t.Errorf("token %q contains the delimiter", tok)
		}
		if seen[tok] {
			t.Errorf("token %q assigned twice", tok)
		}
		seen[tok] = true

		again, err := d.IdentifierFor(typ)
		if err != nil || again != tok {
			t.Errorf("IdentifierFor(%v) not stable: first %q, then %q (err %v)", typ, tok, again, err)
		}
		got, ok := d.TypeForIdentifier(tok)
		if !ok || got != typ {
			t.Errorf("TypeForIdentifier(%q) = %v, %v, want %v", tok, got, ok, typ)
		}
	}
	if d.Len() != len(types) {
		t.Errorf("Len() = %d, want %d", d.Len(), len(types))
	}
}

func TestCollidingNamesStayUnique(t *testing.T) {
	d := New()
	// All three share the initial 'A' and the same package, exhausting every
	// heuristic candidate for the third type.
	colliding := []reflect.Type{
		reflect.TypeOf((*Alpha)(nil)).Elem(),
		reflect.TypeOf((*Anchor)(nil)).Elem(),
		reflect.TypeOf((*Abyss)(nil)).Elem(),
	}
	tokens := make([]string, len(colliding))
	for i, typ := range colliding {
		tok, err := d.IdentifierFor(typ)
		if err != nil {
			t.Fatalf("IdentifierFor(%v): %v", typ, err)
		}
		tokens[i] = tok
	}
	if tokens[0] != "A" {
		t.Errorf("first colliding type got %q, want %q", tokens[0], "A")
	}
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			if tokens[i] == tokens[j] {
				t.Errorf("tokens %d and %d collide: %q", i, j, tokens[i])
			}
		}
	}
	if !strings.HasPrefix(tokens[2], fallbackMarker) {
		t.Errorf("third colliding type got %q, want a %q-prefixed fallback token", tokens[2], fallbackMarker)
	}
}

func TestTypeForIdentifierUnknown(t *testing.T) {
	d := New()
	if _, ok := d.TypeForIdentifier("never-issued"); ok {
		t.Error("TypeForIdentifier on an unknown token reported ok")
	}
	if _, ok := d.TypeForIdentifier(NilToken); ok {
		t.Error("TypeForIdentifier on the nil token reported ok")
	}
}

func TestIdentifierForNil(t *testing.T) {
	d := New()
	_, err := d.IdentifierFor(nil)
	if err == nil {
		t.Fatal("IdentifierFor(nil) did not fail")
	}
	var missing *MissingTypeError
	if !errors.As(err, &missing) {
		t.Errorf("IdentifierFor(nil) returned %T, want *MissingTypeError", err)
	}
}

func TestNilTokenNeverAssigned(t *testing.T) {
	// A type whose heuristics would collide with the marker namespace must
	// not receive the reserved nil token.
	d := New()
	tok, err := d.IdentifierFor(reflect.TypeOf((*Alpha)(nil)).Elem())
	if err != nil {
		t.Fatalf("IdentifierFor: %v", err)
	}
	if tok == NilToken {
		t.Errorf("heuristic token equals the reserved nil token %q", NilToken)
	}
}
