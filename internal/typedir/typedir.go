// Package typedir implements the type identifier directory: a bijective
// registry mapping reflect.Type values to short, stable string tokens.
//
// Tokens are assigned on first use and never change for the lifetime of a
// directory. Generation tries a sequence of readable heuristics (first rune
// of the short name, uppercase initials, package-qualified initials) and
// falls back to a counter with a reserved marker prefix when every heuristic
// candidate is already taken. Uniqueness and stability are the only semantic
// requirements; readability is best effort.
package typedir

import (
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Delimiter separates tokens inside a signature string. Generated tokens
// never contain it.
const Delimiter = ";"

// fallbackMarker prefixes counter-based tokens. Heuristic tokens are
// stripped of leading markers during sanitization, so the two namespaces
// cannot collide.
const fallbackMarker = "%"

// NilToken is the token assigned to arguments whose runtime type is unknown
// (untyped nil). It lives in the marker namespace and is never assigned to a
// real type, so a signature containing it matches no field token.
const NilToken = fallbackMarker + "nil"

// MissingTypeError indicates a nil type was passed where a concrete type is
// required.
type MissingTypeError struct{}

func (e *MissingTypeError) Error() string {
	return "type must not be nil"
}

func NewMissingTypeError() *MissingTypeError {
	return &MissingTypeError{}
}

// Directory is a bijective type-to-token registry. It is not safe for
// concurrent use; the owning factory serializes access.
type Directory struct {
	tokens  map[reflect.Type]string
	types   map[string]reflect.Type
	counter int
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{
		tokens: make(map[reflect.Type]string),
		types:  make(map[string]reflect.Type),
	}
}

// IdentifierFor returns the token assigned to t, assigning and storing one
// on first use. Repeated calls with the same type return the same token.
func (d *Directory) IdentifierFor(t reflect.Type) (string, error) {
	if t == nil {
		return "", NewMissingTypeError()
	}
	if tok, ok := d.tokens[t]; ok {
		return tok, nil
	}
	tok := d.generate(t)
	d.tokens[t] = tok
	d.types[tok] = t
	return tok, nil
}

// TypeForIdentifier resolves a previously issued token back to its type.
// Unknown tokens report ok=false.
func (d *Directory) TypeForIdentifier(token string) (reflect.Type, bool) {
	t, ok := d.types[token]
	return t, ok
}

// Len reports the number of registered types.
func (d *Directory) Len() int {
	return len(d.tokens)
}

func (d *Directory) generate(t reflect.Type) string {
	for _, cand := range candidates(t) {
		if cand == "" || cand == NilToken {
			continue
		}
		if _, taken := d.types[cand]; !taken {
			return cand
		}
	}
	for {
		d.counter++
		tok := fallbackMarker + strconv.Itoa(d.counter)
		if _, taken := d.types[tok]; !taken {
			return tok
		}
	}
}

// candidates returns the heuristic token candidates for t, most readable
// first. Entries may be empty; the caller skips them.
func candidates(t reflect.Type) []string {
	short := shortName(t)
	return []string{
		sanitize(firstRune(short)),
		sanitize(upperInitials(short)),
		sanitize(qualifiedInitials(t)),
	}
}

func shortName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	// Unnamed types (slices, maps, pointers) fall back to the full spelling.
	return t.String()
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

func upperInitials(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// qualifiedInitials builds a namespace acronym from the package-qualified
// name: the first rune of every path segment, uppercased.
func qualifiedInitials(t reflect.Type) string {
	qualified := shortName(t)
	if pp := t.PkgPath(); pp != "" {
		qualified = pp + "." + qualified
	}
	var b strings.Builder
	start := true
	for _, r := range qualified {
		switch r {
		case '/', '.', '-', '_':
			start = true
		default:
			if start {
				b.WriteRune(unicode.ToUpper(r))
				start = false
			}
		}
	}
	return b.String()
}

// sanitize keeps heuristic candidates out of the delimiter and marker
// namespaces.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, Delimiter, "")
	return strings.TrimLeft(s, fallbackMarker)
}
