// Package grammar compiles ordered field descriptors into quantified token
// grammars and partitions argument signatures across them.
//
// A grammar is one level of field-sequence quantification: each field
// contributes a single type token with an occurrence range. There is no
// nesting and no alternation; the grammar is anchored and must consume the
// whole signature. Allocation is implemented directly as a greedy-leftmost,
// backtrack-only-as-needed search rather than via a regular-expression
// engine, since the exact backtracking order decides which field receives
// which values.
package grammar

import (
	"fmt"
	"strings"

	"github.com/fhaag/parametrizedobjects/internal/typedir"
)

// Unbounded marks a quantifier with no upper limit.
const Unbounded = -1

// Spec describes one field before compilation. Max 0 means unbounded for
// collection fields and "ignored" for scalars, matching the descriptor
// defaults.
type Spec struct {
	Token      string
	Min        int
	Max        int
	Collection bool
}

// Field is one compiled grammar element: a type token with an occurrence
// quantifier.
type Field struct {
	Token string
	Low   int
	High  int // Unbounded when no upper limit
}

// Grammar is the compiled, anchored token grammar of a shape. Immutable
// after Compile.
type Grammar struct {
	fields []Field
}

// Compile derives the quantified grammar for an ordered field list.
//
// A field becomes a ranged quantifier when it is collection-backed with
// Max != 1, or when Min is 0 (optional field, collection or not). Everything
// else is a mandatory scalar consuming exactly one token. The optional-scalar
// branch deliberately leaves the upper bound open; the factory enforces the
// at-most-one rule at assignment time.
func Compile(specs []Spec) Grammar {
	fields := make([]Field, len(specs))
	for i, s := range specs {
		if (s.Collection && s.Max != 1) || s.Min == 0 {
			high := Unbounded
			if s.Max > 0 {
				high = s.Max
			}
			low := s.Min
			if high != Unbounded && low > high {
				low = high
			}
			fields[i] = Field{Token: s.Token, Low: low, High: high}
			continue
		}
		fields[i] = Field{Token: s.Token, Low: 1, High: 1}
	}
	return Grammar{fields: fields}
}

// Fields returns the compiled quantifier sequence.
func (g Grammar) Fields() []Field {
	return g.fields
}

// Accepts reports whether the grammar consumes sig in full.
func (g Grammar) Accepts(sig Signature) bool {
	_, ok := g.Allocate(sig)
	return ok
}

// Allocate partitions sig into per-field token counts.
//
// Semantics are greedy-leftmost: each field, in declaration order, claims
// the largest count its quantifier and the run of matching tokens allow, and
// gives tokens back only when some later field cannot otherwise reach its
// own minimum over the remainder. The whole signature must be consumed, with
// no gaps and no overlaps. Returns ok=false when no partition exists.
func (g Grammar) Allocate(sig Signature) ([]int, bool) {
	counts := make([]int, len(g.fields))
	if !g.allocate(sig, 0, 0, counts) {
		return nil, false
	}
	return counts, true
}

func (g Grammar) allocate(sig Signature, field, pos int, counts []int) bool {
	if field == len(g.fields) {
		return pos == len(sig)
	}
	f := g.fields[field]
	// Longest run of this field's token starting at pos bounds the claim.
	run := 0
	for pos+run < len(sig) && sig[pos+run] == f.Token {
		run++
	}
	max := run
	if f.High != Unbounded && f.High < max {
		max = f.High
	}
	for take := max; take >= f.Low; take-- {
		counts[field] = take
		if g.allocate(sig, field+1, pos+take, counts) {
			return true
		}
	}
	return false
}

// String renders the grammar for diagnostics, e.g. "i;s{0,};s{2,10}".
func (g Grammar) String() string {
	var b strings.Builder
	for i, f := range g.fields {
		if i > 0 {
			b.WriteString(typedir.Delimiter)
		}
		b.WriteString(f.Token)
		if f.Low == 1 && f.High == 1 {
			continue
		}
		if f.High == Unbounded {
			fmt.Fprintf(&b, "{%d,}", f.Low)
		} else {
			fmt.Fprintf(&b, "{%d,%d}", f.Low, f.High)
		}
	}
	return b.String()
}

// Signature is the ordered token sequence derived from an argument list.
type Signature []string

// String joins the tokens with the directory delimiter. Tokens are
// delimiter-free by construction, so the string form is unambiguous.
func (s Signature) String() string {
	return strings.Join(s, typedir.Delimiter)
}
