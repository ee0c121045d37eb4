package ir

import "strings"

// Term is a sealed interface over the two closed term families.
// Only Zero, *Succ, True and False implement it.
type Term interface {
	term() // Sealed - only the four variants implement it
	String() string
}

// Nat is a natural-number term: Zero or Succ(n).
// The represented value is the number of Succ wrappers.
type Nat interface {
	Term
	nat()
}

// Bool is a boolean term: True or False.
type Bool interface {
	Term
	boolean()
}

// Kind classifies a term by family.
type Kind int

const (
	// KindInvalid is returned for a nil term.
	KindInvalid Kind = iota
	// KindNat is the natural-number family.
	KindNat
	// KindBool is the boolean family.
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNat:
		return "nat"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Zero is the natural number 0.
type Zero struct{}

func (Zero) term() {}
func (Zero) nat()  {}

func (Zero) String() string { return "Zero" }

// Succ wraps a natural number, adding one.
// Succ values are immutable; always build them with NewSucc.
type Succ struct {
	inner Nat
}

func (*Succ) term() {}
func (*Succ) nat()  {}

// NewSucc returns Succ(n).
func NewSucc(n Nat) *Succ {
	return &Succ{inner: n}
}

// Inner returns the term wrapped by this successor.
func (s *Succ) Inner() Nat {
	return s.inner
}

// String renders the term structurally, e.g. Succ(Succ(Zero)).
// Iterative so that large terms do not grow the stack.
func (s *Succ) String() string {
	layers := 0
	var cur Nat = s
	for {
		next, ok := cur.(*Succ)
		if !ok {
			break
		}
		layers++
		cur = next.inner
	}

	var b strings.Builder
	b.Grow(layers*6 + 4)
	for range layers {
		b.WriteString("Succ(")
	}
	b.WriteString("Zero")
	b.WriteString(strings.Repeat(")", layers))
	return b.String()
}

// True is the boolean truth value.
type True struct{}

func (True) term()    {}
func (True) boolean() {}

func (True) String() string { return "True" }

// False is the boolean falsity value.
type False struct{}

func (False) term()    {}
func (False) boolean() {}

func (False) String() string { return "False" }

// Named naturals, composed once and shared by reference.
var (
	One   Nat = NewSucc(Zero{})
	Two   Nat = NewSucc(One)
	Three Nat = NewSucc(Two)
	Four  Nat = NewSucc(Three)
	Five  Nat = NewSucc(Four)
	Six   Nat = NewSucc(Five)
	Seven Nat = NewSucc(Six)
	Eight Nat = NewSucc(Seven)
	Nine  Nat = NewSucc(Eight)
	Ten   Nat = NewSucc(Nine)
)

// Constants maps the names accepted by the expression language to terms.
// Order matches numeric value for the naturals.
var Constants = map[string]Term{
	"Zero":  Zero{},
	"One":   One,
	"Two":   Two,
	"Three": Three,
	"Four":  Four,
	"Five":  Five,
	"Six":   Six,
	"Seven": Seven,
	"Eight": Eight,
	"Nine":  Nine,
	"Ten":   Ten,
	"True":  True{},
	"False": False{},
}

// KindOf returns the family of t.
func KindOf(t Term) Kind {
	switch t.(type) {
	case Nat:
		return KindNat
	case Bool:
		return KindBool
	default:
		return KindInvalid
	}
}

// FromUint builds the natural term with n Succ layers.
// This is term construction for callers, not derivation.
func FromUint(n uint64) Nat {
	var t Nat = Zero{}
	for i := uint64(0); i < n; i++ {
		t = NewSucc(t)
	}
	return t
}

// FromBool returns True or False.
func FromBool(b bool) Bool {
	if b {
		return True{}
	}
	return False{}
}

// Equal reports whether a and b are structurally identical terms.
func Equal(a, b Term) bool {
	for {
		switch x := a.(type) {
		case Zero:
			_, ok := b.(Zero)
			return ok
		case *Succ:
			y, ok := b.(*Succ)
			if !ok {
				return false
			}
			if x == y {
				return true
			}
			a, b = x.inner, y.inner
		case True:
			_, ok := b.(True)
			return ok
		case False:
			_, ok := b.(False)
			return ok
		default:
			return false
		}
	}
}
