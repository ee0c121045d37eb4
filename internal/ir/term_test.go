package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermSealed(t *testing.T) {
	// Compile-time check that all four variants satisfy their families
	var _ Nat = Zero{}
	var _ Nat = NewSucc(Zero{})
	var _ Bool = True{}
	var _ Bool = False{}
}

func TestConstants_Values(t *testing.T) {
	named := []Nat{Zero{}, One, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten}
	for want, n := range named {
		assert.Equal(t, uint64(want), EvalNat(n), "constant %d", want)
	}
}

func TestConstants_SharedByReference(t *testing.T) {
	// Each named constant wraps the previous one rather than a copy
	assert.Same(t, One, Two.(*Succ).Inner())
	assert.Same(t, Nine, Ten.(*Succ).Inner())
}

func TestConstants_Map(t *testing.T) {
	assert.Len(t, Constants, 13)
	assert.Same(t, Seven, Constants["Seven"])
	assert.Equal(t, True{}, Constants["True"])
}

func TestSucc_String(t *testing.T) {
	assert.Equal(t, "Zero", Zero{}.String())
	assert.Equal(t, "Succ(Zero)", One.String())
	assert.Equal(t, "Succ(Succ(Succ(Zero)))", Three.String())
	assert.Equal(t, "True", True{}.String())
	assert.Equal(t, "False", False{}.String())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNat, KindOf(Zero{}))
	assert.Equal(t, KindNat, KindOf(Five))
	assert.Equal(t, KindBool, KindOf(True{}))
	assert.Equal(t, KindBool, KindOf(False{}))
	assert.Equal(t, KindInvalid, KindOf(nil))

	assert.Equal(t, "nat", KindNat.String())
	assert.Equal(t, "bool", KindBool.String())
	assert.Equal(t, "invalid", KindInvalid.String())
}

func TestFromUint(t *testing.T) {
	for _, n := range []uint64{0, 1, 7, 42, 500} {
		got := FromUint(n)
		assert.Equal(t, n, EvalNat(got))
	}
	assert.True(t, Equal(FromUint(10), Ten))
}

func TestFromBool(t *testing.T) {
	assert.Equal(t, True{}, FromBool(true))
	assert.Equal(t, False{}, FromBool(false))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Term
		want bool
	}{
		{"zero zero", Zero{}, Zero{}, true},
		{"same pointer", Five, Five, true},
		{"structurally equal", FromUint(5), Five, true},
		{"different magnitude", Four, Five, false},
		{"zero vs succ", Zero{}, One, false},
		{"succ vs zero", One, Zero{}, false},
		{"true true", True{}, True{}, true},
		{"false false", False{}, False{}, true},
		{"true false", True{}, False{}, false},
		{"nat vs bool", Zero{}, False{}, false},
		{"bool vs nat", True{}, One, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestEval(t *testing.T) {
	assert.Equal(t, uint64(3), Eval(Three))
	assert.Equal(t, uint64(0), Eval(Zero{}))
	assert.Equal(t, true, Eval(True{}))
	assert.Equal(t, false, Eval(False{}))

	require.Panics(t, func() { Eval(nil) })
}

func TestEvalNat_Deep(t *testing.T) {
	// Reification is iterative; a deep term must not blow the stack
	n := FromUint(1 << 16)
	assert.Equal(t, uint64(1<<16), EvalNat(n))
}
