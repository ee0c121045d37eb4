// Package fizzbuzz classifies naturals by composing engine operations.
//
// It is the end-to-end check that the primitives compose: divisibility is
// derived with Mod and Equals, the combined case with AndAlso, and the
// label is picked by the If selection lifted to strings.
package fizzbuzz

import (
	"fmt"
	"strconv"

	"github.com/roach88/peano/internal/engine"
	"github.com/roach88/peano/internal/expr"
	"github.com/roach88/peano/internal/ir"
)

// MaxNumber is the largest number a sequence may reach. Every number is
// built as a unary term, so it shares the expression literal bound.
const MaxNumber = expr.MaxLiteral

// Labels.
const (
	Fizz     = "Fizz"
	Buzz     = "Buzz"
	FizzBuzz = "FizzBuzz"
)

// Classify returns Fizz, Buzz, FizzBuzz or the decimal numeral of n.
func Classify(run *engine.Run, n ir.Nat) (string, error) {
	fizz, err := divisible(run, n, ir.Three)
	if err != nil {
		return "", err
	}
	buzz, err := divisible(run, n, ir.Five)
	if err != nil {
		return "", err
	}
	both, err := run.Resolve(engine.OpAndAlso, fizz, buzz)
	if err != nil {
		return "", err
	}

	numeral := strconv.FormatUint(ir.EvalNat(n), 10)
	return engine.Select(both.(ir.Bool), FizzBuzz,
		engine.Select(fizz, Fizz,
			engine.Select(buzz, Buzz, numeral))), nil
}

// divisible derives Equals(Mod(n, d), Zero).
func divisible(run *engine.Run, n, d ir.Nat) (ir.Bool, error) {
	rem, err := run.Resolve(engine.OpMod, n, d)
	if err != nil {
		return nil, err
	}
	eq, err := run.Resolve(engine.OpEquals, rem, ir.Zero{})
	if err != nil {
		return nil, err
	}
	return eq.(ir.Bool), nil
}

// CheckRange reports whether from..to is a non-empty range within MaxNumber.
func CheckRange(from, to uint64) error {
	if from > to {
		return fmt.Errorf("from %d is greater than to %d", from, to)
	}
	if to > MaxNumber {
		return fmt.Errorf("to %d is above the maximum %d", to, MaxNumber)
	}
	return nil
}

// Sequence classifies from..to inclusive, one run per number.
func Sequence(eng *engine.Engine, from, to uint64) ([]string, error) {
	if err := CheckRange(from, to); err != nil {
		return nil, fmt.Errorf("fizzbuzz: %w", err)
	}
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		label, err := Classify(eng.NewRun(), ir.FromUint(i))
		if err != nil {
			return nil, fmt.Errorf("fizzbuzz: classify %d: %w", i, err)
		}
		out = append(out, label)
	}
	return out, nil
}
