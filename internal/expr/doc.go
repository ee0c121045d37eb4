// Package expr parses and evaluates Peano expressions such as
//
//	Mod(Plus(Four, 3), Succ(Two))
//
// The grammar is a subset of CUE expression syntax, parsed with the CUE
// parser: calls of the engine operations, the constants Zero through Ten,
// True and False (or true and false), Succ(x) as a constructor, and
// non-negative integer literals up to MaxLiteral. Operand families are
// checked when the expression is parsed, so evaluation only fails for
// resource reasons.
//
// Evaluation is eager and innermost first: every argument is reduced to a
// term before the enclosing operation is resolved. The whole expression is
// one engine run.
package expr
