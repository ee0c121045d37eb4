// Package ir defines the term model and derivation records for peano.
//
// This package contains the closed term families and the types that describe
// a derivation. All other internal packages import ir; ir imports nothing
// internal.
//
// Key design constraints:
//   - Term, Nat and Bool are sealed: Zero, *Succ, True and False are the only
//     variants, so a malformed term cannot be built
//   - Terms are immutable; named constants are shared by reference
//   - Eval is the only crossing from terms to native Go values
//   - Records serialize through MarshalCanonical (RFC 8785), never floats
package ir
