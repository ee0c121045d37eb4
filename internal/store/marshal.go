package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/peano/internal/ir"
)

// marshalTerm converts a term to canonical JSON TEXT for storage.
// Naturals store as integers, booleans as true/false.
func marshalTerm(t ir.Term) (string, error) {
	data, err := ir.MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("marshal term: %w", err)
	}
	return string(data), nil
}

// marshalTerms converts operands to a canonical JSON array.
func marshalTerms(ts []ir.Term) (string, error) {
	if ts == nil {
		ts = []ir.Term{}
	}
	data, err := ir.MarshalCanonical(ts)
	if err != nil {
		return "", fmt.Errorf("marshal terms: %w", err)
	}
	return string(data), nil
}

// unmarshalTerm rebuilds a term from its stored JSON.
// Uses json.Number so naturals above 2^53 keep their exact value.
func unmarshalTerm(data string) (ir.Term, error) {
	var v any
	if err := decodeJSON(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal term: %w", err)
	}
	return termFromJSON(v)
}

// unmarshalTerms rebuilds an operand list from its stored JSON array.
func unmarshalTerms(data string) ([]ir.Term, error) {
	var vs []any
	if err := decodeJSON(data, &vs); err != nil {
		return nil, fmt.Errorf("unmarshal terms: %w", err)
	}
	out := make([]ir.Term, len(vs))
	for i, v := range vs {
		t, err := termFromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("unmarshal terms[%d]: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	return dec.Decode(v)
}

func termFromJSON(v any) (ir.Term, error) {
	switch v := v.(type) {
	case bool:
		return ir.FromBool(v), nil
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("natural %s: %w", v, err)
		}
		return ir.FromUint(n), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", v)
	}
}
