package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for a future encoding change.
const (
	DomainStep = "peano/step/v1"
	DomainRun  = "peano/run/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StepID computes the content-addressed ID of a derivation step.
// Two steps with the same run, position and content share an ID, which
// makes repeated writes of one trace idempotent.
func StepID(s Step) (string, error) {
	canonical, err := MarshalCanonical(s.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("StepID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStep, canonical), nil
}

// ExprHash identifies the source text of a run independently of its ID.
func ExprHash(expr string) string {
	return hashWithDomain(DomainRun, []byte(expr))
}

// MustStepID is like StepID but panics on error.
// Use only in tests or when the step is known to be complete.
func MustStepID(s Step) string {
	id, err := StepID(s)
	if err != nil {
		panic(err)
	}
	return id
}
