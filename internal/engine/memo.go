package engine

import (
	"sync"

	"github.com/roach88/peano/internal/ir"
)

// memoCapacity bounds the number of memoized queries. A full table is
// cleared on the next insert, so a long-lived engine (a shell session)
// does not keep every derived term reachable.
const memoCapacity = 1 << 16

// memoTable caches finished queries by operation and operand identity.
//
// Identity keying only hits when a caller reuses the same term values
// (the named constants, or results fed back in). Structurally equal terms
// built separately miss, which costs time but never correctness: every
// derivation is referentially transparent.
type memoTable struct {
	mu      sync.Mutex
	entries map[queryKey]ir.Term
}

func newMemoTable() *memoTable {
	return &memoTable{entries: make(map[queryKey]ir.Term)}
}

func (m *memoTable) get(op Op, args []ir.Term) (ir.Term, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.entries[keyOf(op, args)]
	return t, ok
}

func (m *memoTable) put(op Op, args []ir.Term, t ir.Term) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyOf(op, args)
	if _, ok := m.entries[k]; !ok && len(m.entries) >= memoCapacity {
		clear(m.entries)
	}
	m.entries[k] = t
}

func (m *memoTable) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
