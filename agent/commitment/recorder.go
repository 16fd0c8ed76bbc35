// Package commitment persists promised payment dates.
package commitment

import (
	"context"
	"sync"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// MemoryRecorder keeps commitments in process memory. It deliberately does
// not dedupe: two Record calls produce two commitments. Calling it at most
// once per session is the state machine's job, not the recorder's.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []contractx.Commitment
}

var _ contractx.CommitmentRecorder = (*MemoryRecorder)(nil)

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, c contractx.Commitment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, c)
	return nil
}

// All returns a copy of every recorded commitment, in recording order.
func (r *MemoryRecorder) All() []contractx.Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contractx.Commitment, len(r.entries))
	copy(out, r.entries)
	return out
}
