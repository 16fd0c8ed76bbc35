package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// Phase is the lifecycle position of a call session. The machine only ever
// moves forward: AwaitingIdentity -> AwaitingCommitment -> Closed.
type Phase string

const (
	PhaseAwaitingIdentity   Phase = "awaiting_identity"
	PhaseAwaitingCommitment Phase = "awaiting_commitment"
	PhaseClosed             Phase = "closed"
)

// Session is one ongoing call: an opaque identifier, the customer it is
// bound to for its whole lifetime, and an append-only ordered transcript.
//
// The embedded mutex guards the fields; turnMu serializes whole turns so two
// concurrent requests on the same session cannot interleave history.
type Session struct {
	mu     sync.Mutex
	turnMu sync.Mutex

	id         string
	customerID string
	phase      Phase

	messages           []*schema.Message
	commitmentRecorded bool

	createdAt time.Time
	updatedAt time.Time

	now func() time.Time
}

func newSession(id, customerID string, now func() time.Time) *Session {
	t := now().UTC()
	return &Session{
		id:         id,
		customerID: customerID,
		phase:      PhaseAwaitingIdentity,
		messages:   make([]*schema.Message, 0, 16),
		createdAt:  t,
		updatedAt:  t,
		now:        now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CustomerID() string { return s.customerID }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) CommitmentRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitmentRecorded
}

// LockTurn acquires the per-session turn lock. Exactly one turn runs on a
// session at a time; requests for different sessions proceed concurrently.
func (s *Session) LockTurn() { s.turnMu.Lock() }

func (s *Session) UnlockTurn() { s.turnMu.Unlock() }

// Append adds messages to the transcript, preserving order. Messages are
// immutable once appended; the transcript never shrinks or reorders.
func (s *Session) Append(msgs ...*schema.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
	s.updatedAt = s.now().UTC()
}

// History returns a copy of the ordered transcript.
func (s *Session) History() []*schema.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Admit validates a proposed tool call against the current phase. The model's
// choice is a proposal, not a command: out-of-phase proposals are rejected
// here and never executed.
func (s *Session) Admit(call contractx.ToolCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseClosed {
		return fmt.Errorf("%w: call is closed, no further tool calls", contractx.ErrValidation)
	}

	switch call.(type) {
	case contractx.LookupIdentityCall:
		return nil
	case contractx.LookupLoanDetailsCall:
		if s.phase == PhaseAwaitingCommitment {
			return nil
		}
		if !s.identityExchangeLocked() {
			return fmt.Errorf("%w: loan details requested before identity confirmation", contractx.ErrValidation)
		}
		return nil
	case contractx.RecordCommitmentCall:
		if s.phase != PhaseAwaitingCommitment {
			return fmt.Errorf("%w: commitment recorded before loan disclosure", contractx.ErrValidation)
		}
		if s.commitmentRecorded {
			return fmt.Errorf("%w: commitment already recorded for this call", contractx.ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown tool call %q", contractx.ErrValidation, call.ToolName())
	}
}

// Advance applies the phase transition for a tool call that executed
// successfully. Failed executions (ToolResult.Error set) must not advance:
// a name mismatch means identity was never actually confirmed.
func (s *Session) Advance(call contractx.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch call.(type) {
	case contractx.LookupLoanDetailsCall:
		if s.phase == PhaseAwaitingIdentity {
			s.phase = PhaseAwaitingCommitment
		}
	case contractx.RecordCommitmentCall:
		s.commitmentRecorded = true
		s.phase = PhaseClosed
	}
	s.updatedAt = s.now().UTC()
}

// identityExchangeLocked reports whether the transcript already holds an
// identity-confirmation exchange: a lookup_identity call that was answered,
// followed by at least one caller message. Caller must hold s.mu.
func (s *Session) identityExchangeLocked() bool {
	answeredAt := -1
	for i, msg := range s.messages {
		if msg == nil {
			continue
		}
		if msg.Role != schema.Assistant {
			continue
		}
		for _, tc := range msg.ToolCalls {
			if tc.Function.Name == contractx.ToolLookupIdentity {
				answeredAt = i
			}
		}
	}
	if answeredAt < 0 {
		return false
	}
	for _, msg := range s.messages[answeredAt+1:] {
		if msg != nil && msg.Role == schema.User {
			return true
		}
	}
	return false
}
