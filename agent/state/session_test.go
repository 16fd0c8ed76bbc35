package state

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	st := NewStore(WithIDGenerator(func() string { return "sess-1" }))
	sess, err := st.Create("C456")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return sess
}

func identityToolCallMsg() *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID: "call-1",
		Function: schema.FunctionCall{
			Name:      contractx.ToolLookupIdentity,
			Arguments: `{"customer_id":"C456"}`,
		},
	}})
}

func TestSessionInitialPhase(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	if sess.Phase() != PhaseAwaitingIdentity {
		t.Fatalf("new session phase = %q, want %q", sess.Phase(), PhaseAwaitingIdentity)
	}
	if sess.CustomerID() != "C456" {
		t.Fatalf("customer id = %q, want C456", sess.CustomerID())
	}
}

func TestAdmitIdentityLookupAlwaysAllowedWhileOpen(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	if err := sess.Admit(contractx.LookupIdentityCall{CustomerID: "C456"}); err != nil {
		t.Fatalf("Admit(lookup_identity) error = %v", err)
	}
}

func TestAdmitLoanDetailsRejectedBeforeIdentityExchange(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	err := sess.Admit(contractx.LookupLoanDetailsCall{CustomerID: "C456", CustomerName: "Priya Sharma"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	// An identity lookup alone is not enough; the caller must have replied.
	sess.Append(identityToolCallMsg())
	sess.Append(schema.ToolMessage(`{"tool":"lookup_identity","result":{}}`, "call-1"))
	err = sess.Admit(contractx.LookupLoanDetailsCall{CustomerID: "C456", CustomerName: "Priya Sharma"})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation before user reply, got %v", err)
	}

	sess.Append(schema.UserMessage("Yes, speaking."))
	if err := sess.Admit(contractx.LookupLoanDetailsCall{CustomerID: "C456", CustomerName: "Priya Sharma"}); err != nil {
		t.Fatalf("Admit(lookup_loan_details) after exchange error = %v", err)
	}
}

func TestAdvanceLoanDetailsMovesToAwaitingCommitment(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	sess.Advance(contractx.LookupLoanDetailsCall{CustomerID: "C456"})
	if sess.Phase() != PhaseAwaitingCommitment {
		t.Fatalf("phase = %q, want %q", sess.Phase(), PhaseAwaitingCommitment)
	}
}

func TestAdmitCommitmentOnlyInAwaitingCommitment(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	call := contractx.RecordCommitmentCall{CustomerID: "C456", CommitmentDate: "tomorrow"}

	if err := sess.Admit(call); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation before disclosure, got %v", err)
	}

	sess.Advance(contractx.LookupLoanDetailsCall{CustomerID: "C456"})
	if err := sess.Admit(call); err != nil {
		t.Fatalf("Admit(record_commitment) error = %v", err)
	}

	sess.Advance(call)
	if sess.Phase() != PhaseClosed {
		t.Fatalf("phase = %q, want %q", sess.Phase(), PhaseClosed)
	}
	if !sess.CommitmentRecorded() {
		t.Fatal("commitment not marked recorded")
	}
}

func TestAdmitRejectsEverythingWhenClosed(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	sess.Advance(contractx.LookupLoanDetailsCall{CustomerID: "C456"})
	sess.Advance(contractx.RecordCommitmentCall{CustomerID: "C456", CommitmentDate: "tomorrow"})

	calls := []contractx.ToolCall{
		contractx.LookupIdentityCall{CustomerID: "C456"},
		contractx.LookupLoanDetailsCall{CustomerID: "C456"},
		contractx.RecordCommitmentCall{CustomerID: "C456", CommitmentDate: "friday"},
	}
	for _, call := range calls {
		if err := sess.Admit(call); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("Admit(%s) after close: expected ErrValidation, got %v", call.ToolName(), err)
		}
	}
}

func TestHistoryIsAppendOnlyAndCopied(t *testing.T) {
	t.Parallel()

	sess := testSession(t)
	sess.Append(schema.UserMessage("one"))
	sess.Append(schema.UserMessage("two"), schema.UserMessage("three"))

	hist := sess.History()
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	if hist[0].Content != "one" || hist[2].Content != "three" {
		t.Fatalf("history order broken: %q ... %q", hist[0].Content, hist[2].Content)
	}

	// Mutating the returned slice must not touch the session transcript.
	hist[0] = schema.UserMessage("mutated")
	if got := sess.History()[0].Content; got != "one" {
		t.Fatalf("transcript mutated through History copy: %q", got)
	}
}

func TestSessionClockUsed(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	st := NewStore(WithClock(func() time.Time { return fixed }))
	sess, err := st.Create("C123")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.createdAt != fixed {
		t.Fatalf("createdAt = %v, want %v", sess.createdAt, fixed)
	}
}
