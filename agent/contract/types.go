package contract

import "time"

// CustomerRecord is the read-only loan record served by the customer
// directory. The core never mutates it.
type CustomerRecord struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	TotalDue     float64 `json:"total_due"`
	DueDate      string  `json:"due_date"`
	DPD          int     `json:"dpd"`
}

// Commitment is a caller's promised payment date, captured at most once per
// call session.
type Commitment struct {
	CustomerID  string    `json:"customer_id"`
	PromiseDate string    `json:"promise_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToolResult is what a tool execution hands back to the agent loop.
// Recoverable failures (unknown customer, name mismatch) travel in Error so
// the model can degrade conversationally instead of crashing the turn.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	ToolLookupIdentity    = "lookup_identity"
	ToolLookupLoanDetails = "lookup_loan_details"
	ToolRecordCommitment  = "record_commitment"
)

// ToolCall is the tagged union of the three operations the model may
// propose. The agent loop pattern-matches on the concrete variant instead of
// dispatching on open-ended names.
type ToolCall interface {
	ToolName() string
}

type LookupIdentityCall struct {
	CustomerID string `json:"customer_id"`
}

func (LookupIdentityCall) ToolName() string { return ToolLookupIdentity }

type LookupLoanDetailsCall struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
}

func (LookupLoanDetailsCall) ToolName() string { return ToolLookupLoanDetails }

type RecordCommitmentCall struct {
	CustomerID     string `json:"customer_id"`
	CommitmentDate string `json:"commitment_date"`
}

func (RecordCommitmentCall) ToolName() string { return ToolRecordCommitment }
