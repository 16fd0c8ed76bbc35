package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// Gateway executes typed tool calls against the customer directory and the
// commitment recorder. Every tool is a pure function over its explicit
// inputs plus the read-only directory; nothing here touches session state.
//
// Recoverable failures come back in ToolResult.Error so the agent can relay
// a polite utterance instead of crashing the turn. A non-nil Go error means
// infrastructure broke.
type Gateway struct {
	directory   contractx.Directory
	commitments contractx.CommitmentRecorder

	now func() time.Time
}

func NewGateway(directory contractx.Directory, commitments contractx.CommitmentRecorder) (*Gateway, error) {
	if directory == nil {
		return nil, errors.New("customer directory is required")
	}
	if commitments == nil {
		return nil, errors.New("commitment recorder is required")
	}
	return &Gateway{
		directory:   directory,
		commitments: commitments,
		now:         time.Now,
	}, nil
}

func (g *Gateway) Execute(ctx context.Context, call contractx.ToolCall) (contractx.ToolResult, error) {
	switch c := call.(type) {
	case contractx.LookupIdentityCall:
		return g.lookupIdentity(ctx, c)
	case contractx.LookupLoanDetailsCall:
		return g.lookupLoanDetails(ctx, c)
	case contractx.RecordCommitmentCall:
		return g.recordCommitment(ctx, c)
	default:
		return contractx.ToolResult{}, fmt.Errorf("%w: unsupported tool call %q", contractx.ErrValidation, call.ToolName())
	}
}

func (g *Gateway) lookupIdentity(ctx context.Context, call contractx.LookupIdentityCall) (contractx.ToolResult, error) {
	rec, err := g.directory.Lookup(ctx, strings.TrimSpace(call.CustomerID))
	if errors.Is(err, contractx.ErrCustomerNotFound) || errors.Is(err, contractx.ErrInvalidCustomer) {
		return contractx.ToolResult{
			Tool:  call.ToolName(),
			Error: "customer id not found",
		}, nil
	}
	if err != nil {
		return contractx.ToolResult{}, err
	}

	return contractx.ToolResult{
		Tool: call.ToolName(),
		Result: map[string]any{
			"customer_id":   rec.CustomerID,
			"customer_name": rec.CustomerName,
		},
	}, nil
}

func (g *Gateway) lookupLoanDetails(ctx context.Context, call contractx.LookupLoanDetailsCall) (contractx.ToolResult, error) {
	rec, err := g.directory.Lookup(ctx, strings.TrimSpace(call.CustomerID))
	if errors.Is(err, contractx.ErrCustomerNotFound) || errors.Is(err, contractx.ErrInvalidCustomer) {
		return contractx.ToolResult{
			Tool:  call.ToolName(),
			Error: "no due amount found",
		}, nil
	}
	if err != nil {
		return contractx.ToolResult{}, err
	}

	if !strings.EqualFold(strings.TrimSpace(call.CustomerName), rec.CustomerName) {
		return contractx.ToolResult{
			Tool:  call.ToolName(),
			Error: "no due amount found",
		}, nil
	}

	return contractx.ToolResult{
		Tool: call.ToolName(),
		Result: map[string]any{
			"customer_name": rec.CustomerName,
			"total_due":     rec.TotalDue,
			"due_date":      rec.DueDate,
			"dpd":           rec.DPD,
		},
	}, nil
}

func (g *Gateway) recordCommitment(ctx context.Context, call contractx.RecordCommitmentCall) (contractx.ToolResult, error) {
	customerID := strings.TrimSpace(call.CustomerID)
	promiseDate := strings.TrimSpace(call.CommitmentDate)
	if customerID == "" || promiseDate == "" {
		return contractx.ToolResult{
			Tool:  call.ToolName(),
			Error: "customer id and commitment date are required",
		}, nil
	}

	err := g.commitments.Record(ctx, contractx.Commitment{
		CustomerID:  customerID,
		PromiseDate: promiseDate,
		CreatedAt:   g.now().UTC(),
	})
	if err != nil {
		return contractx.ToolResult{}, err
	}

	return contractx.ToolResult{
		Tool:   call.ToolName(),
		Result: fmt.Sprintf("commitment for %s noted", customerID),
	}, nil
}
