package contract

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModel is the narrow slice of an eino chat model the agent loop needs.
// The model handed in must already have the tool catalog bound.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// Directory resolves customer identifiers to loan records. Implementations
// return ErrCustomerNotFound for identifiers that are not on file.
type Directory interface {
	Lookup(ctx context.Context, customerID string) (CustomerRecord, error)
}

// CommitmentRecorder persists promised payment dates. Recording is NOT
// idempotent: two calls produce two commitments. The session state machine
// is responsible for calling it at most once per call.
type CommitmentRecorder interface {
	Record(ctx context.Context, c Commitment) error
}
