package commitment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

type commitmentRow struct {
	bun.BaseModel `bun:"table:commitments"`

	ID          int64     `bun:"id,pk,autoincrement"`
	CustomerID  string    `bun:"customer_id,notnull"`
	PromiseDate string    `bun:"promise_date,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

// PostgresRecorder writes commitments to a commitments table. Like the
// in-memory recorder, each Record call inserts a new row.
type PostgresRecorder struct {
	db *bun.DB
}

var _ contractx.CommitmentRecorder = (*PostgresRecorder)(nil)

func NewPostgresRecorder(ctx context.Context, db *bun.DB) (*PostgresRecorder, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if _, err := db.NewCreateTable().
		Model((*commitmentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create commitments table: %w", err)
	}
	return &PostgresRecorder{db: db}, nil
}

func (r *PostgresRecorder) Record(ctx context.Context, c contractx.Commitment) error {
	row := commitmentRow{
		CustomerID:  c.CustomerID,
		PromiseDate: c.PromiseDate,
		CreatedAt:   c.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert commitment for %s: %w", c.CustomerID, err)
	}
	return nil
}
