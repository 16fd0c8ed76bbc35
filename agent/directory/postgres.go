package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`

	CustomerID   string  `bun:"customer_id,pk"`
	CustomerName string  `bun:"customer_name,notnull"`
	TotalDue     float64 `bun:"total_due,notnull"`
	DueDate      string  `bun:"due_date,notnull"`
	DPD          int     `bun:"dpd,notnull,default:0"`
}

// PostgresDirectory serves customer records from a customers table. Used
// when the deployment keeps loan books in Postgres instead of a flat file.
type PostgresDirectory struct {
	db *bun.DB
}

var _ contractx.Directory = (*PostgresDirectory)(nil)

func NewPostgresDirectory(db *bun.DB) (*PostgresDirectory, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresDirectory{db: db}, nil
}

func (d *PostgresDirectory) Lookup(ctx context.Context, customerID string) (contractx.CustomerRecord, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return contractx.CustomerRecord{}, contractx.ErrInvalidCustomer
	}

	var row customerRow
	err := d.db.NewSelect().
		Model(&row).
		Where("customer_id = ?", customerID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.CustomerRecord{}, fmt.Errorf("%w: %s", contractx.ErrCustomerNotFound, customerID)
	}
	if err != nil {
		return contractx.CustomerRecord{}, fmt.Errorf("select customer %s: %w", customerID, err)
	}

	return contractx.CustomerRecord{
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		TotalDue:     row.TotalDue,
		DueDate:      row.DueDate,
		DPD:          row.DPD,
	}, nil
}
