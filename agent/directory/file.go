// Package directory provides customer-record lookups for the call flow.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	contractx "github.com/abcfin/collectcall/agent/contract"
)

// FileDirectory serves customer records from a JSON file keyed by customer
// id. The file is read once at construction; records are immutable.
type FileDirectory struct {
	records map[string]contractx.CustomerRecord
}

var _ contractx.Directory = (*FileDirectory)(nil)

// LoadFile reads a directory file of the shape
//
//	{"C456": {"customer_id":"C456","customer_name":"...","total_due":12000,"due_date":"2026-07-01","dpd":42}}
func LoadFile(path string) (*FileDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read customer file: %w", err)
	}

	var records map[string]contractx.CustomerRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode customer file %s: %w", path, err)
	}

	for id, rec := range records {
		if strings.TrimSpace(rec.CustomerID) == "" {
			rec.CustomerID = id
			records[id] = rec
		}
	}

	return &FileDirectory{records: records}, nil
}

func (d *FileDirectory) Lookup(_ context.Context, customerID string) (contractx.CustomerRecord, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return contractx.CustomerRecord{}, contractx.ErrInvalidCustomer
	}
	rec, ok := d.records[customerID]
	if !ok {
		return contractx.CustomerRecord{}, fmt.Errorf("%w: %s", contractx.ErrCustomerNotFound, customerID)
	}
	return rec, nil
}

// Len reports how many records are loaded.
func (d *FileDirectory) Len() int {
	return len(d.records)
}
