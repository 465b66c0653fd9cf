package etl

import (
	"context"
	"fmt"
)

// Provisioner ensures the import destination table exists with a schema
// structurally identical to a reference table.
type Provisioner struct {
	db DBTX
}

// NewProvisioner returns a provisioner using the given store connection.
func NewProvisioner(db DBTX) *Provisioner {
	return &Provisioner{db: db}
}

// EnsureCopy creates target as a structural copy of reference: same columns,
// default expressions, and constraints, no data. Idempotent: if target
// already exists the statement is a no-op, not an error.
func (p *Provisioner) EnsureCopy(ctx context.Context, reference, target string) error {
	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (LIKE %s INCLUDING DEFAULTS INCLUDING CONSTRAINTS)",
		quoteTable(target), quoteTable(reference),
	)

	if _, err := p.db.Exec(ctx, query); err != nil {
		return wrap(ErrProvision, err)
	}
	return nil
}
