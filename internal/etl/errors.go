package etl

import (
	"errors"
	"fmt"
)

// The closed set of failure kinds a pipeline can surface. Each wraps the
// underlying cause, so callers discriminate with errors.Is on the kind and
// reach the store error (e.g. *pgconn.PgError) with errors.As.
var (
	// ErrConnection means the store could not be reached at all. No ledger
	// entry is possible for this failure.
	ErrConnection = errors.New("store connection failed")

	// ErrLedgerWrite means a run ledger insert or update could not be
	// committed. On Begin this is fatal to the run; on End it is logged but
	// never masks the pipeline error being reported.
	ErrLedgerWrite = errors.New("run ledger write failed")

	// ErrProvision means the structural copy of the reference table was
	// rejected by the store.
	ErrProvision = errors.New("table provisioning failed")

	// ErrMissingInput means the import CSV does not exist. Raised before any
	// store interaction.
	ErrMissingInput = errors.New("input file missing")

	// ErrParse means the import CSV is malformed.
	ErrParse = errors.New("csv parse failed")

	// ErrExtract means the full read of the source table failed.
	ErrExtract = errors.New("table extract failed")

	// ErrWrite means the export CSV could not be created or written.
	ErrWrite = errors.New("csv write failed")

	// ErrLoad means the truncate or a bulk-insert batch failed. Batches
	// already committed stay however the store left them.
	ErrLoad = errors.New("bulk load failed")
)

// wrap tags a cause with one of the failure kinds above.
func wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
