package etl

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ViViSpiro/DE-1.4.101-form-export-import/internal/config"
)

// Pipeline wires the ledger, provisioner, extractor, and loader into the two
// entry operations, export and import. A Pipeline owns nothing but the store
// connection handed to it; the caller releases that connection when the run
// is over, on every exit path.
//
// Running two pipelines against the same destination table concurrently is
// unsupported: the truncate-then-insert sequence is unguarded.
type Pipeline struct {
	ledger    *Ledger
	prov      *Provisioner
	extractor *Extractor
	loader    *Loader
	cfg       config.ETLConfig
	log       *slog.Logger
}

// NewPipeline builds a pipeline from an explicit configuration value.
// A nil logger falls back to slog.Default.
func NewPipeline(db DBTX, cfg config.ETLConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		ledger:    NewLedger(db, cfg.LedgerTable),
		prov:      NewProvisioner(db),
		extractor: NewExtractor(db),
		loader:    NewLoader(db, cfg.BatchSize),
		cfg:       cfg,
		log:       logger,
	}
}

// EnsureLedger provisions the run ledger table if absent.
func (p *Pipeline) EnsureLedger(ctx context.Context) error {
	return p.ledger.EnsureSchema(ctx)
}

// Export reads the whole source table and serializes it to the configured
// CSV path, recording the attempt in the run ledger. Returns the number of
// rows exported.
func (p *Pipeline) Export(ctx context.Context) (int, error) {
	log := p.log.With("run_uid", uuid.NewString(), "op", "export", "table", p.cfg.SourceTable)

	runID, err := p.ledger.Begin(ctx, p.cfg.SourceTable)
	if err != nil {
		log.Error("could not open run ledger entry", "error", err)
		return 0, err
	}
	log.Info("export started", "run_id", runID)

	buf, err := p.extractor.Extract(ctx, p.cfg.SourceTable)
	if err != nil {
		return 0, p.fail(ctx, log, runID, err)
	}

	exported, err := WriteCSV(buf, p.cfg.ExportFile)
	if err != nil {
		return 0, p.fail(ctx, log, runID, err)
	}

	if err := p.ledger.End(ctx, runID, StatusCompleted, exported, ""); err != nil {
		log.Error("could not close run ledger entry", "error", err)
		return 0, err
	}

	log.Info("export completed", "rows", exported, "file", p.cfg.ExportFile)
	return exported, nil
}

// Import reconstructs the target table from the configured CSV path: the
// file-existence check runs before any store write, then the attempt is
// opened in the ledger, the target is provisioned as a structural copy of
// the source table, and the file's rows are bulk-loaded. Returns the number
// of rows loaded.
func (p *Pipeline) Import(ctx context.Context) (int, error) {
	log := p.log.With("run_uid", uuid.NewString(), "op", "import", "table", p.cfg.TargetTable)

	// Checked first so a doomed run never leaves a dangling "started" record.
	if err := CheckInput(p.cfg.ImportFile); err != nil {
		log.Error("input file not found", "file", p.cfg.ImportFile, "error", err)
		return 0, err
	}

	runID, err := p.ledger.Begin(ctx, p.cfg.TargetTable)
	if err != nil {
		log.Error("could not open run ledger entry", "error", err)
		return 0, err
	}
	log.Info("import started", "run_id", runID, "file", p.cfg.ImportFile)

	if err := p.prov.EnsureCopy(ctx, p.cfg.SourceTable, p.cfg.TargetTable); err != nil {
		return 0, p.fail(ctx, log, runID, err)
	}

	buf, err := ReadCSV(p.cfg.ImportFile)
	if err != nil {
		return 0, p.fail(ctx, log, runID, err)
	}

	loaded, err := p.loader.Load(ctx, buf, p.cfg.TargetTable)
	if err != nil {
		return 0, p.fail(ctx, log, runID, err)
	}

	if err := p.ledger.End(ctx, runID, StatusCompleted, loaded, ""); err != nil {
		log.Error("could not close run ledger entry", "error", err)
		return 0, err
	}

	log.Info("import completed", "rows", loaded)
	return loaded, nil
}

// fail marks the run failed in the ledger with records_processed = 0 (the
// ledger records success counts only, never partial progress) and returns
// the original cause unmodified. A ledger failure here is logged but never
// masks the cause.
func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, runID int64, cause error) error {
	log.Error("run failed", "run_id", runID, "error", cause)
	if err := p.ledger.End(ctx, runID, StatusFailed, 0, cause.Error()); err != nil {
		log.Error("could not record run failure", "run_id", runID, "error", err)
	}
	return cause
}
