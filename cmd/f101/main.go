// Command f101 moves the form 101 reporting table between PostgreSQL and
// CSV. Two subcommands: "export" writes the source table to the configured
// CSV path, "import" reconstructs the target table from it. Any unrecovered
// failure exits non-zero after being logged and recorded in the run ledger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/ViViSpiro/DE-1.4.101-form-export-import/internal/config"
	"github.com/ViViSpiro/DE-1.4.101-form-export-import/internal/etl"
	"github.com/ViViSpiro/DE-1.4.101-form-export-import/internal/logging"
)

func main() {
	if len(os.Args) != 2 || (os.Args[1] != "export" && os.Args[1] != "import") {
		fmt.Fprintln(os.Stderr, "usage: f101 <export|import>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run executes one pipeline invocation. The store connection is acquired
// here and released on every exit path.
func run(command string) error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"command", command,
		"source_table", cfg.ETL.SourceTable,
		"target_table", cfg.ETL.TargetTable,
		"batch_size", cfg.ETL.BatchSize,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("%w: %w", etl.ErrConnection, err)
	}
	defer func() {
		pool.Close()
		slog.Info("database connection closed")
	}()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", etl.ErrConnection, err)
	}
	slog.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	pipeline := etl.NewPipeline(pool, cfg.ETL, slog.Default())

	if err := pipeline.EnsureLedger(ctx); err != nil {
		return err
	}

	switch command {
	case "export":
		_, err = pipeline.Export(ctx)
	case "import":
		_, err = pipeline.Import(ctx)
	}
	return err
}
