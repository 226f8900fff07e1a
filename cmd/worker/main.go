package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/gcsuploader"
	"github.com/moneyapps/ledger/internal/importer"
	infraBQ "github.com/moneyapps/ledger/internal/infra/bigquery"
	"github.com/moneyapps/ledger/internal/infra/sqlite"
	"github.com/moneyapps/ledger/internal/jobs"
	"github.com/moneyapps/ledger/internal/jobs/inmemory"
	"github.com/moneyapps/ledger/internal/ledger"
	"github.com/moneyapps/ledger/internal/logger"
)

func main() {
	log := logger.New()

	project := flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project; when set, BigQuery is used instead of SQLite")
	dataset := flag.String("dataset", envOr("BQ_DATASET", "ledger"), "BigQuery dataset name")
	dbPath := flag.String("db", os.Getenv("LEDGER_DB"), "SQLite database path")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := openBackend(ctx, *dbPath, *project, *dataset, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.close()

	storage := gcsuploader.NewGCSStorageService()
	converter := currency.NewConverter()
	svc := ledger.NewService(backend.accounts, backend.txs, converter, log)
	imp := importer.New(svc, backend.runs, storage, converter, log)

	// In production the queue would be backed by Cloud Tasks or Pub/Sub;
	// the in-memory queue makes this binary a single-process consumer.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Msg("Starting worker service")

	handler := func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Int64("account_id", importJob.AccountID).
			Str("gcs_uri", importJob.GCSURI).
			Msg("Processing import job")

		result, err := imp.ImportFromGCS(ctx, importJob.UserID, importJob.AccountID, importJob.GCSURI, importJob.StatementYear)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", importJob.JobID).
				Str("gcs_uri", importJob.GCSURI).
				Msg("Import failed")
			return err
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("run_id", result.RunID).
			Int("imported", result.Imported).
			Int("skipped", result.Skipped).
			Msg("Import completed")

		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}

type stores struct {
	accounts ledger.AccountStore
	txs      ledger.TransactionStore
	users    auth.UserStore
	runs     importer.RunStore
	close    func() error
}

func openBackend(ctx context.Context, dbPath, project, dataset string, log zerolog.Logger) (*stores, error) {
	if project != "" {
		client, err := infraBQ.NewClient(ctx, project, dataset)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts: infraBQ.NewAccountStore(client),
			txs:      infraBQ.NewTransactionStore(client),
			users:    infraBQ.NewUserStore(client),
			runs:     infraBQ.NewRunStore(client, log),
			close:    client.Close,
		}, nil
	}
	if dbPath == "" {
		return nil, fmt.Errorf("openBackend: either -db or -project is required")
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &stores{
		accounts: sqlite.NewAccountStore(db),
		txs:      sqlite.NewTransactionStore(db),
		users:    sqlite.NewUserStore(db),
		runs:     sqlite.NewRunStore(db, log),
		close:    db.Close,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
