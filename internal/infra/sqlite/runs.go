package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/auth"
	"github.com/moneyapps/ledger/internal/importer"
	"github.com/moneyapps/ledger/internal/ledger"
)

// RunStore records statement documents and import runs in SQLite.
type RunStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewRunStore(db *sql.DB, log zerolog.Logger) *RunStore {
	return &RunStore{db: db, log: log}
}

// InsertDocument records an uploaded statement file.
func (s *RunStore) InsertDocument(ctx context.Context, doc *importer.StatementDocument) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statement_documents (document_id, user_id, account_id, gcs_uri, original_filename, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.DocumentID, doc.UserID, doc.AccountID, doc.GCSURI, doc.Filename,
		doc.UploadedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("RunStore.InsertDocument: %w", err)
	}
	return nil
}

// StartRun creates an import run with status RUNNING and returns its ID.
func (s *RunStore) StartRun(ctx context.Context, documentID string) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_runs (import_run_id, document_id, started_at, status)
		VALUES (?, ?, ?, 'RUNNING')`,
		runID, documentID, time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("RunStore.StartRun: %w", err)
	}
	return runID, nil
}

// MarkRunFailed updates an import run to status FAILED. Failures to record
// the failure are logged, not returned.
func (s *RunStore) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_runs
		SET status = 'FAILED', finished_at = ?, error_message = ?
		WHERE import_run_id = ?`,
		time.Now().UTC().Format(timeFormat), errMsg, runID,
	)
	if err != nil {
		s.log.Error().Str("import_run_id", runID).Err(err).Msg("failed to mark import run failed")
	}
}

// MarkRunSucceeded updates an import run to status SUCCESS with its counts.
func (s *RunStore) MarkRunSucceeded(ctx context.Context, runID string, imported, skipped int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE import_runs
		SET status = 'SUCCESS', finished_at = ?, imported_count = ?, skipped_count = ?
		WHERE import_run_id = ?`,
		time.Now().UTC().Format(timeFormat), imported, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("RunStore.MarkRunSucceeded: %w", err)
	}
	return nil
}

// Ensure the stores satisfy the service interfaces.
var (
	_ ledger.AccountStore     = (*AccountStore)(nil)
	_ ledger.TransactionStore = (*TransactionStore)(nil)
	_ ledger.AtomicApplier    = (*TransactionStore)(nil)
	_ auth.UserStore          = (*UserStore)(nil)
	_ importer.RunStore       = (*RunStore)(nil)
)
