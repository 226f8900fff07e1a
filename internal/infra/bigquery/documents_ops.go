package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/importer"
)

const (
	documentsTable  = "statement_documents"
	importRunsTable = "import_runs"
)

// RunStore records statement documents and the import runs over them.
type RunStore struct {
	c   *Client
	log zerolog.Logger
}

func NewRunStore(c *Client, log zerolog.Logger) *RunStore {
	return &RunStore{c: c, log: log}
}

// InsertDocument records an uploaded statement file.
func (s *RunStore) InsertDocument(ctx context.Context, doc *importer.StatementDocument) error {
	row := &StatementDocumentRow{
		DocumentID:       doc.DocumentID,
		UserID:           doc.UserID,
		AccountID:        doc.AccountID,
		GCSURI:           doc.GCSURI,
		OriginalFilename: doc.Filename,
		UploadTS:         doc.UploadedAt,
	}
	if err := s.c.inserter(documentsTable).Put(ctx, row); err != nil {
		return fmt.Errorf("RunStore.InsertDocument: inserting row: %w", err)
	}
	return nil
}

// StartRun creates an import run with status RUNNING and returns its ID.
func (s *RunStore) StartRun(ctx context.Context, documentID string) (string, error) {
	runID := uuid.NewString()

	err := s.c.runDML(ctx, fmt.Sprintf(`
		INSERT %s (import_run_id, document_id, started_ts, status)
		VALUES (@import_run_id, @document_id, @started_ts, @status)
	`, s.c.table(importRunsTable)), []bigquery.QueryParameter{
		{Name: "import_run_id", Value: runID},
		{Name: "document_id", Value: documentID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "status", Value: "RUNNING"},
	})
	if err != nil {
		return "", fmt.Errorf("RunStore.StartRun: %w", err)
	}
	return runID, nil
}

// MarkRunFailed updates an import run to status FAILED. Failures to record
// the failure are logged, not returned; the import error itself matters more.
func (s *RunStore) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	err := s.c.runDML(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE import_run_id = @import_run_id
	`, s.c.table(importRunsTable)), []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "import_run_id", Value: runID},
	})
	if err != nil {
		s.log.Error().Str("import_run_id", runID).Err(err).Msg("failed to mark import run failed")
	}
}

// MarkRunSucceeded updates an import run to status SUCCESS with its counts.
func (s *RunStore) MarkRunSucceeded(ctx context.Context, runID string, imported, skipped int) error {
	err := s.c.runDML(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = "",
		    imported_count = @imported_count,
		    skipped_count = @skipped_count
		WHERE import_run_id = @import_run_id
	`, s.c.table(importRunsTable)), []bigquery.QueryParameter{
		{Name: "status", Value: "SUCCESS"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "imported_count", Value: int64(imported)},
		{Name: "skipped_count", Value: int64(skipped)},
		{Name: "import_run_id", Value: runID},
	})
	if err != nil {
		return fmt.Errorf("RunStore.MarkRunSucceeded: %w", err)
	}
	return nil
}
