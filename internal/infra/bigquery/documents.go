package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type StatementDocumentRow struct {
	DocumentID       string    `bigquery:"document_id"`       // REQUIRED
	UserID           int64     `bigquery:"user_id"`           // REQUIRED
	AccountID        int64     `bigquery:"account_id"`        // REQUIRED
	GCSURI           string    `bigquery:"gcs_uri"`           // REQUIRED
	OriginalFilename string    `bigquery:"original_filename"` // NULLABLE
	UploadTS         time.Time `bigquery:"upload_ts"`         // REQUIRED
}

type ImportRunRow struct {
	ImportRunID string `bigquery:"import_run_id"` // REQUIRED
	DocumentID  string `bigquery:"document_id"`   // REQUIRED

	StartedAt  time.Time              `bigquery:"started_ts"`
	FinishedAt bigquery.NullTimestamp `bigquery:"finished_ts"`

	Status       string `bigquery:"status"` // RUNNING, SUCCESS, FAILED
	ErrorMessage string `bigquery:"error_message"`

	ImportedCount bigquery.NullInt64 `bigquery:"imported_count"`
	SkippedCount  bigquery.NullInt64 `bigquery:"skipped_count"`
}
