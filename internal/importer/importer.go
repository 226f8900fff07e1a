package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/currency"
	"github.com/moneyapps/ledger/internal/domain"
	"github.com/moneyapps/ledger/internal/gcs"
)

// StatementDocument records an uploaded statement file.
type StatementDocument struct {
	DocumentID string
	UserID     int64
	AccountID  int64
	GCSURI     string
	Filename   string
	UploadedAt time.Time
}

// RunStore persists statement documents and the audit trail of import runs
// over them.
type RunStore interface {
	InsertDocument(ctx context.Context, doc *StatementDocument) error
	// StartRun creates an import run with status RUNNING and returns its ID.
	StartRun(ctx context.Context, documentID string) (string, error)
	MarkRunFailed(ctx context.Context, runID string, runErr error)
	MarkRunSucceeded(ctx context.Context, runID string, imported, skipped int) error
}

// TransactionApplier posts parsed transactions against accounts. Satisfied
// by the ledger service.
type TransactionApplier interface {
	Account(ctx context.Context, id int64) (*domain.Account, error)
	ApplyTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Account, error)
}

// CategorizeFunc maps a transaction description to a category. When nil,
// imported transactions keep the review category.
type CategorizeFunc func(ctx context.Context, txType domain.TransactionType, description string) (string, error)

// Result summarizes one statement import.
type Result struct {
	DocumentID string
	RunID      string
	Parsed     int
	Imported   int
	Skipped    int
}

// Importer runs the statement import pipeline: record the document, parse
// the CSV, convert amounts into the account currency, and post each row as
// a transaction.
type Importer struct {
	applier    TransactionApplier
	runs       RunStore
	storage    gcs.StorageService
	converter  *currency.Converter
	categorize CategorizeFunc
	log        zerolog.Logger
}

func New(applier TransactionApplier, runs RunStore, storage gcs.StorageService, converter *currency.Converter, log zerolog.Logger) *Importer {
	return &Importer{
		applier:   applier,
		runs:      runs,
		storage:   storage,
		converter: converter,
		log:       log,
	}
}

// WithCategorizer sets an optional categorizer consulted for each imported
// transaction.
func (im *Importer) WithCategorizer(fn CategorizeFunc) *Importer {
	im.categorize = fn
	return im
}

// ImportFromGCS imports a bank statement CSV already uploaded to storage.
// statementYear gives the year for the statement's day-month dates.
func (im *Importer) ImportFromGCS(ctx context.Context, userID, accountID int64, gcsURI string, statementYear int) (*Result, error) {
	doc := &StatementDocument{
		DocumentID: uuid.NewString(),
		UserID:     userID,
		AccountID:  accountID,
		GCSURI:     gcsURI,
		Filename:   im.storage.ExtractFilenameFromGCSURI(gcsURI),
		UploadedAt: time.Now().UTC(),
	}
	if err := im.runs.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("ImportFromGCS: inserting document: %w", err)
	}

	runID, err := im.runs.StartRun(ctx, doc.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("ImportFromGCS: starting run: %w", err)
	}

	data, err := im.storage.FetchFromGCS(ctx, gcsURI)
	if err != nil {
		im.runs.MarkRunFailed(ctx, runID, err)
		return nil, fmt.Errorf("ImportFromGCS: fetching statement: %w", err)
	}

	result, err := im.importReader(ctx, userID, accountID, statementYear, bytes.NewReader(data))
	if err != nil {
		im.runs.MarkRunFailed(ctx, runID, err)
		return nil, fmt.Errorf("ImportFromGCS: %w", err)
	}
	result.DocumentID = doc.DocumentID
	result.RunID = runID

	if err := im.runs.MarkRunSucceeded(ctx, runID, result.Imported, result.Skipped); err != nil {
		return nil, fmt.Errorf("ImportFromGCS: finishing run: %w", err)
	}
	return result, nil
}

// ImportReader imports a statement CSV from an already-open reader, without
// the document and run bookkeeping. Used by the CLI for local files.
func (im *Importer) ImportReader(ctx context.Context, userID, accountID int64, statementYear int, r io.Reader) (*Result, error) {
	return im.importReader(ctx, userID, accountID, statementYear, r)
}

func (im *Importer) importReader(ctx context.Context, userID, accountID int64, statementYear int, r io.Reader) (*Result, error) {
	account, err := im.applier.Account(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("finding account %d: %w", accountID, err)
	}

	parsed, err := ParseStatement(r, statementYear)
	if err != nil {
		return nil, err
	}

	result := &Result{Parsed: len(parsed)}
	for _, p := range parsed {
		tx := p.Transaction
		tx.UserID = userID
		tx.AccountID = accountID

		if p.Currency != account.Balance.Currency {
			converted, err := im.converter.Convert(tx.Amount, p.Currency, account.Balance.Currency)
			if err != nil {
				im.log.Warn().
					Str("currency", p.Currency).
					Str("description", tx.Description).
					Err(err).
					Msg("skipping statement row with unconvertible currency")
				result.Skipped++
				continue
			}
			tx.Amount = converted
		}

		if im.categorize != nil {
			category, err := im.categorize(ctx, tx.Type, tx.Description)
			if err != nil {
				im.log.Warn().Err(err).Str("description", tx.Description).Msg("categorizer failed, leaving for review")
			} else if category != "" {
				tx.Category = category
			}
		}

		if _, err := im.applier.ApplyTransaction(ctx, &tx); err != nil {
			return result, fmt.Errorf("applying transaction %q: %w", tx.Description, err)
		}
		result.Imported++
	}

	im.log.Info().
		Int64("account_id", accountID).
		Int("parsed", result.Parsed).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("statement import finished")
	return result, nil
}
