package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moneyapps/ledger/internal/api/middleware"
	"github.com/moneyapps/ledger/internal/jobs"
)

// ImportsHandler handles statement upload and import endpoints. Statements
// are uploaded to GCS first; the import itself runs asynchronously through
// the job queue.
type ImportsHandler struct {
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(publisher jobs.Publisher, bucket string, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{publisher: publisher, bucket: bucket, log: log}
}

// CreateUploadURL handles POST /api/imports/upload-url
func (h *ImportsHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	// Generate unique object name
	objectName := fmt.Sprintf("statements/%s/%s", time.Now().Format("2006/01/02"), uuid.NewString()+"-"+req.Filename)
	gcsURI := fmt.Sprintf("gs://%s/%s", h.bucket, objectName)

	// For local development with user credentials, return direct upload URL
	// In production with service accounts, this would use signed URLs
	uploadURL := fmt.Sprintf("/api/imports/upload?object_name=%s", url.QueryEscape(objectName))

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"upload_url":  uploadURL,
		"gcs_uri":     gcsURI,
		"object_name": objectName,
	})
}

// UploadStatement handles POST /api/imports/upload?object_name=...
// Direct upload endpoint for local development with user credentials.
func (h *ImportsHandler) UploadStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	objectName := r.URL.Query().Get("object_name")
	if objectName == "" {
		middleware.WriteError(w, http.StatusBadRequest, "object_name is required")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}

	gcsURI := fmt.Sprintf("gs://%s/%s", h.bucket, objectName)

	client, err := storage.NewClient(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create storage client")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	defer client.Close()

	wc := client.Bucket(h.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	written, err := io.Copy(wc, r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to write to GCS")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}
	if err := wc.Close(); err != nil {
		h.log.Error().Err(err).Msg("Failed to close GCS writer")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	h.log.Info().
		Str("gcs_uri", gcsURI).
		Int64("bytes", written).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"gcs_uri": gcsURI,
		"status":  "uploaded",
	})
}

// EnqueueImport handles POST /api/imports
func (h *ImportsHandler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        int64  `json:"user_id"`
		AccountID     int64  `json:"account_id"`
		GCSURI        string `json:"gcs_uri"`
		StatementYear int    `json:"statement_year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == 0 || req.AccountID == 0 || req.GCSURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id, account_id and gcs_uri are required")
		return
	}
	if req.StatementYear == 0 {
		req.StatementYear = time.Now().Year()
	}

	job := &jobs.ImportStatementJob{
		UserID:        req.UserID,
		AccountID:     req.AccountID,
		GCSURI:        req.GCSURI,
		StatementYear: req.StatementYear,
	}

	if err := h.publisher.PublishImportStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int64("account_id", req.AccountID).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}
