package gcs

import (
	"context"
)

// StorageService abstracts the bucket operations the statement import flow
// needs, so the importer can be tested without touching Cloud Storage.
type StorageService interface {
	// UploadFile uploads a local statement file to a bucket under the given
	// object name.
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) error

	// FetchFromGCS downloads statement bytes from a gs:// URI.
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)

	// ExtractFilenameFromGCSURI returns the object's base filename.
	ExtractFilenameFromGCSURI(uri string) string
}
