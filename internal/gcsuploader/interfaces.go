package gcsuploader

import (
	"context"

	"github.com/moneyapps/ledger/internal/gcs"
)

// StorageService is the shared storage interface satisfied by this package.
type StorageService = gcs.StorageService

// GCSStorageService implements StorageService against real Cloud Storage.
type GCSStorageService struct{}

var _ StorageService = (*GCSStorageService)(nil)

func NewGCSStorageService() *GCSStorageService {
	return &GCSStorageService{}
}

func (s *GCSStorageService) UploadFile(ctx context.Context, bucketName, objectName, filePath string) error {
	return UploadFile(ctx, bucketName, objectName, filePath)
}

func (s *GCSStorageService) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	return FetchFromGCS(ctx, gcsURI)
}

func (s *GCSStorageService) ExtractFilenameFromGCSURI(uri string) string {
	return ExtractFilenameFromGCSURI(uri)
}
