package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

//go:generate mockgen -source=$GOFILE -destination=../service/storage_mocks_test.go -package=service_test

// FileStorage defines the object storage operations plan export needs.
type FileStorage interface {
	// PutObject writes body under objectKey, replacing any existing object.
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
