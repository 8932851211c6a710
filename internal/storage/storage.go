package storage

import (
	"context"
	"fmt"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
// Demo videos for catalog exercises are uploaded by professors directly
// to the provider via presigned URLs; the backend never proxies bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExerciseVideoKey builds the object key for a catalog exercise's demo
// video. One video per exercise; re-uploads overwrite in place.
func ExerciseVideoKey(professorID, exerciseID string) string {
	return fmt.Sprintf("exercise-videos/%s/%s.mp4", professorID, exerciseID)
}
