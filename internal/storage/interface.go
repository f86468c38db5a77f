package storage

import "context"

// Uploader copies finished renders to remote storage.
type Uploader interface {
	// Upload stores the file at localPath and returns its remote location.
	Upload(ctx context.Context, localPath string) (string, error)
}
