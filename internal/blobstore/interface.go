package blobstore

import "context"

// Store uploads, downloads and deletes byte blobs by name.
type Store interface {
	// Upload writes data under name, overwriting any existing blob, and returns
	// a URL the speech service can resolve.
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}
