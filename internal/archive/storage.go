package archive

import (
	"context"
	"io"
)

// StorageDriver defines how archived exchange payloads reach the backing store.
// Archived payloads are written once and read back for audits; they are never
// deleted by this service.
type StorageDriver interface {
	// Save writes the content under the given key.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the payload back and its content type.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}
