// internal/store/interface.go
package store

import "context"

// Document is a single stored document with its id.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore defines the surface of the external document database that
// the lifecycle manager and the state accessor consume.
type DocumentStore interface {
	// Set writes fields to collection/id, merging into an existing document
	// when merge is true.
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error

	// Get retrieves the fields at collection/id. Returns
	// core.ErrDocumentNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (map[string]any, error)

	// Delete removes collection/id. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Documents lists documents in a collection, up to limit (0 = no limit).
	Documents(ctx context.Context, collection string, limit int) ([]Document, error)

	// Close releases the underlying connection.
	Close() error
}
