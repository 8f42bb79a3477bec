// internal/archive/interface.go
package archive

import (
	"context"
	"fmt"

	"github.com/tradeforge/aatm/internal/config"
)

// Backend is cold storage for exported trading state. Archived objects are
// immutable once written, so there is no delete.
type Backend interface {
	// Write stores data at the given key
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data from the given key
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}

// New constructs the backend selected by the archive configuration.
func New(cfg config.ArchiveConfig) (Backend, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}
