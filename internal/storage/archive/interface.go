// internal/storage/archive/interface.go
package archive

import (
	"context"
	"fmt"
)

// Storage defines the interface for archive storage backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Create stores data at the given path only if nothing is stored there
	// yet. It fails with an error matching fs.ErrExist otherwise.
	Create(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path. A missing path fails with an
	// error matching fs.ErrNotExist.
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error
}

// Backend names
const (
	BackendLocalFS = "localfs"
	BackendS3      = "s3"
)

// Config selects and configures a storage backend
type Config struct {
	Type string
	Path string // For localfs
	S3   S3Config
}

// New creates the storage backend named by cfg.Type
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case BackendLocalFS, "":
		return NewLocalFS(cfg.Path)
	case BackendS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
	}
}
