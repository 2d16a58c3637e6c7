package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	// Типы хранилищ
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

var (
	// ErrNotFound is returned when no object exists under the key.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidKey is returned for empty keys or keys escaping the storage root.
	ErrInvalidKey = errors.New("invalid file key")
)

// Storage defines the interface for export file storage operations
type Storage interface {
	// Save saves a file to storage
	Save(ctx context.Context, key string, reader io.Reader) error

	// Get retrieves a file from storage
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file from storage
	Delete(ctx context.Context, key string) error

	// Exists reports whether a file is stored under key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns files whose key starts with prefix
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// JoinPath joins key elements
	JoinPath(elem ...string) string

	// ValidateKey checks that key is usable
	ValidateKey(key string) error
}

// FileInfo информация о файле
type FileInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}
