package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound means the locator is well formed but no bytes exist behind it.
	ErrNotFound = errors.New("storage: object not found")
	// ErrInvalidLocator covers empty locators, malformed blob ids and paths escaping the document root.
	ErrInvalidLocator = errors.New("storage: invalid locator")
	// ErrCorruptBlob means a blob row exists but its content is not valid base64.
	ErrCorruptBlob = errors.New("storage: corrupt blob content")
)

// Object is a fetched artifact held fully in memory.
type Object struct {
	Content     []byte
	ContentType string
}

// FileStore serves the document root that file locators are relative to.
// Paths are slash-separated and already validated as local by the caller.
type FileStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Save(ctx context.Context, path string, r io.Reader) error
	Delete(ctx context.Context, path string) error
	// Type returns the driver name ("local", "s3").
	Type() string
}
