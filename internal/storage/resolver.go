package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/caredocs/caredocs/internal/model"
)

// Resolver maps locator strings to bytes across the blob and file backends.
type Resolver struct {
	scheme Scheme
	blobs  *BlobStore
	files  FileStore
}

func NewResolver(scheme Scheme, blobs *BlobStore, files FileStore) *Resolver {
	return &Resolver{
		scheme: scheme,
		blobs:  blobs,
		files:  files,
	}
}

func (r *Resolver) Scheme() Scheme {
	return r.scheme
}

// Fetch returns the artifact behind raw. ErrNotFound is returned only when the
// locator is valid and nothing is stored there; every other error is a server fault.
func (r *Resolver) Fetch(ctx context.Context, raw string) (*Object, error) {
	loc, err := r.scheme.Parse(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case LocatorBlob:
		return r.blobs.Fetch(ctx, loc.BlobID)
	default:
		data, err := r.files.Read(ctx, loc.Path)
		if err != nil {
			return nil, err
		}
		return &Object{Content: data, ContentType: model.DefaultContentType}, nil
	}
}

// StoreBlob writes data to the database backend and returns the stored locator string.
func (r *Resolver) StoreBlob(ctx context.Context, data []byte, contentType string) (string, error) {
	loc, err := r.blobs.Put(ctx, data, contentType)
	if err != nil {
		return "", err
	}
	return r.scheme.Format(loc)
}

// StoreFile writes data under the document root and returns the stored locator string.
func (r *Resolver) StoreFile(ctx context.Context, path string, data []byte) (string, error) {
	raw, err := r.scheme.Format(FileLocator(path))
	if err != nil {
		return "", err
	}

	loc, err := r.scheme.Parse(raw)
	if err != nil {
		return "", err
	}

	err = r.files.Save(ctx, loc.Path, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return raw, nil
}

// Remove deletes whatever raw points at. Used to clean up after failed writes.
func (r *Resolver) Remove(ctx context.Context, raw string) error {
	loc, err := r.scheme.Parse(raw)
	if err != nil {
		return err
	}

	if loc.Kind == LocatorBlob {
		return r.blobs.Delete(ctx, loc.BlobID)
	}
	return r.files.Delete(ctx, loc.Path)
}
