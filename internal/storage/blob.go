package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/caredocs/caredocs/internal/repository"
	"github.com/google/uuid"
)

// BlobStore keeps artifacts base64-encoded in the document_files table.
type BlobStore struct {
	repo repository.BlobRepository
}

func NewBlobStore(repo repository.BlobRepository) *BlobStore {
	return &BlobStore{repo: repo}
}

// Fetch loads and decodes a blob. Content type defaults to application/pdf.
func (s *BlobStore) Fetch(ctx context.Context, id string) (*Object, error) {
	blob, err := s.repo.ByID(ctx, id)
	if errors.Is(err, repository.ErrBlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load blob: %w", err)
	}

	content, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: blob %s: %v", ErrCorruptBlob, id, err)
	}

	return &Object{
		Content:     content,
		ContentType: blob.MimeType(),
	}, nil
}

// Put stores data as a new blob and returns its locator.
func (s *BlobStore) Put(ctx context.Context, data []byte, contentType string) (Locator, error) {
	blob := &model.Blob{
		ID:        uuid.New().String(),
		Content:   base64.StdEncoding.EncodeToString(data),
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}
	if contentType != "" {
		blob.ContentType = &contentType
	}

	err := s.repo.Create(ctx, blob)
	if err != nil {
		return Locator{}, fmt.Errorf("failed to create blob: %w", err)
	}

	return BlobLocator(blob.ID), nil
}

func (s *BlobStore) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
