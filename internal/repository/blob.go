package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/jmoiron/sqlx"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobRepository stores document artifacts inside the database.
type BlobRepository interface {
	Create(ctx context.Context, blob *model.Blob) error
	ByID(ctx context.Context, id string) (*model.Blob, error)
	Delete(ctx context.Context, id string) error
}

type blobRepository struct {
	db *sqlx.DB
}

func NewBlobRepository(db *sqlx.DB) BlobRepository {
	return &blobRepository{db: db}
}

func (r *blobRepository) Create(ctx context.Context, blob *model.Blob) error {
	query := `INSERT INTO document_files (id, content, content_type, size, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		blob.ID,
		blob.Content,
		blob.ContentType,
		blob.Size,
		blob.CreatedAt,
	)

	return err
}

func (r *blobRepository) ByID(ctx context.Context, id string) (*model.Blob, error) {
	blob := &model.Blob{}
	query := `SELECT id, content, content_type, size, created_at FROM document_files WHERE id = $1`

	err := r.db.GetContext(ctx, blob, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}

	return blob, nil
}

func (r *blobRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM document_files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
