package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrAlreadySigned    = errors.New("document already signed")
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	// ByIDForCaller returns the document only when the caller is one of its owners.
	ByIDForCaller(ctx context.Context, id string, caller *model.Caller) (*model.DocumentWithSignature, error)
	ListForCaller(ctx context.Context, caller *model.Caller) ([]*model.DocumentWithSignature, error)
	// Sign flips a pending document to signed and records the signature in one transaction.
	Sign(ctx context.Context, sig *model.Signature) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// documentRow is the LEFT JOIN shape; signature columns are NULL when no row exists.
type documentRow struct {
	model.Document
	SignedPath *string    `db:"signed_path"`
	SignedAt   *time.Time `db:"signed_at"`
}

func (row *documentRow) toModel() *model.DocumentWithSignature {
	doc := row.Document
	out := &model.DocumentWithSignature{Document: &doc}
	if row.SignedPath != nil {
		sig := &model.Signature{
			DocumentID: doc.ID,
			SignedPath: *row.SignedPath,
		}
		if row.SignedAt != nil {
			sig.SignedAt = *row.SignedAt
		}
		out.Signature = sig
	}
	return out
}

const documentSelect = `SELECT d.id, d.title, d.description, d.original_path, d.status,
	d.owner_admin_id, d.owner_worker_id, d.created_at, s.signed_path, s.signed_at
	FROM documents d
	LEFT JOIN document_signatures s ON s.document_id = d.id`

// ownerColumn maps a role to the ownership column it is matched against.
// Unknown roles have no column and can never match a document.
func ownerColumn(role string) (string, bool) {
	switch role {
	case model.RoleAdmin:
		return "d.owner_admin_id", true
	case model.RoleWorker:
		return "d.owner_worker_id", true
	default:
		return "", false
	}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	query := `INSERT INTO documents (id, title, description, original_path, status, owner_admin_id, owner_worker_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.OriginalPath,
		doc.Status,
		doc.OwnerAdminID,
		doc.OwnerWorkerID,
		doc.CreatedAt,
	)

	return err
}

func (r *documentRepository) ByIDForCaller(ctx context.Context, id string, caller *model.Caller) (*model.DocumentWithSignature, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrDocumentNotFound
	}
	column, ok := ownerColumn(caller.Role)
	if !ok {
		return nil, ErrDocumentNotFound
	}

	row := &documentRow{}
	query := documentSelect + ` WHERE d.id = $1 AND ` + column + ` = $2`

	err := r.db.GetContext(ctx, row, query, id, caller.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

func (r *documentRepository) ListForCaller(ctx context.Context, caller *model.Caller) ([]*model.DocumentWithSignature, error) {
	if caller == nil || caller.ID == "" {
		return nil, nil
	}
	column, ok := ownerColumn(caller.Role)
	if !ok {
		return nil, nil
	}

	var rows []*documentRow
	query := documentSelect + ` WHERE ` + column + ` = $1 ORDER BY d.created_at DESC`

	err := r.db.SelectContext(ctx, &rows, query, caller.ID)
	if err != nil {
		return nil, err
	}

	docs := make([]*model.DocumentWithSignature, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toModel())
	}

	return docs, nil
}

func (r *documentRepository) Sign(ctx context.Context, sig *model.Signature) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE documents SET status = $1 WHERE id = $2 AND status = $3`,
		model.DocumentStatusSigned, sig.DocumentID, model.DocumentStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		var status string
		err = tx.GetContext(ctx, &status, `SELECT status FROM documents WHERE id = $1`, sig.DocumentID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDocumentNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadySigned
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO document_signatures (document_id, signed_path, signed_at) VALUES ($1, $2, $3)`,
		sig.DocumentID, sig.SignedPath, sig.SignedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signature: %w", err)
	}

	return tx.Commit()
}
