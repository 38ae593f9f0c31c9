package service

import (
	"errors"

	"github.com/caredocs/caredocs/internal/model"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access denied")
	ErrDocumentNotFound = errors.New("document not found")
	// ErrContentNotFound means the document exists but none of its artifacts could be loaded.
	ErrContentNotFound = errors.New("document content not found")
)

// Authorize allows an admin owner or a worker owner of doc and denies everyone else.
func Authorize(caller *model.Caller, doc *model.Document) error {
	if caller == nil || caller.ID == "" || doc == nil {
		return ErrForbidden
	}

	switch caller.Role {
	case model.RoleAdmin:
		if caller.ID == doc.OwnerAdminID {
			return nil
		}
	case model.RoleWorker:
		if caller.ID == doc.OwnerWorkerID {
			return nil
		}
	}

	return ErrForbidden
}
