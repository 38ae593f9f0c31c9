package model

import (
	"time"
)

const (
	DocumentStatusPending = "pending"
	DocumentStatusSigned  = "signed"
)

type Document struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	OriginalPath  string    `db:"original_path"` // Locator of the unsigned artifact, never overwritten
	Status        string    `db:"status"`
	OwnerAdminID  string    `db:"owner_admin_id"`
	OwnerWorkerID string    `db:"owner_worker_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (d *Document) IsSigned() bool {
	return d.Status == DocumentStatusSigned
}

// Signature is the outcome of the signing action on a document.
// At most one exists per document and it is never mutated.
type Signature struct {
	DocumentID string    `db:"document_id"`
	SignedPath string    `db:"signed_path"`
	SignedAt   time.Time `db:"signed_at"`
}

// DocumentWithSignature pairs a document with its signature, nil when absent.
type DocumentWithSignature struct {
	Document  *Document
	Signature *Signature
}

// Retrieval modes
const (
	ModeView     = "view"
	ModeDownload = "download"
)

// Served artifact versions
const (
	VersionOriginal = "original"
	VersionSigned   = "signed"
)

// Payload is a retrieved document ready to be written to the client.
type Payload struct {
	DocumentID   string
	Content      []byte
	ContentType  string
	Disposition  string // Full Content-Disposition header value
	CacheControl string
	Version      string // "signed" or "original", diagnostic only
}
