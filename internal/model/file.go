package model

import (
	"time"
)

const DefaultContentType = "application/pdf"

// Blob is a document artifact stored in the database, base64-encoded.
type Blob struct {
	ID          string    `db:"id"`
	Content     string    `db:"content"`      // base64
	ContentType *string   `db:"content_type"` // Nullable: readers default to application/pdf
	Size        int64     `db:"size"`         // Decoded size in bytes
	CreatedAt   time.Time `db:"created_at"`
}

// MimeType returns the stored content type or the PDF default.
func (b *Blob) MimeType() string {
	if b.ContentType == nil || *b.ContentType == "" {
		return DefaultContentType
	}
	return *b.ContentType
}
