package service

import (
	"testing"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	pending := &model.Document{Status: model.DocumentStatusPending, OriginalPath: "/files/d1.pdf"}
	signed := &model.Document{Status: model.DocumentStatusSigned, OriginalPath: "/files/d2.pdf"}
	sig := &model.Signature{SignedPath: "/api/document-files/blob-42"}

	tests := []struct {
		name       string
		doc        *model.Document
		sig        *model.Signature
		wantPath   string
		wantSigned bool
	}{
		{"pending without signature", pending, nil, "/files/d1.pdf", false},
		{"pending with stray signature", pending, sig, "/files/d1.pdf", false},
		{"signed with signature", signed, sig, "/api/document-files/blob-42", true},
		{"signed without signature", signed, nil, "/files/d2.pdf", false},
		{"signed with empty path", signed, &model.Signature{}, "/files/d2.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, isSigned := ResolvePath(tt.doc, tt.sig)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantSigned, isSigned)
		})
	}
}
