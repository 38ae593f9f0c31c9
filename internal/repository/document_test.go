package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepository_ByIDForCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createDocument(t, "d1", time.Now().UTC())

	tests := []struct {
		name   string
		caller *model.Caller
		found  bool
	}{
		{"admin owner", &model.Caller{ID: "a1", Role: model.RoleAdmin}, true},
		{"worker owner", &model.Caller{ID: "w1", Role: model.RoleWorker}, true},
		{"other admin", &model.Caller{ID: "a2", Role: model.RoleAdmin}, false},
		{"other worker", &model.Caller{ID: "w2", Role: model.RoleWorker}, false},
		{"owner id under wrong role", &model.Caller{ID: "w1", Role: model.RoleAdmin}, false},
		{"unknown role", &model.Caller{ID: "a1", Role: "guest"}, false},
		{"nil caller", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.documents.ByIDForCaller(ctx, "d1", tt.caller)
			if !tt.found {
				assert.ErrorIs(t, err, ErrDocumentNotFound)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "d1", got.Document.ID)
			assert.Equal(t, "/files/d1.pdf", got.Document.OriginalPath)
			assert.Nil(t, got.Signature)
		})
	}

	_, err := f.documents.ByIDForCaller(ctx, "d9", &model.Caller{ID: "a1", Role: model.RoleAdmin})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentRepository_Sign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createDocument(t, "d1", time.Now().UTC())
	worker := &model.Caller{ID: "w1", Role: model.RoleWorker}

	signedAt := time.Now().UTC().Truncate(time.Second)
	err := f.documents.Sign(ctx, &model.Signature{DocumentID: "d1", SignedPath: "/api/document-files/blob-42", SignedAt: signedAt})
	require.NoError(t, err)

	got, err := f.documents.ByIDForCaller(ctx, "d1", worker)
	require.NoError(t, err)
	assert.True(t, got.Document.IsSigned())
	require.NotNil(t, got.Signature)
	assert.Equal(t, "/api/document-files/blob-42", got.Signature.SignedPath)
	assert.True(t, signedAt.Equal(got.Signature.SignedAt))

	err = f.documents.Sign(ctx, &model.Signature{DocumentID: "d1", SignedPath: "/other", SignedAt: signedAt})
	assert.ErrorIs(t, err, ErrAlreadySigned)

	err = f.documents.Sign(ctx, &model.Signature{DocumentID: "d9", SignedPath: "/other", SignedAt: signedAt})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	got, err = f.documents.ByIDForCaller(ctx, "d1", worker)
	require.NoError(t, err)
	assert.Equal(t, "/api/document-files/blob-42", got.Signature.SignedPath)
}

func TestDocumentRepository_SignConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createDocument(t, "d1", time.Now().UTC())

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.documents.Sign(ctx, &model.Signature{DocumentID: "d1", SignedPath: "/p", SignedAt: time.Now().UTC()})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	var count int
	require.NoError(t, f.db.Get(&count, `SELECT COUNT(*) FROM document_signatures WHERE document_id = 'd1'`))
	assert.Equal(t, 1, count)
}

func TestDocumentRepository_ListForCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	f.createDocument(t, "old", now.Add(-time.Hour))
	f.createDocument(t, "new", now)
	require.NoError(t, f.documents.Sign(ctx, &model.Signature{DocumentID: "old", SignedPath: "/signed/old.pdf", SignedAt: now}))

	docs, err := f.documents.ListForCaller(ctx, &model.Caller{ID: "w1", Role: model.RoleWorker})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "new", docs[0].Document.ID)
	assert.Nil(t, docs[0].Signature)
	assert.Equal(t, "old", docs[1].Document.ID)
	require.NotNil(t, docs[1].Signature)

	docs, err = f.documents.ListForCaller(ctx, &model.Caller{ID: "w2", Role: model.RoleWorker})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentRepository_OwnersMustExist(t *testing.T) {
	f := newFixture(t)

	err := f.documents.Create(context.Background(), &model.Document{
		ID:            "orphan",
		Title:         "Orphan",
		OriginalPath:  "/files/orphan.pdf",
		Status:        model.DocumentStatusPending,
		OwnerAdminID:  "a1",
		OwnerWorkerID: "ghost",
		CreatedAt:     time.Now().UTC(),
	})
	assert.Error(t, err)
}
