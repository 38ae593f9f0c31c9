package repository

import (
	"context"
	"testing"
	"time"

	"github.com/caredocs/caredocs/internal/db/dbtest"
	"github.com/caredocs/caredocs/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db        *sqlx.DB
	users     UserRepository
	documents DocumentRepository
	blobs     BlobRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := dbtest.New(t)
	f := &fixture{
		db:        database,
		users:     NewUserRepository(database),
		documents: NewDocumentRepository(database),
		blobs:     NewBlobRepository(database),
	}

	for _, u := range []*model.User{
		{ID: "a1", Email: "a1@example.com", Name: "Admin One", Role: model.RoleAdmin},
		{ID: "a2", Email: "a2@example.com", Name: "Admin Two", Role: model.RoleAdmin},
		{ID: "w1", Email: "w1@example.com", Name: "Worker One", Role: model.RoleWorker},
		{ID: "w2", Email: "w2@example.com", Name: "Worker Two", Role: model.RoleWorker},
	} {
		u.CreatedAt = time.Now().UTC()
		require.NoError(t, f.users.Create(context.Background(), u))
	}

	return f
}

func (f *fixture) createDocument(t *testing.T, id string, createdAt time.Time) *model.Document {
	t.Helper()

	doc := &model.Document{
		ID:            id,
		Title:         "Document " + id,
		OriginalPath:  "/files/" + id + ".pdf",
		Status:        model.DocumentStatusPending,
		OwnerAdminID:  "a1",
		OwnerWorkerID: "w1",
		CreatedAt:     createdAt,
	}
	require.NoError(t, f.documents.Create(context.Background(), doc))
	return doc
}
