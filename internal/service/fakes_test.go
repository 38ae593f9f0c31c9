package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/caredocs/caredocs/internal/repository"
	"github.com/caredocs/caredocs/internal/storage"
)

// fakeDocumentRepository applies the same ownership scoping as the SQL repository.
type fakeDocumentRepository struct {
	docs    map[string]*model.Document
	sigs    map[string]*model.Signature
	err     error
	signErr error
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{
		docs: make(map[string]*model.Document),
		sigs: make(map[string]*model.Signature),
	}
}

func (f *fakeDocumentRepository) owns(caller *model.Caller, doc *model.Document) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return doc.OwnerAdminID == caller.ID
	case model.RoleWorker:
		return doc.OwnerWorkerID == caller.ID
	}
	return false
}

func (f *fakeDocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	if f.err != nil {
		return f.err
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepository) ByIDForCaller(ctx context.Context, id string, caller *model.Caller) (*model.DocumentWithSignature, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok || !f.owns(caller, doc) {
		return nil, repository.ErrDocumentNotFound
	}
	return &model.DocumentWithSignature{Document: doc, Signature: f.sigs[id]}, nil
}

func (f *fakeDocumentRepository) ListForCaller(ctx context.Context, caller *model.Caller) ([]*model.DocumentWithSignature, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.DocumentWithSignature
	for id, doc := range f.docs {
		if f.owns(caller, doc) {
			out = append(out, &model.DocumentWithSignature{Document: doc, Signature: f.sigs[id]})
		}
	}
	return out, nil
}

func (f *fakeDocumentRepository) Sign(ctx context.Context, sig *model.Signature) error {
	if f.signErr != nil {
		return f.signErr
	}
	doc, ok := f.docs[sig.DocumentID]
	if !ok {
		return repository.ErrDocumentNotFound
	}
	if doc.IsSigned() {
		return repository.ErrAlreadySigned
	}
	doc.Status = model.DocumentStatusSigned
	f.sigs[sig.DocumentID] = sig
	return nil
}

type fakeUserRepository struct {
	users map[string]*model.User
}

func newFakeUserRepository(users ...*model.User) *fakeUserRepository {
	f := &fakeUserRepository{users: make(map[string]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepository) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepository) List(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = &passwordHash
	return nil
}

// fakeStore is an in-memory DocumentStore keyed by raw locator.
type fakeStore struct {
	mu       sync.Mutex
	objects  map[string]*storage.Object
	fetchErr map[string]error
	fetched  []string
	removed  []string
	storeErr error
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  make(map[string]*storage.Object),
		fetchErr: make(map[string]error),
	}
}

func (f *fakeStore) put(locator string, content string) {
	f.objects[locator] = &storage.Object{Content: []byte(content), ContentType: model.DefaultContentType}
}

func (f *fakeStore) Fetch(ctx context.Context, locator string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, locator)
	if err, ok := f.fetchErr[locator]; ok {
		return nil, err
	}
	obj, ok := f.objects[locator]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return obj, nil
}

func (f *fakeStore) StoreBlob(ctx context.Context, data []byte, contentType string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.seq++
	locator := fmt.Sprintf("/api/document-files/blob-%d", f.seq)
	f.objects[locator] = &storage.Object{Content: data, ContentType: contentType}
	return locator, nil
}

func (f *fakeStore) StoreFile(ctx context.Context, path string, data []byte) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.objects[path] = &storage.Object{Content: data, ContentType: model.DefaultContentType}
	return path, nil
}

func (f *fakeStore) Remove(ctx context.Context, locator string) error {
	f.removed = append(f.removed, locator)
	delete(f.objects, locator)
	return nil
}

type recordingReporter struct {
	issues []IntegrityIssue
}

func (r *recordingReporter) Report(ctx context.Context, issue IntegrityIssue) {
	r.issues = append(r.issues, issue)
}
