package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/caredocs/caredocs/internal/config"
	"github.com/caredocs/caredocs/internal/model"
	"github.com/caredocs/caredocs/internal/repository"
	"github.com/caredocs/caredocs/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrInvalidMode   = errors.New("mode must be view or download")
	ErrAlreadySigned = errors.New("document already signed")
	ErrInvalidWorker = errors.New("worker not found")
	ErrTitleRequired = errors.New("title is required")
	ErrEmptyContent  = errors.New("document content is empty")
)

// NoStoreCacheControl is sent with every artifact: the same document id can
// switch from original to signed content at any time.
const NoStoreCacheControl = "no-store, no-cache, must-revalidate, max-age=0"

// DocumentStore is the storage surface the document service needs.
// Implemented by *storage.Resolver.
type DocumentStore interface {
	Fetch(ctx context.Context, locator string) (*storage.Object, error)
	StoreBlob(ctx context.Context, data []byte, contentType string) (string, error)
	StoreFile(ctx context.Context, path string, data []byte) (string, error)
	Remove(ctx context.Context, locator string) error
}

type DocumentService struct {
	documentRepository repository.DocumentRepository
	userRepository     repository.UserRepository
	store              DocumentStore
	reporter           IntegrityReporter
	defaultBackend     string
}

func NewDocumentService(
	documentRepository repository.DocumentRepository,
	userRepository repository.UserRepository,
	store DocumentStore,
	reporter IntegrityReporter,
	defaultBackend string,
) *DocumentService {
	return &DocumentService{
		documentRepository: documentRepository,
		userRepository:     userRepository,
		store:              store,
		reporter:           reporter,
		defaultBackend:     defaultBackend,
	}
}

// Retrieve loads the artifact of documentID the caller is entitled to see.
// Errors: ErrUnauthenticated, ErrForbidden, ErrInvalidMode, ErrDocumentNotFound,
// ErrContentNotFound; anything else is a server failure.
func (s *DocumentService) Retrieve(ctx context.Context, caller *model.Caller, documentID, mode string) (*model.Payload, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	if !model.ValidRole(caller.Role) {
		return nil, ErrForbidden
	}
	if mode != model.ModeView && mode != model.ModeDownload {
		return nil, ErrInvalidMode
	}

	record, err := s.documentRepository.ByIDForCaller(ctx, documentID, caller)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	doc := record.Document
	err = Authorize(caller, doc)
	if err != nil {
		return nil, err
	}

	locator, signed := ResolvePath(doc, record.Signature)
	if doc.IsSigned() && !signed {
		s.reporter.Report(ctx, IntegrityIssue{
			DocumentID: doc.ID,
			Reason:     IntegrityMissingSignature,
			Locator:    doc.OriginalPath,
		})
	}

	obj, err := s.store.Fetch(ctx, locator)
	if signed && errors.Is(err, storage.ErrNotFound) {
		s.reporter.Report(ctx, IntegrityIssue{
			DocumentID: doc.ID,
			Reason:     IntegritySignedArtifactMissing,
			Locator:    locator,
		})
		locator, signed = doc.OriginalPath, false
		obj, err = s.store.Fetch(ctx, locator)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document %s: %w", doc.ID, err)
	}

	version := model.VersionOriginal
	if signed {
		version = model.VersionSigned
	}

	return newPayload(doc, obj, mode, version), nil
}

func newPayload(doc *model.Document, obj *storage.Object, mode, version string) *model.Payload {
	contentType := obj.ContentType
	if contentType == "" {
		contentType = model.DefaultContentType
	}

	dispositionType := "inline"
	if mode == model.ModeDownload {
		dispositionType = "attachment"
	}

	disposition := mime.FormatMediaType(dispositionType, map[string]string{
		"filename": downloadFilename(doc, contentType),
	})
	if disposition == "" {
		disposition = dispositionType
	}

	return &model.Payload{
		DocumentID:   doc.ID,
		Content:      obj.Content,
		ContentType:  contentType,
		Disposition:  disposition,
		CacheControl: NoStoreCacheControl,
		Version:      version,
	}
}

// downloadFilename derives a header-safe file name from the title.
func downloadFilename(doc *model.Document, contentType string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(doc.Title))
	name = strings.Trim(name, "._")
	if name == "" {
		name = "document-" + doc.ID
	}
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:100])
	}

	if contentType == model.DefaultContentType && !strings.EqualFold(path.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// List returns the documents owned by the caller, newest first.
func (s *DocumentService) List(ctx context.Context, caller *model.Caller) ([]*model.DocumentWithSignature, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	if !model.ValidRole(caller.Role) {
		return nil, ErrForbidden
	}

	docs, err := s.documentRepository.ListForCaller(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

type CreateDocumentInput struct {
	Title       string
	Description string
	WorkerID    string
	Content     []byte
}

// Create stores a new pending document owned by the calling admin and the given worker.
// Content must already be validated as a PDF by the caller.
func (s *DocumentService) Create(ctx context.Context, caller *model.Caller, input CreateDocumentInput) (*model.Document, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	if caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(input.Content) == 0 {
		return nil, ErrEmptyContent
	}

	worker, err := s.userRepository.ByID(ctx, input.WorkerID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidWorker
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	if worker.Role != model.RoleWorker {
		return nil, ErrInvalidWorker
	}

	docID := uuid.New().String()
	locator, err := s.storeArtifact(ctx, docID, "original.pdf", input.Content)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:            docID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		OriginalPath:  locator,
		Status:        model.DocumentStatusPending,
		OwnerAdminID:  caller.ID,
		OwnerWorkerID: worker.ID,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.documentRepository.Create(ctx, doc)
	if err != nil {
		s.cleanup(ctx, locator)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	slog.InfoContext(ctx, "document created",
		"document_id", doc.ID,
		"admin_id", doc.OwnerAdminID,
		"worker_id", doc.OwnerWorkerID,
	)

	return doc, nil
}

// Sign stores the signed artifact and moves the document to signed.
// Either owner may upload it; a document is signed at most once.
func (s *DocumentService) Sign(ctx context.Context, caller *model.Caller, documentID string, content []byte) (*model.Signature, error) {
	if caller == nil || caller.ID == "" {
		return nil, ErrUnauthenticated
	}
	if !model.ValidRole(caller.Role) {
		return nil, ErrForbidden
	}
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}

	record, err := s.documentRepository.ByIDForCaller(ctx, documentID, caller)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	err = Authorize(caller, record.Document)
	if err != nil {
		return nil, err
	}
	if record.Document.IsSigned() {
		return nil, ErrAlreadySigned
	}

	locator, err := s.storeArtifact(ctx, documentID, "signed.pdf", content)
	if err != nil {
		return nil, err
	}

	sig := &model.Signature{
		DocumentID: documentID,
		SignedPath: locator,
		SignedAt:   time.Now().UTC(),
	}

	err = s.documentRepository.Sign(ctx, sig)
	if err != nil {
		s.cleanup(ctx, locator)
		if errors.Is(err, repository.ErrAlreadySigned) {
			return nil, ErrAlreadySigned
		}
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to record signature: %w", err)
	}

	slog.InfoContext(ctx, "document signed",
		"document_id", documentID,
		"signed_by", caller.ID,
		"role", caller.Role,
	)

	return sig, nil
}

// storeArtifact writes content to the configured default backend.
func (s *DocumentService) storeArtifact(ctx context.Context, docID, name string, content []byte) (string, error) {
	var (
		locator string
		err     error
	)
	if s.defaultBackend == config.BackendFile {
		locator, err = s.store.StoreFile(ctx, path.Join("documents", docID, name), content)
	} else {
		locator, err = s.store.StoreBlob(ctx, content, model.DefaultContentType)
	}
	if err != nil {
		return "", fmt.Errorf("failed to store document content: %w", err)
	}
	return locator, nil
}

// cleanup removes an artifact whose database record could not be written
func (s *DocumentService) cleanup(ctx context.Context, locator string) {
	err := s.store.Remove(context.WithoutCancel(ctx), locator)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete document content during cleanup", "error", err, "locator", locator)
	}
}
