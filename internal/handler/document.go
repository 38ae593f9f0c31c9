package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/caredocs/caredocs/internal/ctxkeys"
	"github.com/caredocs/caredocs/internal/model"
	"github.com/caredocs/caredocs/internal/service"
	"github.com/caredocs/caredocs/internal/validation"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadSize   int64
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadSize int64) *DocumentHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = validation.DefaultMaxDocumentSize
	}
	return &DocumentHandler{
		documentService: documentService,
		maxUploadSize:   maxUploadSize,
	}
}

type documentResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Signed        bool       `json:"signed"`
	OwnerAdminID  string     `json:"ownerAdminId"`
	OwnerWorkerID string     `json:"ownerWorkerId"`
	CreatedAt     time.Time  `json:"createdAt"`
	SignedAt      *time.Time `json:"signedAt,omitempty"`
}

func newDocumentResponse(doc *model.Document, sig *model.Signature) documentResponse {
	resp := documentResponse{
		ID:            doc.ID,
		Title:         doc.Title,
		Description:   doc.Description,
		Status:        doc.Status,
		Signed:        doc.IsSigned(),
		OwnerAdminID:  doc.OwnerAdminID,
		OwnerWorkerID: doc.OwnerWorkerID,
		CreatedAt:     doc.CreatedAt,
	}
	if sig != nil && doc.IsSigned() {
		signedAt := sig.SignedAt
		resp.SignedAt = &signedAt
	}
	return resp
}

// File serves the authoritative artifact of a document.
// GET /api/documents/{id}/file?mode=view|download
func (h *DocumentHandler) File(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())
	documentID := r.PathValue("id")

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = model.ModeView
	}

	payload, err := h.documentService.Retrieve(r.Context(), caller, documentID, mode)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to load document", "document_id", documentID)
		return
	}

	header := w.Header()
	header.Set("Content-Type", payload.ContentType)
	header.Set("Content-Disposition", payload.Disposition)
	header.Set("Content-Length", strconv.Itoa(len(payload.Content)))
	header.Set("Cache-Control", payload.CacheControl)
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("X-Document-Version", payload.Version)
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	_, err = w.Write(payload.Content)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to write document content", "error", err, "document_id", documentID)
	}
}

// List returns the caller's documents.
// GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())

	docs, err := h.documentService.List(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to list documents")
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentResponse(d.Document, d.Signature))
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

// Create uploads a new pending document for a worker.
// POST /api/documents (multipart: title, description, worker_id, file)
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())

	content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	doc, err := h.documentService.Create(r.Context(), caller, service.CreateDocumentInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		WorkerID:    r.FormValue("worker_id"),
		Content:     content,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to create document")
		return
	}

	writeJSON(w, http.StatusCreated, newDocumentResponse(doc, nil))
}

// Sign attaches the signed artifact to a pending document.
// POST /api/documents/{id}/sign (multipart: file)
func (h *DocumentHandler) Sign(w http.ResponseWriter, r *http.Request) {
	caller := ctxkeys.Caller(r.Context())
	documentID := r.PathValue("id")

	content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	sig, err := h.documentService.Sign(r.Context(), caller, documentID, content)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to sign document", "document_id", documentID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       sig.DocumentID,
		"status":   model.DocumentStatusSigned,
		"signedAt": sig.SignedAt,
	})
}

// readUpload parses the multipart body and returns the validated PDF in field "file".
func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	// Leave room for the other form fields
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))

	err := r.ParseMultipartForm(h.maxUploadSize)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return nil, false
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return nil, false
	}

	content, err := validation.ReadPDF(header, h.maxUploadSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	return content, true
}

// writeServiceError maps service errors to status codes. Anything unknown is
// logged with its cause and answered with a generic 500.
func (h *DocumentHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, attrs ...any) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, service.ErrContentNotFound):
		writeError(w, http.StatusNotFound, "Document file not found")
	case errors.Is(err, service.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "Invalid mode, use view or download")
	case errors.Is(err, service.ErrAlreadySigned):
		writeError(w, http.StatusConflict, "Document already signed")
	case errors.Is(err, service.ErrInvalidWorker):
		writeError(w, http.StatusBadRequest, "Worker not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "File is empty")
	default:
		attrs = append(attrs, "error", err, "path", r.URL.Path)
		if caller := ctxkeys.Caller(r.Context()); caller != nil {
			attrs = append(attrs, "caller_id", caller.ID)
		}
		slog.ErrorContext(r.Context(), fallback, attrs...)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
