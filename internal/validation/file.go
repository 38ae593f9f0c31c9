package validation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxDocumentSize is the upload limit for documents (10MB)
const DefaultMaxDocumentSize int64 = 10 << 20

var pdfMagic = []byte("%PDF-")

// ReadPDF validates an uploaded document and returns its bytes.
// Size is checked before reading, type by extension and magic number
// (the client-sent Content-Type is ignored).
func ReadPDF(header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	if header.Size > maxSize {
		return nil, fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		return nil, fmt.Errorf("invalid file extension: %s", ext)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Read one byte past the limit to catch headers that under-report size
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	err = ValidatePDFContent(data)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// ValidatePDFContent checks the bytes themselves look like a PDF.
func ValidatePDFContent(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("file is empty")
	}

	detected := http.DetectContentType(data)
	if detected != "application/pdf" || !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("invalid file type (detected: %s)", detected)
	}

	return nil
}
