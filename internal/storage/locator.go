package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

type LocatorKind int

const (
	// LocatorFile is a path relative to the document root.
	LocatorFile LocatorKind = iota + 1
	// LocatorBlob is a row in the document_files table.
	LocatorBlob
)

func (k LocatorKind) String() string {
	switch k {
	case LocatorFile:
		return "file"
	case LocatorBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// Locator says where a document artifact's bytes live.
// Exactly one of BlobID and Path is set, matching Kind.
type Locator struct {
	Kind   LocatorKind
	BlobID string
	Path   string
}

func BlobLocator(id string) Locator {
	return Locator{Kind: LocatorBlob, BlobID: id}
}

func FileLocator(path string) Locator {
	return Locator{Kind: LocatorFile, Path: strings.TrimLeft(path, "/")}
}

// Scheme converts locators to and from the single string column they are stored in.
// Any string starting with the blob prefix is a blob reference; everything else is a file path.
type Scheme struct {
	blobPrefix string
}

func NewScheme(blobPrefix string) Scheme {
	prefix := "/" + strings.Trim(blobPrefix, "/")
	return Scheme{blobPrefix: prefix}
}

func (s Scheme) BlobPrefix() string {
	return s.blobPrefix
}

// Classify is total: every string maps to exactly one kind.
func (s Scheme) Classify(raw string) LocatorKind {
	if raw == s.blobPrefix || strings.HasPrefix(raw, s.blobPrefix+"/") {
		return LocatorBlob
	}
	return LocatorFile
}

// Parse classifies raw and validates the reference it carries.
func (s Scheme) Parse(raw string) (Locator, error) {
	if strings.TrimSpace(raw) == "" {
		return Locator{}, fmt.Errorf("%w: empty", ErrInvalidLocator)
	}

	if s.Classify(raw) == LocatorBlob {
		id := strings.TrimPrefix(strings.TrimPrefix(raw, s.blobPrefix), "/")
		if id == "" || strings.Contains(id, "/") {
			return Locator{}, fmt.Errorf("%w: bad blob reference %q", ErrInvalidLocator, raw)
		}
		return BlobLocator(id), nil
	}

	loc := FileLocator(raw)
	if !localPath(loc.Path) {
		return Locator{}, fmt.Errorf("%w: path escapes document root", ErrInvalidLocator)
	}
	return loc, nil
}

// Format renders loc in its stored form. A file path that would read back as a
// blob reference is rejected so that Parse(Format(loc)) always returns loc.
func (s Scheme) Format(loc Locator) (string, error) {
	switch loc.Kind {
	case LocatorBlob:
		if loc.BlobID == "" || strings.Contains(loc.BlobID, "/") {
			return "", fmt.Errorf("%w: bad blob id %q", ErrInvalidLocator, loc.BlobID)
		}
		return s.blobPrefix + "/" + loc.BlobID, nil
	case LocatorFile:
		if !localPath(loc.Path) {
			return "", fmt.Errorf("%w: path escapes document root", ErrInvalidLocator)
		}
		raw := "/" + loc.Path
		if s.Classify(raw) != LocatorFile {
			return "", fmt.Errorf("%w: path collides with blob prefix", ErrInvalidLocator)
		}
		return raw, nil
	default:
		return "", fmt.Errorf("%w: unknown kind", ErrInvalidLocator)
	}
}

// localPath reports whether p stays inside the root it is joined to.
func localPath(p string) bool {
	if p == "" || strings.Contains(p, "\\") || strings.ContainsRune(p, 0) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(p))
}
