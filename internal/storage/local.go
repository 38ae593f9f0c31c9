package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// LocalStore serves the document root from a directory on disk.
// All access goes through os.Root, so symlinks cannot leave the directory either.
type LocalStore struct {
	dir  string
	root *os.Root
}

func NewLocalStore(dir string) (*LocalStore, error) {
	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, fmt.Errorf("failed to create document root: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open document root: %w", err)
	}

	slog.Info("local document store ready", "dir", dir)

	return &LocalStore{dir: dir, root: root}, nil
}

func (s *LocalStore) Type() string {
	return "local"
}

func (s *LocalStore) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !localPath(p) {
		return nil, ErrInvalidLocator
	}

	f, err := s.root.Open(filepath.FromSlash(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return data, nil
}

func (s *LocalStore) Save(ctx context.Context, p string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !localPath(p) {
		return ErrInvalidLocator
	}

	if dir := path.Dir(p); dir != "." {
		err := s.root.MkdirAll(filepath.FromSlash(dir), 0750)
		if err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := s.root.OpenFile(filepath.FromSlash(p), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	_, err = io.Copy(f, r)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close document: %w", closeErr)
	}

	return nil
}

func (s *LocalStore) Delete(ctx context.Context, p string) error {
	if !localPath(p) {
		return ErrInvalidLocator
	}

	err := s.root.Remove(filepath.FromSlash(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) Close() error {
	return s.root.Close()
}
