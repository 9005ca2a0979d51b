package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// localStore persists blobs onto the local filesystem for development setups
// where no storage account is available.
type localStore struct {
	basePath string
}

// NewLocal initializes a Store rooted at basePath.
func NewLocal(basePath string) (Store, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("blobstore: base path is required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: ensure base path: %w", err)
	}
	return &localStore{basePath: abs}, nil
}

func (s *localStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	fullPath, err := s.resolve(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: ensure directory: %w", ErrUpload, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write file: %w", ErrUpload, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(fullPath)}).String(), nil
}

func (s *localStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	fullPath, err := s.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownload, name, err)
	}
	return data, nil
}

func (s *localStore) Delete(ctx context.Context, name string) error {
	fullPath, err := s.resolve(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDelete, name, err)
	}
	return nil
}

// resolve normalizes a name and prevents escaping the store root.
func (s *localStore) resolve(name string) (string, error) {
	key := strings.TrimSpace(name)
	if key == "" {
		return "", ErrInvalidName
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleaned)), nil
}
