package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/smashpoint/league/internal/domain"
)

// FileDocumentRepository stores the document as a single JSON file.
type FileDocumentRepository struct {
	path string
}

// NewFileDocumentRepository returns a file-backed DocumentRepository.
func NewFileDocumentRepository(path string) *FileDocumentRepository {
	return &FileDocumentRepository{path: path}
}

func (r *FileDocumentRepository) Load(_ context.Context) (*domain.Document, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return decodeDocument(data)
}

// Save writes to a temp file in the same directory and renames it over the target,
// so a crash mid-write leaves the previous document intact.
func (r *FileDocumentRepository) Save(_ context.Context, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

func (r *FileDocumentRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
