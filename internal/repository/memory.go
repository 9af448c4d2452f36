package repository

import (
	"context"
	"sync"

	"github.com/smashpoint/league/internal/domain"
)

// MemoryDocumentRepository keeps the encoded document in process memory.
// Every Load decodes a fresh copy, so callers never share slices with the store.
type MemoryDocumentRepository struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryDocumentRepository returns an empty in-memory backend.
func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{}
}

func (r *MemoryDocumentRepository) Load(_ context.Context) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return decodeDocument(r.data)
}

func (r *MemoryDocumentRepository) Save(_ context.Context, doc *domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.saves++
	r.mu.Unlock()
	return nil
}

func (r *MemoryDocumentRepository) Ping(_ context.Context) error { return nil }

// Saves returns how many times the document has been written.
func (r *MemoryDocumentRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
