package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/repository"
)

// Gate serialises every write to the league document:
//  1. take the exclusive lock
//  2. load the current document
//  3. run the mutation against it
//  4. persist the whole document
//  5. release the lock
//
// Reads take the shared lock, so they never observe a half-persisted document.
type Gate struct {
	mu     sync.RWMutex
	docs   repository.DocumentRepository
	logger *slog.Logger
}

// NewGate creates a mutation gate over the given document backend.
func NewGate(docs repository.DocumentRepository, logger *slog.Logger) *Gate {
	return &Gate{docs: docs, logger: logger}
}

// Snapshot returns a private copy of the current document.
func (g *Gate) Snapshot(ctx context.Context) (*domain.Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	doc, err := g.docs.Load(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load document", err)
	}
	return doc, nil
}

// Ping reports whether the backing store is reachable.
func (g *Gate) Ping(ctx context.Context) error {
	return g.docs.Ping(ctx)
}

// WithMutation runs fn against the freshly loaded document while holding the write lock.
// If fn returns an error nothing is persisted and the error is returned unchanged.
// On success the document is saved with its revision bumped by one and fn's result returned.
func WithMutation[T any](ctx context.Context, g *Gate, fn func(doc *domain.Document) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	doc, err := g.docs.Load(ctx)
	if err != nil {
		return zero, domain.ErrInternal("load document", err)
	}

	// fn sees the revision it will commit as; a failed fn discards the whole copy
	doc.Revision++
	result, err := fn(doc)
	if err != nil {
		return zero, err
	}

	if err := g.docs.Save(ctx, doc); err != nil {
		g.logger.Error("persist document failed", "revision", doc.Revision, "error", err)
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return zero, appErr
		}
		return zero, domain.ErrInternal("persist document", err)
	}

	return result, nil
}

// Mutate is WithMutation for callers that only need the error.
func (g *Gate) Mutate(ctx context.Context, fn func(doc *domain.Document) error) error {
	_, err := WithMutation(ctx, g, func(doc *domain.Document) (struct{}, error) {
		return struct{}{}, fn(doc)
	})
	return err
}
