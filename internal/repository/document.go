package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smashpoint/league/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DocumentRepository loads and stores the whole league document.
//
// Implementations are not expected to serialise callers; the ledger gate does that.
type DocumentRepository interface {
	// Load returns the current document. A backend with nothing stored yet returns
	// an empty document, not an error.
	Load(ctx context.Context) (*domain.Document, error)

	// Save replaces the stored document with doc.
	Save(ctx context.Context, doc *domain.Document) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

func encodeDocument(doc *domain.Document) ([]byte, error) {
	doc.Normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func decodeDocument(data []byte) (*domain.Document, error) {
	doc := &domain.Document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	doc.Normalize()
	return doc, nil
}
