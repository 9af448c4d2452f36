package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/smashpoint/league/internal/domain"
)

// documentRowID is the primary key of the single ledger_document row.
const documentRowID = 1

// PgDocumentRepository stores the document as one JSONB row.
// Save only succeeds when the stored revision is the one the document was loaded at,
// which protects against a second process writing the same database.
type PgDocumentRepository struct {
	db DBTX
}

// NewPgDocumentRepository returns a pgx-backed DocumentRepository.
func NewPgDocumentRepository(db DBTX) *PgDocumentRepository {
	return &PgDocumentRepository{db: db}
}

func (r *PgDocumentRepository) Load(ctx context.Context) (*domain.Document, error) {
	var (
		body     []byte
		revision int64
	)
	err := r.db.QueryRow(ctx, `
		SELECT body, revision FROM ledger_document WHERE id = $1`, documentRowID,
	).Scan(&body, &revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger document: %w", err)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return nil, err
	}
	doc.Revision = revision
	return doc, nil
}

func (r *PgDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO ledger_document (id, revision, body, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET revision = EXCLUDED.revision, body = EXCLUDED.body, updated_at = now()
		WHERE ledger_document.revision = $4`,
		documentRowID, doc.Revision, body, doc.Revision-1,
	)
	if err != nil {
		return fmt.Errorf("upsert ledger document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict(fmt.Sprintf("ledger document changed concurrently (expected revision %d)", doc.Revision-1))
	}
	return nil
}

func (r *PgDocumentRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping ledger database: %w", err)
	}
	return nil
}
