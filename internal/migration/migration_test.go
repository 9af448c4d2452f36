package migration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/repository"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func seeded(t *testing.T, revision int64, mutate func(doc *domain.Document)) *repository.MemoryDocumentRepository {
	t.Helper()
	doc := domain.NewDocument()
	doc.Revision = revision
	doc.Players = []domain.Player{{ID: "p_a", Active: true}, {ID: "p_b", Active: true}}
	doc.Matches = []domain.Match{{ID: "m_1", PlayerAID: "p_a", PlayerBID: "p_b", WinnerID: "p_a", Score: "6-1"}}
	if mutate != nil {
		mutate(doc)
	}
	repo := repository.NewMemoryDocumentRepository()
	require.NoError(t, repo.Save(context.Background(), doc))
	return repo
}

func TestCopy_IntoEmptyDestination(t *testing.T) {
	ctx := context.Background()
	from := seeded(t, 7, nil)
	to := repository.NewMemoryDocumentRepository()

	result, err := NewCopier(from, to, testLogger).Copy(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.SourceRevision)
	assert.Equal(t, int64(7), result.StoredRevision)
	assert.Equal(t, 2, result.Players)
	assert.Equal(t, 1, result.Matches)

	doc, err := to.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), doc.Revision)
	assert.Len(t, doc.Players, 2)
	assert.Equal(t, "p_a", doc.Matches[0].WinnerID)
}

func TestCopy_RefusesOccupiedDestination(t *testing.T) {
	from := seeded(t, 3, nil)
	to := seeded(t, 10, func(doc *domain.Document) { doc.Matches = nil })

	_, err := NewCopier(from, to, testLogger).Copy(context.Background(), false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revision 10")
	assert.Equal(t, 1, to.Saves())
}

func TestCopy_ForceContinuesDestinationRevision(t *testing.T) {
	ctx := context.Background()
	from := seeded(t, 3, nil)
	to := seeded(t, 10, func(doc *domain.Document) { doc.Matches = nil })

	result, err := NewCopier(from, to, testLogger).Copy(ctx, true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(11), result.StoredRevision)

	doc, err := to.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), doc.Revision)
	assert.Len(t, doc.Matches, 1)
}

func TestCopy_DryRunLeavesDestination(t *testing.T) {
	from := seeded(t, 3, nil)
	to := repository.NewMemoryDocumentRepository()

	result, err := NewCopier(from, to, testLogger).Copy(context.Background(), false, true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 0, to.Saves())
}

func TestCopy_RefusesBrokenSource(t *testing.T) {
	from := seeded(t, 3, func(doc *domain.Document) { doc.Matches[0].PlayerBID = "p_gone" })
	to := repository.NewMemoryDocumentRepository()

	_, err := NewCopier(from, to, testLogger).Copy(context.Background(), false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match_references")
	assert.Equal(t, 0, to.Saves())
}

func TestCopy_UnrevisionedSourceTwice(t *testing.T) {
	ctx := context.Background()
	from := seeded(t, 0, nil)
	to := repository.NewMemoryDocumentRepository()
	copier := NewCopier(from, to, testLogger)

	result, err := copier.Copy(ctx, false, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.SourceRevision)
	assert.Equal(t, int64(1), result.StoredRevision)

	_, err = copier.Copy(ctx, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use force")
	assert.Equal(t, 1, to.Saves())

	result, err = copier.Copy(ctx, true, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.StoredRevision)
}

func TestCopy_RefusesUnrevisionedButPopulatedDestination(t *testing.T) {
	from := seeded(t, 4, nil)
	to := seeded(t, 0, nil)

	_, err := NewCopier(from, to, testLogger).Copy(context.Background(), false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 players")
	assert.Equal(t, 1, to.Saves())
}
