package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededGate(t *testing.T) (*Gate, *repository.MemoryDocumentRepository) {
	t.Helper()
	repo := repository.NewMemoryDocumentRepository()
	doc := domain.NewDocument()
	doc.Players = []domain.Player{
		{ID: "p_a", DisplayName: "Alice", Active: true},
		{ID: "p_b", DisplayName: "Ben", Active: true},
	}
	require.NoError(t, repo.Save(context.Background(), doc))
	return NewGate(repo, testLogger()), repo
}

func TestWithMutationPersistsResult(t *testing.T) {
	gate, repo := seededGate(t)
	ctx := context.Background()

	id, err := WithMutation(ctx, gate, func(doc *domain.Document) (string, error) {
		m := domain.Match{ID: "m_1", PlayerAID: "p_a", PlayerBID: "p_b", WinnerID: "p_a"}
		doc.Matches = append(doc.Matches, m)
		return m.ID, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "m_1", id)

	snap, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Matches, 1)
	assert.Equal(t, int64(1), snap.Revision)
	assert.Equal(t, 2, repo.Saves())
}

func TestWithMutationSeesCommitRevision(t *testing.T) {
	gate, _ := seededGate(t)

	rev, err := WithMutation(context.Background(), gate, func(doc *domain.Document) (int64, error) {
		return doc.Revision, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)
}

func TestWithMutationErrorPersistsNothing(t *testing.T) {
	gate, repo := seededGate(t)
	ctx := context.Background()

	_, err := WithMutation(ctx, gate, func(doc *domain.Document) (domain.CascadeResult, error) {
		doc.News = append(doc.News, domain.NewsItem{ID: "n_1"})
		return league.CascadeDeletePlayer(doc, "p_missing")
	})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	snap, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.News, "mutation before the failure must not leak")
	assert.Equal(t, int64(0), snap.Revision)
	assert.Equal(t, 1, repo.Saves())
}

func TestSnapshotIsPrivateCopy(t *testing.T) {
	gate, _ := seededGate(t)
	ctx := context.Background()

	snap, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	snap.Players[0].DisplayName = "changed"

	again, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Players[0].DisplayName)
}

func TestCascadeDeleteThroughGate(t *testing.T) {
	gate, _ := seededGate(t)
	ctx := context.Background()

	require.NoError(t, gate.Mutate(ctx, func(doc *domain.Document) error {
		doc.Matches = append(doc.Matches,
			domain.Match{ID: "m_1", PlayerAID: "p_a", PlayerBID: "p_b", WinnerID: "p_a"},
			domain.Match{ID: "m_2", PlayerAID: "p_b", PlayerBID: "p_a", WinnerID: "p_a"},
		)
		doc.Accounts = append(doc.Accounts, domain.Account{ID: "a_1", PlayerID: "p_a"})
		return nil
	}))

	result, err := WithMutation(ctx, gate, func(doc *domain.Document) (domain.CascadeResult, error) {
		return league.CascadeDeletePlayer(doc, "p_a")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.MatchesRemoved)

	snap, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	for _, m := range snap.Matches {
		assert.False(t, m.Involves("p_a"))
	}
	assert.Empty(t, snap.Accounts)
	assert.True(t, CheckIntegrity(snap).AllPassed)
}

func TestWithMutationSerializesWriters(t *testing.T) {
	gate, _ := seededGate(t)
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := WithMutation(ctx, gate, func(doc *domain.Document) (int, error) {
				doc.CommunityPosts = append(doc.CommunityPosts, domain.CommunityPost{
					ID:      fmt.Sprintf("c_%02d", i),
					Content: "post",
				})
				return len(doc.CommunityPosts), nil
			})
			errs <- err
		}(i)
	}

	// readers running alongside must always see a complete document
	var readers sync.WaitGroup
	for i := 0; i < 10; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			snap, err := gate.Snapshot(ctx)
			if assert.NoError(t, err) {
				assert.Equal(t, int(snap.Revision), len(snap.CommunityPosts))
			}
		}()
	}

	wg.Wait()
	readers.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := gate.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.CommunityPosts, writers, "every write must survive")
	assert.Equal(t, int64(writers), snap.Revision)
	assert.True(t, CheckIntegrity(snap).AllPassed)
}

type failingRepo struct {
	*repository.MemoryDocumentRepository
	loadErr error
	saveErr error
}

func (r *failingRepo) Load(ctx context.Context) (*domain.Document, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.MemoryDocumentRepository.Load(ctx)
}

func (r *failingRepo) Save(ctx context.Context, doc *domain.Document) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.MemoryDocumentRepository.Save(ctx, doc)
}

func TestWithMutationStorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("load failure is internal", func(t *testing.T) {
		repo := &failingRepo{MemoryDocumentRepository: repository.NewMemoryDocumentRepository(), loadErr: errors.New("disk gone")}
		gate := NewGate(repo, testLogger())

		called := false
		err := gate.Mutate(ctx, func(*domain.Document) error { called = true; return nil })
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeInternal, appErr.Code)
		assert.False(t, called)

		_, err = gate.Snapshot(ctx)
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeInternal, appErr.Code)
	})

	t.Run("save failure is internal", func(t *testing.T) {
		repo := &failingRepo{MemoryDocumentRepository: repository.NewMemoryDocumentRepository(), saveErr: errors.New("read-only fs")}
		gate := NewGate(repo, testLogger())

		err := gate.Mutate(ctx, func(*domain.Document) error { return nil })
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeInternal, appErr.Code)
		assert.Equal(t, "persist document", appErr.Message)
	})

	t.Run("conflict from the backend is passed through", func(t *testing.T) {
		repo := &failingRepo{MemoryDocumentRepository: repository.NewMemoryDocumentRepository(), saveErr: domain.ErrConflict("stale")}
		gate := NewGate(repo, testLogger())

		err := gate.Mutate(ctx, func(*domain.Document) error { return nil })
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeConflict, appErr.Code)
	})

	t.Run("cancelled context never takes the lock", func(t *testing.T) {
		gate := NewGate(repository.NewMemoryDocumentRepository(), testLogger())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := gate.Mutate(cctx, func(*domain.Document) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}
