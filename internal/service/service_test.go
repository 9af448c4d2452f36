package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/guard"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/repository"
)

const testSeason = "2026-S1"

var fixedNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	svc    *LeagueService
	gate   *ledger.Gate
	repo   *repository.MemoryDocumentRepository
	events *recordingPublisher
}

func newFixture(t *testing.T, seed func(doc *domain.Document)) *fixture {
	t.Helper()
	repo := repository.NewMemoryDocumentRepository()
	doc := domain.NewDocument()
	if seed != nil {
		seed(doc)
	}
	require.NoError(t, repo.Save(context.Background(), doc))

	gate := ledger.NewGate(repo, testLogger())
	validator := league.NewValidator(testSeason)
	validator.Now = func() time.Time { return fixedNow }
	events := &recordingPublisher{}

	svc := NewLeagueService(gate, validator, events, guard.NewIdempotencyGuard(time.Hour), testLogger())
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, gate: gate, repo: repo, events: events}
}

func seedPlayers(doc *domain.Document) {
	doc.Players = []domain.Player{
		{ID: "p_alice", DisplayName: "Alice", NTRP: "4.0", Group: domain.GroupD2, CountryCode: "+60", Phone: "123456789", WhatsAppNumber: "60123456789", Active: true, TACVerified: true},
		{ID: "p_ben", DisplayName: "ben", NTRP: "4.2", Group: domain.GroupD2, Active: true},
		{ID: "p_cara", DisplayName: "Cara", NTRP: "3.0", Group: domain.GroupD4, Active: true},
		{ID: "p_dan", DisplayName: "Dan", NTRP: "3.0", Group: domain.GroupD4, Active: false},
	}
}

func (f *fixture) snapshot(t *testing.T) *domain.Document {
	t.Helper()
	doc, err := f.gate.Snapshot(context.Background())
	require.NoError(t, err)
	return doc
}
