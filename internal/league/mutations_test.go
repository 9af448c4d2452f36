package league

import (
	"testing"
	"time"

	"github.com/smashpoint/league/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveWhere(t *testing.T) {
	kept, removed := RemoveWhere([]int{1, 2, 3, 4, 5, 6}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{1, 3, 5}, kept)
	assert.Equal(t, 3, removed)

	kept, removed = RemoveWhere([]int{}, func(int) bool { return true })
	assert.Empty(t, kept)
	assert.Zero(t, removed)
}

func cascadeFixture() *domain.Document {
	doc := domain.NewDocument()
	doc.Players = []domain.Player{
		player("p_a", "Alice", "D3"),
		player("p_b", "Ben", "D3"),
		player("p_c", "Cara", "D3"),
	}
	doc.Matches = []domain.Match{
		regular("m_1", "S1", "p_a", "p_b", "p_a", "6-1,6-1"),
		regular("m_2", "S1", "p_c", "p_a", "p_c", "6-1,6-1"),
		regular("m_3", "S1", "p_b", "p_c", "p_b", "6-1,6-1"),
	}
	doc.TournamentMatches = []domain.TournamentMatch{
		{ID: "t_1", TournamentKey: domain.TournamentKey{Season: "S1", Round: "SF", Slot: 1},
			TournamentFields: domain.TournamentFields{Player1ID: "p_b", Player2ID: "p_a"}},
		{ID: "t_2", TournamentKey: domain.TournamentKey{Season: "S1", Round: "SF", Slot: 2},
			TournamentFields: domain.TournamentFields{Player1ID: "p_b", Player2ID: "p_c"}},
	}
	doc.Accounts = []domain.Account{
		{ID: "a_1", PlayerID: "p_a"},
		{ID: "a_2", PlayerID: "p_b"},
	}
	return doc
}

func TestCascadeDeletePlayer(t *testing.T) {
	doc := cascadeFixture()

	result, err := CascadeDeletePlayer(doc, "p_a")
	require.NoError(t, err)
	assert.Equal(t, domain.CascadeResult{
		PlayerID:                 "p_a",
		MatchesRemoved:           2,
		TournamentMatchesRemoved: 1,
		AccountsRemoved:          1,
	}, result)

	assert.Nil(t, doc.FindPlayer("p_a"))
	assert.Len(t, doc.Players, 2)
	for _, m := range doc.Matches {
		assert.False(t, m.Involves("p_a"), "match %s still references the deleted player", m.ID)
	}
	require.Len(t, doc.Matches, 1)
	assert.Equal(t, "m_3", doc.Matches[0].ID)
	require.Len(t, doc.TournamentMatches, 1)
	assert.Equal(t, "t_2", doc.TournamentMatches[0].ID)
	assert.Nil(t, doc.FindAccountByPlayer("p_a"))
	assert.NotNil(t, doc.FindAccountByPlayer("p_b"))
}

func TestCascadeDeleteUnknownPlayer(t *testing.T) {
	doc := cascadeFixture()

	_, err := CascadeDeletePlayer(doc, "p_zz")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, doc.Players, 3)
	assert.Len(t, doc.Matches, 3)
}

func TestUpsertTournamentMatch(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := domain.NewDocument()
	key := domain.TournamentKey{Season: "S1", Round: "qf", Slot: 2}
	fields := domain.TournamentFields{Player1ID: "p_a", Player2ID: "p_b", WinnerID: "p_a", Score: "6-4,6-4", Date: "2026-05-01"}

	first, created, err := UpsertTournamentMatch(doc, key, fields, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Regexp(t, `^t_[0-9a-f]{10}$`, first.ID)
	assert.Equal(t, "QF", first.Round)
	require.Len(t, doc.TournamentMatches, 1)

	t.Run("same key updates in place", func(t *testing.T) {
		fields.WinnerID = "p_b"
		fields.Score = "4-6,4-6"
		second, created, err := UpsertTournamentMatch(doc, domain.TournamentKey{Season: " S1 ", Round: "QF", Slot: 2}, fields, now.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		require.Len(t, doc.TournamentMatches, 1)
		assert.Equal(t, "p_b", doc.TournamentMatches[0].WinnerID)
		assert.Equal(t, now.Add(time.Hour), doc.TournamentMatches[0].UpdatedAt)
	})

	t.Run("repeating an identical upsert is idempotent", func(t *testing.T) {
		before := doc.TournamentMatches[0]
		again, created, err := UpsertTournamentMatch(doc, key, fields, before.UpdatedAt)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, before, again)
		assert.Len(t, doc.TournamentMatches, 1)
	})

	t.Run("different slot appends", func(t *testing.T) {
		other, created, err := UpsertTournamentMatch(doc, domain.TournamentKey{Season: "S1", Round: "QF", Slot: 3}, fields, now)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, first.ID, other.ID)
		assert.Len(t, doc.TournamentMatches, 2)
	})
}

func TestUpsertTournamentMatchRejectsBadKey(t *testing.T) {
	doc := domain.NewDocument()
	tests := []struct {
		name    string
		key     domain.TournamentKey
		wantMsg string
	}{
		{"missing season", domain.TournamentKey{Round: "F", Slot: 1}, "season is required"},
		{"unknown round", domain.TournamentKey{Season: "S1", Round: "R64", Slot: 1}, "invalid round"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := UpsertTournamentMatch(doc, tt.key, domain.TournamentFields{}, time.Now())
			var appErr *domain.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, domain.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Empty(t, doc.TournamentMatches)
		})
	}
}
