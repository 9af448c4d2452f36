package league

import (
	"strings"
	"time"

	"github.com/smashpoint/league/internal/domain"
)

// RemoveWhere filters items in place and reports how many were dropped.
func RemoveWhere[T any](items []T, drop func(T) bool) ([]T, int) {
	kept := items[:0]
	for _, it := range items {
		if !drop(it) {
			kept = append(kept, it)
		}
	}
	removed := len(items) - len(kept)
	// clear the tail so dropped records are not retained by the backing array
	var zero T
	for i := len(kept); i < len(items); i++ {
		items[i] = zero
	}
	return kept, removed
}

// CascadeDeletePlayer removes the player together with every match, bracket slot and
// account that references it. It must run inside a single mutation so no partial cascade
// is ever persisted.
func CascadeDeletePlayer(doc *domain.Document, playerID string) (domain.CascadeResult, error) {
	if doc.FindPlayer(playerID) == nil {
		return domain.CascadeResult{}, domain.ErrNotFound("player", playerID)
	}

	result := domain.CascadeResult{PlayerID: playerID}
	doc.Players, _ = RemoveWhere(doc.Players, func(p domain.Player) bool {
		return p.ID == playerID
	})
	doc.Matches, result.MatchesRemoved = RemoveWhere(doc.Matches, func(m domain.Match) bool {
		return m.Involves(playerID)
	})
	doc.TournamentMatches, result.TournamentMatchesRemoved = RemoveWhere(doc.TournamentMatches, func(t domain.TournamentMatch) bool {
		return t.Involves(playerID)
	})
	doc.Accounts, result.AccountsRemoved = RemoveWhere(doc.Accounts, func(a domain.Account) bool {
		return a.PlayerID == playerID
	})
	return result, nil
}

// NormalizeTournamentKey trims the key and checks the round against the bracket rounds.
func NormalizeTournamentKey(key domain.TournamentKey) (domain.TournamentKey, error) {
	key.Season = strings.TrimSpace(key.Season)
	key.Round = strings.ToUpper(strings.TrimSpace(key.Round))
	if key.Season == "" {
		return key, domain.ErrValidation("season is required")
	}
	if !domain.IsValidRound(key.Round) {
		return key, domain.ErrValidation("invalid round")
	}
	return key, nil
}

// UpsertTournamentMatch writes the bracket slot identified by key. An existing slot is
// updated in place and keeps its ID; otherwise a new slot is appended.
// created reports which of the two happened.
func UpsertTournamentMatch(doc *domain.Document, key domain.TournamentKey, fields domain.TournamentFields, now time.Time) (tm domain.TournamentMatch, created bool, err error) {
	key, err = NormalizeTournamentKey(key)
	if err != nil {
		return domain.TournamentMatch{}, false, err
	}
	fields = domain.TournamentFields{
		Player1ID: strings.TrimSpace(fields.Player1ID),
		Player2ID: strings.TrimSpace(fields.Player2ID),
		WinnerID:  strings.TrimSpace(fields.WinnerID),
		Score:     strings.TrimSpace(fields.Score),
		Date:      strings.TrimSpace(fields.Date),
	}

	idx := -1
	for i, t := range doc.TournamentMatches {
		if t.TournamentKey == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		doc.TournamentMatches = append(doc.TournamentMatches, domain.TournamentMatch{ID: domain.NewID(domain.PrefixTournament)})
		idx = len(doc.TournamentMatches) - 1
		created = true
	}

	slot := &doc.TournamentMatches[idx]
	slot.TournamentKey = key
	slot.TournamentFields = fields
	slot.UpdatedAt = now.UTC()
	return *slot, created, nil
}
