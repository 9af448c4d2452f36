package league

import (
	"sort"

	"github.com/smashpoint/league/internal/domain"
)

func nameOr(players map[string]domain.Player, id, fallback string) string {
	if p, ok := players[id]; ok && p.DisplayName != "" {
		return p.DisplayName
	}
	return fallback
}

// EnrichMatch attaches display names. Unknown players read "Unknown", an unknown winner "TBD".
func EnrichMatch(m domain.Match, players map[string]domain.Player) domain.MatchView {
	return domain.MatchView{
		Match:       m,
		PlayerAName: nameOr(players, m.PlayerAID, "Unknown"),
		PlayerBName: nameOr(players, m.PlayerBID, "Unknown"),
		WinnerName:  nameOr(players, m.WinnerID, "TBD"),
		LoserName:   nameOr(players, m.LoserID(), "TBD"),
	}
}

// EnrichTournamentMatch attaches display names to a bracket slot.
func EnrichTournamentMatch(t domain.TournamentMatch, players map[string]domain.Player) domain.TournamentMatchView {
	return domain.TournamentMatchView{
		TournamentMatch: t,
		Player1Name:     nameOr(players, t.Player1ID, "---"),
		Player2Name:     nameOr(players, t.Player2ID, "---"),
		WinnerName:      nameOr(players, t.WinnerID, "TBD"),
	}
}

// SortMatchesNewestFirst orders by (date, created_at) descending.
func SortMatchesNewestFirst(matches []domain.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date > matches[j].Date
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
}

// SortBracket orders slots by round then slot number.
func SortBracket(slots []domain.TournamentMatch) {
	sort.SliceStable(slots, func(i, j int) bool {
		ri, rj := domain.RoundOrder(slots[i].Round), domain.RoundOrder(slots[j].Round)
		if ri != rj {
			return ri < rj
		}
		return slots[i].Slot < slots[j].Slot
	})
}
