package league

import (
	"sort"
	"strings"

	"github.com/smashpoint/league/internal/domain"
)

// Points awarded per regular-season result.
const (
	PointsWin  = 3
	PointsLoss = 1
)

// ComputeStandings folds the season's completed regular-season matches into a ranked table.
// An empty group or "ALL" includes every active player. An empty season counts every season.
// The result depends only on its inputs; nothing is cached.
func ComputeStandings(doc *domain.Document, season, group string) []domain.StandingsRow {
	filterGroup := group != "" && group != domain.GroupAll

	rows := make([]*domain.StandingsRow, 0, len(doc.Players))
	table := make(map[string]*domain.StandingsRow, len(doc.Players))
	for _, p := range doc.Players {
		if !p.Active {
			continue
		}
		if filterGroup && p.Group != group {
			continue
		}
		row := &domain.StandingsRow{
			PlayerID: p.ID,
			Name:     displayName(p),
			Group:    p.Group,
			NTRP:     p.NTRP,
			Paid:     p.TACVerified,
		}
		if row.Group == "" {
			row.Group = domain.GroupD5
		}
		if row.NTRP == "" {
			row.NTRP = "-"
		}
		rows = append(rows, row)
		table[p.ID] = row
	}

	for _, m := range doc.Matches {
		if m.Stage != domain.StageRegular || m.Status != domain.StatusCompleted {
			continue
		}
		if season != "" && m.Season != season {
			continue
		}
		a, okA := table[m.PlayerAID]
		b, okB := table[m.PlayerBID]
		if !okA || !okB {
			continue
		}

		a.Played++
		b.Played++

		switch m.WinnerID {
		case m.PlayerAID:
			credit(a, b)
		case m.PlayerBID:
			credit(b, a)
		}

		for _, s := range ParseSets(m.Score) {
			a.SetsWon += s.GamesA
			a.SetsLost += s.GamesB
			b.SetsWon += s.GamesB
			b.SetsLost += s.GamesA
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return ranksAhead(rows[i], rows[j])
	})

	out := make([]domain.StandingsRow, len(rows))
	for i, r := range rows {
		r.Rank = i + 1
		out[i] = *r
	}
	return out
}

func credit(winner, loser *domain.StandingsRow) {
	winner.Won++
	winner.Points += PointsWin
	loser.Lost++
	loser.Points += PointsLoss
}

// ranksAhead orders by points, set difference and wins (all descending),
// then by case-insensitive name ascending.
func ranksAhead(a, b *domain.StandingsRow) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.SetDifference() != b.SetDifference() {
		return a.SetDifference() > b.SetDifference()
	}
	if a.Won != b.Won {
		return a.Won > b.Won
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

func displayName(p domain.Player) string {
	if p.DisplayName == "" {
		return "Unknown"
	}
	return p.DisplayName
}

// PlayerStats counts a player's completed matches across all seasons and stages.
func PlayerStats(doc *domain.Document, playerID string) domain.PlayerStats {
	var stats domain.PlayerStats
	for _, m := range doc.Matches {
		if m.Status != domain.StatusCompleted || !m.Involves(playerID) {
			continue
		}
		stats.Played++
		if m.WinnerID == playerID {
			stats.Won++
		}
	}
	stats.Lost = stats.Played - stats.Won
	return stats
}
