package league

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/smashpoint/league/internal/domain"
)

var setPattern = regexp.MustCompile(`^\s*(\d+)\s*[:\-]\s*(\d+)\s*$`)

// ParseSets splits a score such as "6-4,3-6,7-5" into sets.
// Segments that do not look like "games-games" (or "games:games") are dropped, not rejected.
func ParseSets(score string) []domain.Set {
	sets := []domain.Set{}
	for _, part := range strings.Split(score, ",") {
		m := setPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA != nil || errB != nil {
			// digits too long for int
			continue
		}
		sets = append(sets, domain.Set{GamesA: a, GamesB: b})
	}
	return sets
}

// SetWins counts the sets each side took. A set with equal games goes to neither side.
func SetWins(sets []domain.Set) (winsA, winsB int) {
	for _, s := range sets {
		switch {
		case s.GamesA > s.GamesB:
			winsA++
		case s.GamesB > s.GamesA:
			winsB++
		}
	}
	return winsA, winsB
}

// ResolveWinner derives the winner from the score. ok is false when the set count is level,
// which includes a score with no parseable sets.
func ResolveWinner(playerAID, playerBID, score string) (winnerID string, ok bool) {
	winsA, winsB := SetWins(ParseSets(score))
	switch {
	case winsA > winsB:
		return playerAID, true
	case winsB > winsA:
		return playerBID, true
	}
	return "", false
}
