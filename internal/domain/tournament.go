package domain

import "time"

// Tournament rounds in bracket order.
const (
	RoundR32 = "R32"
	RoundR16 = "R16"
	RoundQF  = "QF"
	RoundSF  = "SF"
	RoundF   = "F"
)

var roundOrder = map[string]int{
	RoundR32: 1,
	RoundR16: 2,
	RoundQF:  3,
	RoundSF:  4,
	RoundF:   5,
}

// RoundOrder returns the position of a round in the bracket; unknown rounds sort last.
func RoundOrder(round string) int {
	if n, ok := roundOrder[round]; ok {
		return n
	}
	return 99
}

// IsValidRound reports whether round is one of the fixed bracket rounds.
func IsValidRound(round string) bool {
	_, ok := roundOrder[round]
	return ok
}

// TournamentKey identifies a bracket slot. At most one TournamentMatch exists per key.
type TournamentKey struct {
	Season string `json:"season"`
	Round  string `json:"round"`
	Slot   int    `json:"slot"`
}

// TournamentFields are the mutable fields of a bracket slot.
type TournamentFields struct {
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
	WinnerID  string `json:"winner_id"`
	Score     string `json:"score"`
	Date      string `json:"date"`
}

// TournamentMatch is one slot of the season bracket.
type TournamentMatch struct {
	ID string `json:"id"`
	TournamentKey
	TournamentFields
	UpdatedAt time.Time `json:"updated_at"`
}

// Involves reports whether the player is seeded into the slot.
func (t TournamentMatch) Involves(playerID string) bool {
	return t.Player1ID == playerID || t.Player2ID == playerID
}

// TournamentMatchView is a bracket slot hydrated with display names.
type TournamentMatchView struct {
	TournamentMatch
	Player1Name string `json:"player1_name"`
	Player2Name string `json:"player2_name"`
	WinnerName  string `json:"winner_name"`
}
