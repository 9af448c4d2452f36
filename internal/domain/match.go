package domain

import "time"

const (
	// StageRegular marks a regular-season match; only these count towards standings.
	StageRegular = "REGULAR"

	// StatusCompleted is the only status a recorded match ever carries.
	StatusCompleted = "completed"

	CreatedByAdmin  = "admin"
	CreatedByPlayer = "player"
)

// Match is a recorded head-to-head result.
type Match struct {
	ID        string     `json:"id"`
	Season    string     `json:"season"`
	Stage     string     `json:"stage"`
	Date      string     `json:"date"`
	PlayerAID string     `json:"player_a_id"`
	PlayerBID string     `json:"player_b_id"`
	WinnerID  string     `json:"winner_id"`
	Score     string     `json:"score"`
	Status    string     `json:"status"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Involves reports whether the player took part in the match.
func (m Match) Involves(playerID string) bool {
	return m.PlayerAID == playerID || m.PlayerBID == playerID
}

// LoserID returns the player who did not win, or "" if the winner is not one of the two players.
func (m Match) LoserID() string {
	switch m.WinnerID {
	case m.PlayerAID:
		return m.PlayerBID
	case m.PlayerBID:
		return m.PlayerAID
	}
	return ""
}

// Set is one games(A)-games(B) component of a score.
type Set struct {
	GamesA int `json:"games_a"`
	GamesB int `json:"games_b"`
}

// MatchView is a match hydrated with display names for API responses.
type MatchView struct {
	Match
	PlayerAName string `json:"player_a_name"`
	PlayerBName string `json:"player_b_name"`
	WinnerName  string `json:"winner_name"`
	LoserName   string `json:"loser_name"`
}

// StandingsRow is one line of the derived season table. It is never stored.
type StandingsRow struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	NTRP     string `json:"ntrp"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
	SetsWon  int    `json:"sets_won"`
	SetsLost int    `json:"sets_lost"`
	Points   int    `json:"points"`
	Paid     bool   `json:"paid"`
	Rank     int    `json:"rank"`
}

// SetDifference is sets_won minus sets_lost.
func (r StandingsRow) SetDifference() int {
	return r.SetsWon - r.SetsLost
}
