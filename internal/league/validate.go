package league

import (
	"strings"
	"time"

	"github.com/smashpoint/league/internal/domain"
)

// MatchInput is a match submission as it arrives from a caller. Every field is optional
// at this point; ValidateMatch applies defaults and enforces the invariants.
//
// Defaults: Season falls back to the validator's default season, Date to today's local
// date (YYYY-MM-DD), Stage to REGULAR, CreatedBy to "admin" or "player".
type MatchInput struct {
	Season    string `json:"season"`
	Stage     string `json:"stage"`
	Date      string `json:"date"`
	PlayerAID string `json:"player_a_id"`
	PlayerBID string `json:"player_b_id"`
	WinnerID  string `json:"winner_id"`
	Score     string `json:"score"`
	CreatedBy string `json:"created_by"`
}

// MatchPatch is a partial update. Nil fields keep the stored value; a field set to ""
// clears it, which for WinnerID means the winner is derived from the score again.
type MatchPatch struct {
	Season    *string `json:"season"`
	Stage     *string `json:"stage"`
	Date      *string `json:"date"`
	PlayerAID *string `json:"player_a_id"`
	PlayerBID *string `json:"player_b_id"`
	WinnerID  *string `json:"winner_id"`
	Score     *string `json:"score"`
	CreatedBy *string `json:"created_by"`
}

// Apply overlays the patch on an existing match.
func (p MatchPatch) Apply(m domain.Match) MatchInput {
	in := MatchInput{
		Season:    m.Season,
		Stage:     m.Stage,
		Date:      m.Date,
		PlayerAID: m.PlayerAID,
		PlayerBID: m.PlayerBID,
		WinnerID:  m.WinnerID,
		Score:     m.Score,
		CreatedBy: m.CreatedBy,
	}
	overlay(&in.Season, p.Season)
	overlay(&in.Stage, p.Stage)
	overlay(&in.Date, p.Date)
	overlay(&in.PlayerAID, p.PlayerAID)
	overlay(&in.PlayerBID, p.PlayerBID)
	overlay(&in.WinnerID, p.WinnerID)
	overlay(&in.Score, p.Score)
	overlay(&in.CreatedBy, p.CreatedBy)
	return in
}

func overlay(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Validator turns match submissions into ledger records.
type Validator struct {
	DefaultSeason string
	Now           func() time.Time
}

// NewValidator creates a validator that stamps missing dates with the local clock.
func NewValidator(defaultSeason string) *Validator {
	return &Validator{DefaultSeason: defaultSeason, Now: time.Now}
}

// ValidateMatch normalizes a submission against the known players. It has no side effects;
// the returned match still needs an ID and creation time from the caller.
func (v *Validator) ValidateMatch(in MatchInput, players map[string]domain.Player, isAdmin bool) (domain.Match, error) {
	season := strings.TrimSpace(in.Season)
	if season == "" {
		season = v.DefaultSeason
	}
	stage := strings.ToUpper(strings.TrimSpace(in.Stage))
	if stage == "" {
		stage = domain.StageRegular
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = v.Now().Format("2006-01-02")
	}
	playerA := strings.TrimSpace(in.PlayerAID)
	playerB := strings.TrimSpace(in.PlayerBID)
	winner := strings.TrimSpace(in.WinnerID)
	score := strings.TrimSpace(in.Score)

	if playerA == "" || playerB == "" {
		return domain.Match{}, domain.ErrValidation("players required")
	}
	if playerA == playerB {
		return domain.Match{}, domain.ErrValidation("players must differ")
	}
	if _, ok := players[playerA]; !ok {
		return domain.Match{}, domain.ErrValidation("invalid player id")
	}
	if _, ok := players[playerB]; !ok {
		return domain.Match{}, domain.ErrValidation("invalid player id")
	}

	if winner == "" {
		winner, _ = ResolveWinner(playerA, playerB, score)
	}
	if winner != playerA && winner != playerB {
		return domain.Match{}, domain.ErrValidation("invalid winner")
	}

	if score == "" {
		return domain.Match{}, domain.ErrValidation("score required")
	}

	createdBy := strings.TrimSpace(in.CreatedBy)
	if createdBy == "" {
		createdBy = domain.CreatedByPlayer
		if isAdmin {
			createdBy = domain.CreatedByAdmin
		}
	}

	return domain.Match{
		Season:    season,
		Stage:     stage,
		Date:      date,
		PlayerAID: playerA,
		PlayerBID: playerB,
		WinnerID:  winner,
		Score:     score,
		Status:    domain.StatusCompleted,
		CreatedBy: createdBy,
	}, nil
}
