package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
)

// Bracket is one season's tournament draw.
type Bracket struct {
	Season  string                       `json:"season"`
	Matches []domain.TournamentMatchView `json:"matches"`
}

// TournamentInput is an admin bracket write. Every field must be present.
type TournamentInput struct {
	Season    *string `json:"season"`
	Round     *string `json:"round"`
	Slot      *int    `json:"slot"`
	Player1ID *string `json:"player1_id"`
	Player2ID *string `json:"player2_id"`
	WinnerID  *string `json:"winner_id"`
	Score     *string `json:"score"`
	Date      *string `json:"date"`
}

// UnmarshalJSON accepts slot as a number or a quoted integer such as "3".
func (in *TournamentInput) UnmarshalJSON(data []byte) error {
	type plain TournamentInput
	var v struct {
		plain
		Slot json.RawMessage `json:"slot"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	slot, err := parseSlot(v.Slot)
	if err != nil {
		return err
	}
	*in = TournamentInput(v.plain)
	in.Slot = slot
	return nil
}

func parseSlot(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, domain.ErrValidation("slot must be an integer")
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, domain.ErrValidation("slot must be an integer")
	}
	return &n, nil
}

func (in TournamentInput) split() (domain.TournamentKey, domain.TournamentFields, error) {
	required := []struct {
		name    string
		present bool
	}{
		{"season", in.Season != nil},
		{"round", in.Round != nil},
		{"slot", in.Slot != nil},
		{"player1_id", in.Player1ID != nil},
		{"player2_id", in.Player2ID != nil},
		{"winner_id", in.WinnerID != nil},
		{"score", in.Score != nil},
		{"date", in.Date != nil},
	}
	for _, f := range required {
		if !f.present {
			return domain.TournamentKey{}, domain.TournamentFields{}, domain.ErrValidation(fmt.Sprintf("%s is required", f.name))
		}
	}

	key := domain.TournamentKey{Season: *in.Season, Round: *in.Round, Slot: *in.Slot}
	fields := domain.TournamentFields{
		Player1ID: *in.Player1ID,
		Player2ID: *in.Player2ID,
		WinnerID:  *in.WinnerID,
		Score:     *in.Score,
		Date:      *in.Date,
	}
	return key, fields, nil
}

// Bracket lists a season's slots in round then slot order.
func (s *LeagueService) Bracket(ctx context.Context, season string) (*Bracket, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	season = s.seasonOrDefault(season)
	slots := make([]domain.TournamentMatch, 0)
	for _, t := range doc.TournamentMatches {
		if t.Season == season {
			slots = append(slots, t)
		}
	}
	league.SortBracket(slots)

	players := doc.PlayerIndex()
	views := make([]domain.TournamentMatchView, 0, len(slots))
	for _, t := range slots {
		views = append(views, league.EnrichTournamentMatch(t, players))
	}
	return &Bracket{Season: season, Matches: views}, nil
}

// UpsertTournamentMatch writes a bracket slot keyed by (season, round, slot).
// Repeating the same write leaves the document with the same single slot.
func (s *LeagueService) UpsertTournamentMatch(ctx context.Context, in TournamentInput) (domain.TournamentMatch, error) {
	key, fields, err := in.split()
	if err != nil {
		return domain.TournamentMatch{}, err
	}

	type upserted struct {
		slot    domain.TournamentMatch
		created bool
		event   domain.Event
	}
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (upserted, error) {
		tm, created, err := league.UpsertTournamentMatch(doc, key, fields, s.now())
		if err != nil {
			return upserted{}, err
		}
		evt := domain.NewEvent(domain.AggregateTournament, tm.ID, domain.EventTournamentMatchUpdated, tm)
		evt.Season = tm.Season
		return upserted{slot: tm, created: created, event: stamp(evt, doc.Revision)}, nil
	})
	if err != nil {
		return domain.TournamentMatch{}, err
	}

	s.logger.Info("bracket slot written",
		"tournament_match_id", out.slot.ID,
		"season", out.slot.Season,
		"round", out.slot.Round,
		"slot", out.slot.Slot,
		"created", out.created,
	)
	s.publish(ctx, out.event)
	return out.slot, nil
}

// DeleteTournamentMatch removes a bracket slot by id.
func (s *LeagueService) DeleteTournamentMatch(ctx context.Context, id string) error {
	evt, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (domain.Event, error) {
		var removed domain.TournamentMatch
		var n int
		doc.TournamentMatches, n = league.RemoveWhere(doc.TournamentMatches, func(t domain.TournamentMatch) bool {
			if t.ID == id {
				removed = t
				return true
			}
			return false
		})
		if n == 0 {
			return domain.Event{}, domain.ErrNotFound("tournament match", id)
		}
		evt := domain.NewEvent(domain.AggregateTournament, id, domain.EventTournamentMatchDeleted, removed)
		evt.Season = removed.Season
		return stamp(evt, doc.Revision), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("bracket slot deleted", "tournament_match_id", id)
	s.publish(ctx, evt)
	return nil
}
