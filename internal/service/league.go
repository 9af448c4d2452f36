package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/guard"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
)

// EventPublisher receives events for mutations that have been persisted.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}

// LeagueService implements the league operations on top of the mutation gate.
// Reads work on a snapshot; every write is a single gate mutation.
type LeagueService struct {
	gate          *ledger.Gate
	validator     *league.Validator
	events        EventPublisher
	idempotency   *guard.IdempotencyGuard
	logger        *slog.Logger
	defaultSeason string
	now           func() time.Time
}

// NewLeagueService creates a LeagueService. events and idempotency may be nil.
func NewLeagueService(
	gate *ledger.Gate,
	validator *league.Validator,
	events EventPublisher,
	idempotency *guard.IdempotencyGuard,
	logger *slog.Logger,
) *LeagueService {
	return &LeagueService{
		gate:          gate,
		validator:     validator,
		events:        events,
		idempotency:   idempotency,
		logger:        logger,
		defaultSeason: validator.DefaultSeason,
		now:           time.Now,
	}
}

// DefaultSeason is the season used when a request names none.
func (s *LeagueService) DefaultSeason() string {
	return s.defaultSeason
}

func (s *LeagueService) publish(ctx context.Context, events ...domain.Event) {
	if s.events == nil || len(events) == 0 {
		return
	}
	s.events.Publish(ctx, events...)
}

func (s *LeagueService) seasonOrDefault(season string) string {
	if season = strings.TrimSpace(season); season != "" {
		return season
	}
	return s.defaultSeason
}

func stamp(evt domain.Event, revision int64) domain.Event {
	evt.Revision = revision
	return evt
}

// --- Players ---

// PlayerDetail is a player with lifetime stats.
type PlayerDetail struct {
	Player domain.Player      `json:"player"`
	Stats  domain.PlayerStats `json:"stats"`
}

// ListPlayers returns active players, optionally filtered by group and a case-insensitive
// name search, ordered by name.
func (s *LeagueService) ListPlayers(ctx context.Context, group, search string) ([]domain.Player, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	group = strings.ToUpper(strings.TrimSpace(group))
	search = strings.ToLower(strings.TrimSpace(search))

	players := make([]domain.Player, 0, len(doc.Players))
	for _, p := range doc.Players {
		if !p.Active {
			continue
		}
		if group != "" && group != domain.GroupAll && p.Group != group {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.DisplayName), search) {
			continue
		}
		players = append(players, p)
	}
	sort.SliceStable(players, func(i, j int) bool {
		return strings.ToLower(players[i].DisplayName) < strings.ToLower(players[j].DisplayName)
	})
	return players, nil
}

// GetPlayer returns a player (active or not) with stats.
func (s *LeagueService) GetPlayer(ctx context.Context, id string) (*PlayerDetail, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := doc.FindPlayer(id)
	if p == nil {
		return nil, domain.ErrNotFound("player", id)
	}
	return &PlayerDetail{Player: *p, Stats: league.PlayerStats(doc, id)}, nil
}

// PlayerByPhone finds the player registered with the given country code and local number.
func (s *LeagueService) PlayerByPhone(ctx context.Context, countryCode, phone string) (*domain.Player, error) {
	phone = domain.Digits(phone)
	if phone == "" {
		return nil, domain.ErrValidation("phone query is required")
	}
	countryCode = countryCodeOrDefault(countryCode)

	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := findByPhone(doc, countryCode, phone)
	if p == nil {
		return nil, domain.ErrNotFound("player", countryCode+phone)
	}
	return p, nil
}

func countryCodeOrDefault(cc string) string {
	if cc = strings.TrimSpace(cc); cc != "" {
		return cc
	}
	return domain.DefaultCountryCode
}

func findByPhone(doc *domain.Document, countryCode, phone string) *domain.Player {
	for i := range doc.Players {
		if doc.Players[i].CountryCode == countryCode && doc.Players[i].Phone == phone {
			return &doc.Players[i]
		}
	}
	return nil
}

// --- Matches ---

// ListMatches returns a season's matches, newest first, with display names.
// An empty stage lists every stage.
func (s *LeagueService) ListMatches(ctx context.Context, season, stage string) ([]domain.MatchView, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	season = s.seasonOrDefault(season)
	stage = strings.ToUpper(strings.TrimSpace(stage))

	matches := make([]domain.Match, 0)
	for _, m := range doc.Matches {
		if m.Season != season {
			continue
		}
		if stage != "" && m.Stage != stage {
			continue
		}
		matches = append(matches, m)
	}
	league.SortMatchesNewestFirst(matches)

	players := doc.PlayerIndex()
	views := make([]domain.MatchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, league.EnrichMatch(m, players))
	}
	return views, nil
}

// RecordMatch stores a player-submitted result. A non-empty idempotencyKey makes retries
// of the same submission return the match recorded the first time.
func (s *LeagueService) RecordMatch(ctx context.Context, in league.MatchInput, idempotencyKey string) (domain.MatchView, error) {
	if s.idempotency == nil || idempotencyKey == "" {
		return s.createMatch(ctx, in, false)
	}

	if res := s.idempotency.Check(ctx, idempotencyKey); !res.Allowed {
		id, done := s.idempotency.Result(idempotencyKey)
		if !done {
			return domain.MatchView{}, domain.ErrConflict("a request with this idempotency key is still in progress")
		}
		s.logger.Info("idempotent match replay", "idempotency_key", idempotencyKey, "match_id", id)
		return s.matchView(ctx, id)
	}

	view, err := s.createMatch(ctx, in, false)
	if err != nil {
		s.idempotency.Remove(idempotencyKey)
		return domain.MatchView{}, err
	}
	s.idempotency.Complete(idempotencyKey, view.ID)
	return view, nil
}

// CreateMatch stores an admin-submitted result.
func (s *LeagueService) CreateMatch(ctx context.Context, in league.MatchInput) (domain.MatchView, error) {
	return s.createMatch(ctx, in, true)
}

type matchChange struct {
	view  domain.MatchView
	event domain.Event
}

func (s *LeagueService) createMatch(ctx context.Context, in league.MatchInput, isAdmin bool) (domain.MatchView, error) {
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (matchChange, error) {
		players := doc.PlayerIndex()
		m, err := s.validator.ValidateMatch(in, players, isAdmin)
		if err != nil {
			return matchChange{}, err
		}
		m.ID = domain.NewID(domain.PrefixMatch)
		m.CreatedAt = s.now().UTC()
		doc.Matches = append(doc.Matches, m)
		return matchChange{
			view:  league.EnrichMatch(m, players),
			event: stamp(domain.NewMatchEvent(domain.EventMatchRecorded, m), doc.Revision),
		}, nil
	})
	if err != nil {
		return domain.MatchView{}, err
	}

	s.logger.Info("match recorded",
		"match_id", out.view.ID,
		"season", out.view.Season,
		"created_by", out.view.CreatedBy,
		"revision", out.event.Revision,
	)
	s.publish(ctx, out.event)
	return out.view, nil
}

func (s *LeagueService) matchView(ctx context.Context, id string) (domain.MatchView, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return domain.MatchView{}, err
	}
	m := doc.FindMatch(id)
	if m == nil {
		return domain.MatchView{}, domain.ErrNotFound("match", id)
	}
	return league.EnrichMatch(*m, doc.PlayerIndex()), nil
}

// UpdateMatch merges patch over the stored match and validates the result as an admin submission.
func (s *LeagueService) UpdateMatch(ctx context.Context, id string, patch league.MatchPatch) (domain.MatchView, error) {
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (matchChange, error) {
		target := doc.FindMatch(id)
		if target == nil {
			return matchChange{}, domain.ErrNotFound("match", id)
		}

		players := doc.PlayerIndex()
		validated, err := s.validator.ValidateMatch(patch.Apply(*target), players, true)
		if err != nil {
			return matchChange{}, err
		}

		now := s.now().UTC()
		validated.ID = target.ID
		validated.CreatedAt = target.CreatedAt
		validated.UpdatedAt = &now
		*target = validated

		return matchChange{
			view:  league.EnrichMatch(validated, players),
			event: stamp(domain.NewMatchEvent(domain.EventMatchUpdated, validated), doc.Revision),
		}, nil
	})
	if err != nil {
		return domain.MatchView{}, err
	}

	s.logger.Info("match updated", "match_id", id, "revision", out.event.Revision)
	s.publish(ctx, out.event)
	return out.view, nil
}

// DeleteMatch removes a match.
func (s *LeagueService) DeleteMatch(ctx context.Context, id string) error {
	evt, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (domain.Event, error) {
		target := doc.FindMatch(id)
		if target == nil {
			return domain.Event{}, domain.ErrNotFound("match", id)
		}
		removed := *target
		doc.Matches, _ = league.RemoveWhere(doc.Matches, func(m domain.Match) bool { return m.ID == id })
		return stamp(domain.NewMatchEvent(domain.EventMatchDeleted, removed), doc.Revision), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("match deleted", "match_id", id, "revision", evt.Revision)
	s.publish(ctx, evt)
	return nil
}

// --- Standings ---

// StandingsTable is the ranked table for one season and group.
type StandingsTable struct {
	Season string                `json:"season"`
	Group  string                `json:"group"`
	Rows   []domain.StandingsRow `json:"rows"`
}

// Standings computes the table on demand. Season defaults to the configured season,
// group to ALL.
func (s *LeagueService) Standings(ctx context.Context, season, group string) (*StandingsTable, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	season = s.seasonOrDefault(season)
	group = strings.ToUpper(strings.TrimSpace(group))
	if group == "" {
		group = domain.GroupAll
	}

	return &StandingsTable{
		Season: season,
		Group:  group,
		Rows:   league.ComputeStandings(doc, season, group),
	}, nil
}
