package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all ledger event types.
type EventType string

const (
	EventMatchRecorded          EventType = "league.match.recorded"
	EventMatchUpdated           EventType = "league.match.updated"
	EventMatchDeleted           EventType = "league.match.deleted"
	EventPlayerCreated          EventType = "league.player.created"
	EventPlayerUpdated          EventType = "league.player.updated"
	EventPlayerDeleted          EventType = "league.player.deleted"
	EventPlayerVerified         EventType = "league.player.verified"
	EventTournamentMatchUpdated EventType = "league.tournament.match.upserted"
	EventTournamentMatchDeleted EventType = "league.tournament.match.deleted"
	EventNewsPublished          EventType = "league.news.published"
	EventCommunityPosted        EventType = "league.community.posted"
)

// AggregateType enumerates the aggregate root types for ledger events.
type AggregateType string

const (
	AggregatePlayer     AggregateType = "player"
	AggregateMatch      AggregateType = "match"
	AggregateTournament AggregateType = "tournament"
	AggregateContent    AggregateType = "content"
)

// Event is emitted after a mutation has been persisted.
type Event struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Season        string          `json:"season,omitempty"`
	Revision      int64           `json:"revision"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEvent builds an event with a JSON-encoded payload.
func NewEvent(aggregate AggregateType, aggregateID string, eventType EventType, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	return Event{
		EventID:       uuid.New(),
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       raw,
		OccurredAt:    time.Now(),
	}
}

// NewMatchEvent creates a match lifecycle event scoped to the match's season.
func NewMatchEvent(eventType EventType, m Match) Event {
	e := NewEvent(AggregateMatch, m.ID, eventType, m)
	e.Season = m.Season
	return e
}

// NewPlayerDeletedEvent records a cascade delete with what it removed.
func NewPlayerDeletedEvent(playerID string, result CascadeResult) Event {
	return NewEvent(AggregatePlayer, playerID, EventPlayerDeleted, result)
}

// CascadeResult reports how many records a player delete removed.
type CascadeResult struct {
	PlayerID                 string `json:"player_id"`
	MatchesRemoved           int    `json:"matches_removed"`
	TournamentMatchesRemoved int    `json:"tournament_matches_removed"`
	AccountsRemoved          int    `json:"accounts_removed"`
}

// AffectsStandings reports whether subscribers should refresh the season table.
func (e Event) AffectsStandings() bool {
	switch e.EventType {
	case EventMatchRecorded, EventMatchUpdated, EventMatchDeleted,
		EventPlayerCreated, EventPlayerUpdated, EventPlayerDeleted, EventPlayerVerified:
		return true
	}
	return false
}
