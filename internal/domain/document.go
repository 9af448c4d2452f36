package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Document is the whole persisted league state. Every write replaces it as a unit.
type Document struct {
	Revision          int64             `json:"revision"`
	Players           []Player          `json:"players"`
	Matches           []Match           `json:"matches"`
	TournamentMatches []TournamentMatch `json:"tournament_matches"`
	News              []NewsItem        `json:"news"`
	CommunityPosts    []CommunityPost   `json:"community_posts"`
	Accounts          []Account         `json:"accounts"`
	TACRequests       []TACRequest      `json:"tac_requests"`
}

// NewDocument returns an empty document with every collection initialised.
func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so they encode as [] rather than null.
func (d *Document) Normalize() {
	if d.Players == nil {
		d.Players = []Player{}
	}
	if d.Matches == nil {
		d.Matches = []Match{}
	}
	if d.TournamentMatches == nil {
		d.TournamentMatches = []TournamentMatch{}
	}
	if d.News == nil {
		d.News = []NewsItem{}
	}
	if d.CommunityPosts == nil {
		d.CommunityPosts = []CommunityPost{}
	}
	if d.Accounts == nil {
		d.Accounts = []Account{}
	}
	if d.TACRequests == nil {
		d.TACRequests = []TACRequest{}
	}
}

// PlayerIndex maps player id to player.
func (d *Document) PlayerIndex() map[string]Player {
	idx := make(map[string]Player, len(d.Players))
	for _, p := range d.Players {
		idx[p.ID] = p
	}
	return idx
}

// FindPlayer returns a pointer into the document, or nil.
func (d *Document) FindPlayer(id string) *Player {
	for i := range d.Players {
		if d.Players[i].ID == id {
			return &d.Players[i]
		}
	}
	return nil
}

// FindMatch returns a pointer into the document, or nil.
func (d *Document) FindMatch(id string) *Match {
	for i := range d.Matches {
		if d.Matches[i].ID == id {
			return &d.Matches[i]
		}
	}
	return nil
}

// FindAccountByPlayer returns the account bound to playerID, or nil.
func (d *Document) FindAccountByPlayer(playerID string) *Account {
	for i := range d.Accounts {
		if d.Accounts[i].PlayerID == playerID {
			return &d.Accounts[i]
		}
	}
	return nil
}

// Counts summarises collection sizes for the admin dashboard.
type Counts struct {
	Players        int `json:"players"`
	Matches        int `json:"matches"`
	News           int `json:"news"`
	CommunityPosts int `json:"community_posts"`
}

// Counts returns the dashboard counters.
func (d *Document) Counts() Counts {
	return Counts{
		Players:        len(d.Players),
		Matches:        len(d.Matches),
		News:           len(d.News),
		CommunityPosts: len(d.CommunityPosts),
	}
}

// IsEmpty reports whether the document has never been written: revision zero and
// no records in any collection.
func (d *Document) IsEmpty() bool {
	return d.Revision == 0 &&
		len(d.Players) == 0 &&
		len(d.Matches) == 0 &&
		len(d.TournamentMatches) == 0 &&
		len(d.News) == 0 &&
		len(d.CommunityPosts) == 0 &&
		len(d.Accounts) == 0 &&
		len(d.TACRequests) == 0
}

// ID prefixes per collection.
const (
	PrefixPlayer     = "p"
	PrefixMatch      = "m"
	PrefixTournament = "t"
	PrefixNews       = "n"
	PrefixCommunity  = "c"
	PrefixAccount    = "a"
	PrefixTAC        = "tac"
)

// NewID returns prefix_ followed by 10 random hex characters.
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:10]
}
