package service

import (
	"context"
	"strings"
	"time"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
)

// recentMatchLimit caps the match history shown on a profile.
const recentMatchLimit = 10

// Profile is a player's page: record, account and latest matches.
type Profile struct {
	Player        domain.Player      `json:"player"`
	Account       *domain.Account    `json:"account"`
	Stats         domain.PlayerStats `json:"stats"`
	RecentMatches []domain.MatchView `json:"recent_matches"`
}

// ProfileInput holds editable profile fields. Empty fields keep the stored value,
// except Group, which is re-derived from the NTRP rating when empty.
type ProfileInput struct {
	DisplayName string `json:"display_name"`
	NTRP        string `json:"ntrp"`
	Group       string `json:"group"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
}

// PlayerAccount pairs a player with its account after a write.
type PlayerAccount struct {
	Player  domain.Player  `json:"player"`
	Account domain.Account `json:"account"`
}

// GetProfile returns the profile of playerID.
func (s *LeagueService) GetProfile(ctx context.Context, playerID string) (*Profile, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, domain.ErrValidation("player_id is required")
	}

	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := doc.FindPlayer(playerID)
	if p == nil {
		return nil, domain.ErrNotFound("player", playerID)
	}

	var mine []domain.Match
	for _, m := range doc.Matches {
		if m.Involves(playerID) {
			mine = append(mine, m)
		}
	}
	league.SortMatchesNewestFirst(mine)
	if len(mine) > recentMatchLimit {
		mine = mine[:recentMatchLimit]
	}

	players := doc.PlayerIndex()
	recent := make([]domain.MatchView, 0, len(mine))
	for _, m := range mine {
		recent = append(recent, league.EnrichMatch(m, players))
	}

	profile := &Profile{
		Player:        *p,
		Stats:         league.PlayerStats(doc, playerID),
		RecentMatches: recent,
	}
	if acc := doc.FindAccountByPlayer(playerID); acc != nil {
		a := *acc
		profile.Account = &a
	}
	return profile, nil
}

// UpdateProfile edits a player's profile and creates or syncs the bound account.
func (s *LeagueService) UpdateProfile(ctx context.Context, playerID string, in ProfileInput) (*PlayerAccount, error) {
	email := strings.TrimSpace(in.Email)
	if err := domain.ValidateOptionalEmail(email); err != nil {
		return nil, err
	}

	var revision int64
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (PlayerAccount, error) {
		p := doc.FindPlayer(playerID)
		if p == nil {
			return PlayerAccount{}, domain.ErrNotFound("player", playerID)
		}

		now := s.now().UTC()
		p.DisplayName = firstNonEmpty(in.DisplayName, p.DisplayName)
		p.NTRP = firstNonEmpty(in.NTRP, p.NTRP)
		p.Group = firstNonEmpty(strings.ToUpper(in.Group), domain.GroupForNTRP(p.NTRP))
		p.Email = firstNonEmpty(email, p.Email)
		p.Bio = firstNonEmpty(in.Bio, p.Bio)
		p.UpdatedAt = &now

		acc := syncAccount(doc, *p, now, true)
		revision = doc.Revision
		return PlayerAccount{Player: *p, Account: acc}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "player_id", playerID)
	s.publish(ctx, stamp(domain.NewEvent(domain.AggregatePlayer, playerID, domain.EventPlayerUpdated, out.Player), revision))
	return &out, nil
}

// syncAccount creates the account for p or refreshes it. With contact set the email and
// bio are copied too; otherwise only the display name follows the player.
func syncAccount(doc *domain.Document, p domain.Player, now time.Time, contact bool) domain.Account {
	acc := doc.FindAccountByPlayer(p.ID)
	if acc == nil {
		doc.Accounts = append(doc.Accounts, domain.Account{
			ID:          domain.NewID(domain.PrefixAccount),
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Email:       p.Email,
			Bio:         p.Bio,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return doc.Accounts[len(doc.Accounts)-1]
	}

	acc.DisplayName = p.DisplayName
	if contact {
		acc.Email = p.Email
		acc.Bio = p.Bio
	}
	acc.UpdatedAt = now
	return *acc
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
