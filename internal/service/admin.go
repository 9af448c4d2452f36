package service

import (
	"context"
	"strings"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/league"
	"github.com/smashpoint/league/internal/ledger"
)

// defaultNTRP is assigned to players created without a rating.
const defaultNTRP = "3.0"

// Dashboard is the admin overview.
type Dashboard struct {
	Counts         domain.Counts `json:"counts"`
	Revision       int64         `json:"revision"`
	AdminTokenHint string        `json:"admin_token_hint"`
}

// AdminPlayerInput creates a player directly, bypassing onboarding.
type AdminPlayerInput struct {
	DisplayName string `json:"display_name"`
	NTRP        string `json:"ntrp"`
	Group       string `json:"group"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
}

// AdminPlayerPatch edits a player. Nil fields are left alone.
type AdminPlayerPatch struct {
	DisplayName *string `json:"display_name"`
	NTRP        *string `json:"ntrp"`
	Group       *string `json:"group"`
	CountryCode *string `json:"country_code"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Bio         *string `json:"bio"`
	Active      *bool   `json:"active"`
}

// Dashboard returns collection counts.
func (s *LeagueService) Dashboard(ctx context.Context) (*Dashboard, error) {
	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Counts:         doc.Counts(),
		Revision:       doc.Revision,
		AdminTokenHint: "Set ADMIN_TOKEN env in production.",
	}, nil
}

// CreatePlayer adds a verified, active player.
func (s *LeagueService) CreatePlayer(ctx context.Context, in AdminPlayerInput) (domain.Player, error) {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return domain.Player{}, domain.ErrValidation("display name is required")
	}
	email := strings.TrimSpace(in.Email)
	if err := domain.ValidateOptionalEmail(email); err != nil {
		return domain.Player{}, err
	}

	ntrp := firstNonEmpty(in.NTRP, defaultNTRP)
	countryCode := countryCodeOrDefault(in.CountryCode)
	phone := domain.Digits(in.Phone)

	p := domain.Player{
		ID:                    domain.NewID(domain.PrefixPlayer),
		DisplayName:           name,
		NTRP:                  ntrp,
		Group:                 strings.ToUpper(firstNonEmpty(in.Group, domain.GroupForNTRP(ntrp))),
		Phone:                 phone,
		CountryCode:           countryCode,
		WhatsAppNumber:        domain.WhatsAppNumber(countryCode, phone),
		Email:                 email,
		Bio:                   strings.TrimSpace(in.Bio),
		RegisteredViaWhatsApp: phone != "",
		TACVerified:           true,
		Active:                true,
		CreatedAt:             s.now().UTC(),
	}

	evt, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (domain.Event, error) {
		doc.Players = append(doc.Players, p)
		return stamp(domain.NewEvent(domain.AggregatePlayer, p.ID, domain.EventPlayerCreated, p), doc.Revision), nil
	})
	if err != nil {
		return domain.Player{}, err
	}

	s.logger.Info("player created", "player_id", p.ID, "group", p.Group)
	s.publish(ctx, evt)
	return p, nil
}

// UpdatePlayer applies an admin edit. Changing only the NTRP rating re-derives the group;
// the WhatsApp number always follows country code and phone.
func (s *LeagueService) UpdatePlayer(ctx context.Context, id string, patch AdminPlayerPatch) (domain.Player, error) {
	if patch.Email != nil {
		if err := domain.ValidateOptionalEmail(strings.TrimSpace(*patch.Email)); err != nil {
			return domain.Player{}, err
		}
	}

	type updated struct {
		player domain.Player
		event  domain.Event
	}
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (updated, error) {
		p := doc.FindPlayer(id)
		if p == nil {
			return updated{}, domain.ErrNotFound("player", id)
		}

		setTrimmed(&p.DisplayName, patch.DisplayName)
		setTrimmed(&p.NTRP, patch.NTRP)
		setTrimmed(&p.Group, patch.Group)
		setTrimmed(&p.CountryCode, patch.CountryCode)
		setTrimmed(&p.Email, patch.Email)
		setTrimmed(&p.Bio, patch.Bio)
		if patch.Phone != nil {
			p.Phone = domain.Digits(*patch.Phone)
		}
		if patch.Group != nil {
			p.Group = strings.ToUpper(p.Group)
		} else if patch.NTRP != nil {
			p.Group = domain.GroupForNTRP(p.NTRP)
		}
		if patch.Active != nil {
			p.Active = *patch.Active
		}

		p.WhatsAppNumber = domain.WhatsAppNumber(countryCodeOrDefault(p.CountryCode), p.Phone)
		now := s.now().UTC()
		p.UpdatedAt = &now

		if acc := doc.FindAccountByPlayer(p.ID); acc != nil {
			acc.DisplayName = p.DisplayName
			acc.UpdatedAt = now
		}

		return updated{
			player: *p,
			event:  stamp(domain.NewEvent(domain.AggregatePlayer, p.ID, domain.EventPlayerUpdated, *p), doc.Revision),
		}, nil
	})
	if err != nil {
		return domain.Player{}, err
	}

	s.logger.Info("player updated", "player_id", id)
	s.publish(ctx, out.event)
	return out.player, nil
}

// DeletePlayer removes a player with every match, bracket slot and account referencing it.
func (s *LeagueService) DeletePlayer(ctx context.Context, id string) (domain.CascadeResult, error) {
	type deleted struct {
		result domain.CascadeResult
		event  domain.Event
	}
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (deleted, error) {
		result, err := league.CascadeDeletePlayer(doc, id)
		if err != nil {
			return deleted{}, err
		}
		return deleted{result: result, event: stamp(domain.NewPlayerDeletedEvent(id, result), doc.Revision)}, nil
	})
	if err != nil {
		return domain.CascadeResult{}, err
	}

	s.logger.Info("player deleted",
		"player_id", id,
		"matches_removed", out.result.MatchesRemoved,
		"tournament_matches_removed", out.result.TournamentMatchesRemoved,
		"accounts_removed", out.result.AccountsRemoved,
	)
	s.publish(ctx, out.event)
	return out.result, nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
