package domain

import (
	"encoding/json"
	"time"
)

// Player is a league member. Players are deactivated rather than removed,
// except through the admin cascade delete.
type Player struct {
	ID                    string     `json:"id"`
	DisplayName           string     `json:"display_name"`
	NTRP                  string     `json:"ntrp"`
	Group                 string     `json:"group"`
	Phone                 string     `json:"phone"`
	CountryCode           string     `json:"country_code"`
	WhatsAppNumber        string     `json:"whatsapp_number"`
	Email                 string     `json:"email"`
	Bio                   string     `json:"bio"`
	RegisteredViaWhatsApp bool       `json:"registered_via_whatsapp"`
	TACVerified           bool       `json:"tac_verified"`
	Active                bool       `json:"active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// UnmarshalJSON treats a record without an active key as active, as older
// documents never wrote one.
func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	v := plain{Active: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Player(v)
	return nil
}

// Account is the profile record bound to a player.
type Account struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlayerStats summarises a player's completed matches across all seasons and stages.
type PlayerStats struct {
	Played int `json:"played"`
	Won    int `json:"won"`
	Lost   int `json:"lost"`
}

// Skill groups, strongest first.
const (
	GroupD1  = "D1"
	GroupD2  = "D2"
	GroupD3  = "D3"
	GroupD4  = "D4"
	GroupD5  = "D5"
	GroupAll = "ALL"
)

// DefaultCountryCode is assumed when a phone number comes without one.
const DefaultCountryCode = "+60"
