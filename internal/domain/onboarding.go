package domain

import "time"

// TACRequest is a pending phone verification. Its lifecycle belongs to onboarding.
type TACRequest struct {
	ID             string     `json:"id"`
	DisplayName    string     `json:"display_name"`
	NTRP           string     `json:"ntrp"`
	CountryCode    string     `json:"country_code"`
	Phone          string     `json:"phone"`
	WhatsAppNumber string     `json:"whatsapp_number"`
	Code           string     `json:"code"`
	AcceptTAC      bool       `json:"accept_tac"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
}

// Usable reports whether the request can still be redeemed at now.
func (r TACRequest) Usable(now time.Time) bool {
	return !r.Verified && r.ExpiresAt.After(now)
}

// Session is handed to a player after verification or phone login.
type Session struct {
	Token          string `json:"token"`
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
}

// DeliveryReport describes the outcome of a TAC notification attempt.
type DeliveryReport struct {
	Provider  string      `json:"provider"`
	Delivered bool        `json:"delivered"`
	Detail    interface{} `json:"detail"`
}
