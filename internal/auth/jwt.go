package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Realm identifies the JWT authentication realm.
type Realm string

const (
	RealmPlayer Realm = "player"
)

const issuer = "league"

// Claims holds the custom JWT claims of a player session.
type Claims struct {
	jwt.RegisteredClaims
	Realm          Realm  `json:"realm"`
	WhatsAppNumber string `json:"wa,omitempty"`
}

// JWTManager issues and validates player session tokens.
type JWTManager struct {
	secret       []byte
	playerExpiry time.Duration
	now          func() time.Time
}

// NewJWTManager creates a JWT manager.
func NewJWTManager(secret string, playerExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:       []byte(secret),
		playerExpiry: playerExpiry,
		now:          time.Now,
	}
}

// GeneratePlayerToken creates a signed session token for the player.
func (m *JWTManager) GeneratePlayerToken(playerID, whatsappNumber string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.playerExpiry)),
			ID:        uuid.New().String(),
		},
		Realm:          RealmPlayer,
		WhatsAppNumber: whatsappNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT, returning claims if valid.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// ValidateTokenForRealm validates a token and ensures it belongs to the expected realm.
func (m *JWTManager) ValidateTokenForRealm(tokenString string, expectedRealm Realm) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Realm != expectedRealm {
		return nil, fmt.Errorf("expected realm %s, got %s", expectedRealm, claims.Realm)
	}
	return claims, nil
}
