package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const (
	claimsKey  contextKey = "auth_claims"
	subjectKey contextKey = "auth_subject"
	adminKey   contextKey = "auth_admin"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "x-admin-token"

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// SubjectFromContext extracts the subject ID string from request context.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey).(string)
	return sub
}

// IsAdmin reports whether the request presented a valid admin token.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminKey).(bool)
	return ok
}

// AdminTokenMatches compares the presented token with the configured one in constant time.
func AdminTokenMatches(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// AuthenticatePlayer returns middleware that validates player JWT tokens.
func AuthenticatePlayer(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, RealmPlayer)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticatePlayerOrAdmin accepts either a valid admin token or a player JWT.
func AuthenticatePlayerOrAdmin(jwtMgr *JWTManager, adminToken string) func(http.Handler) http.Handler {
	player := AuthenticatePlayer(jwtMgr)
	return func(next http.Handler) http.Handler {
		asPlayer := player(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AdminTokenMatches(r.Header.Get(AdminTokenHeader), adminToken) {
				ctx := context.WithValue(r.Context(), adminKey, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			asPlayer.ServeHTTP(w, r)
		})
	}
}

// RequireAdminToken returns middleware that checks the x-admin-token header.
func RequireAdminToken(adminToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !AdminTokenMatches(r.Header.Get(AdminTokenHeader), adminToken) {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin token is invalid")
				return
			}
			ctx := context.WithValue(r.Context(), adminKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fmt.Errorf("invalid Authorization format")
	}

	return jwtMgr.ValidateTokenForRealm(parts[1], realm)
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
