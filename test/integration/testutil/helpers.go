//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/smashpoint/league/internal/auth"
)

func (env *TestEnv) do(method, path string, body interface{}, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func adminHeaders() map[string]string {
	return map[string]string{auth.AdminTokenHeader: TestAdminToken}
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, nil)
}

// POST performs an unauthenticated POST request.
func (env *TestEnv) POST(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, nil)
}

// POSTWithKey performs a POST carrying an Idempotency-Key header.
func (env *TestEnv) POSTWithKey(path string, body interface{}, key string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, map[string]string{"Idempotency-Key": key})
}

// AuthPUT performs a PUT with a player session token.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPut, path, body, map[string]string{"Authorization": "Bearer " + token})
}

// AdminGET performs a GET with the admin token.
func (env *TestEnv) AdminGET(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodGet, path, nil, adminHeaders())
}

// AdminPOST performs a POST with the admin token.
func (env *TestEnv) AdminPOST(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPost, path, body, adminHeaders())
}

// AdminPUT performs a PUT with the admin token.
func (env *TestEnv) AdminPUT(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.do(http.MethodPut, path, body, adminHeaders())
}

// AdminDELETE performs a DELETE with the admin token.
func (env *TestEnv) AdminDELETE(path string) *http.Response {
	env.t.Helper()
	return env.do(http.MethodDelete, path, nil, adminHeaders())
}

// CreatePlayer adds a player through the admin API and returns its id.
func (env *TestEnv) CreatePlayer(name, ntrp, phone string) string {
	env.t.Helper()
	resp := env.AdminPOST("/api/admin/players", map[string]string{
		"display_name": name,
		"ntrp":         ntrp,
		"country_code": "+60",
		"phone":        phone,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreatePlayer: expected 201, got %d", resp.StatusCode)
	}
	var result struct {
		Player struct {
			ID string `json:"id"`
		} `json:"player"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("CreatePlayer: decode: %v", err)
	}
	return result.Player.ID
}

// RecordMatch submits a public match result and returns the stored match id.
func (env *TestEnv) RecordMatch(playerA, playerB, score string) string {
	env.t.Helper()
	resp := env.POST("/api/matches", map[string]string{
		"player_a_id": playerA,
		"player_b_id": playerB,
		"score":       score,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RecordMatch: expected 201, got %d", resp.StatusCode)
	}
	var result struct {
		Match struct {
			ID string `json:"id"`
		} `json:"match"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RecordMatch: decode: %v", err)
	}
	return result.Match.ID
}
