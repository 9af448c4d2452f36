package handler

import (
	"context"
	"net/http"
	"time"
)

// ServiceName identifies this server in health responses.
const ServiceName = "league-ledger"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns a health check endpoint that also probes the document store.
func HealthHandler(store Pinger, defaultSeason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		body := map[string]interface{}{
			"ok":             true,
			"service":        ServiceName,
			"now":            time.Now().UTC().Format(time.RFC3339),
			"default_season": defaultSeason,
			"store":          "reachable",
		}
		if err := store.Ping(ctx); err != nil {
			body["ok"] = false
			body["store"] = "unreachable"
			body["error"] = err.Error()
			RespondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		RespondJSON(w, http.StatusOK, body)
	}
}
