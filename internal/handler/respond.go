package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/smashpoint/league/internal/domain"
)

// maxBodyBytes bounds request bodies; the league document never needs more per call.
const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
// Internal errors keep the cause out of the body and expose only a short detail.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == domain.CodeInternal {
			RespondJSON(w, appErr.Status, map[string]string{
				"code":    domain.CodeInternal,
				"message": "internal server error",
				"detail":  appErr.Message,
			})
			return
		}
		RespondJSON(w, appErr.Status, map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    domain.CodeInternal,
		"message": "internal server error",
	})
}

// DecodeJSON reads and decodes a JSON request body into dst. An empty body leaves dst
// untouched; malformed JSON is a validation error.
func DecodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return domain.ErrValidation("request body too large")
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return domain.ErrValidation("invalid JSON payload")
}

// OK wraps a payload in the {"ok": true, ...} envelope used by write endpoints.
func OK(key string, value interface{}) map[string]interface{} {
	body := map[string]interface{}{"ok": true}
	if key != "" {
		body[key] = value
	}
	return body
}
