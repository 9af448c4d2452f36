package handler

import (
	"net/http"

	"github.com/smashpoint/league/internal/service"
)

// AuthHandler handles TAC onboarding and phone login.
type AuthHandler struct {
	onboarding *service.OnboardingService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(onboarding *service.OnboardingService) *AuthHandler {
	return &AuthHandler{onboarding: onboarding}
}

// RequestTAC handles POST /auth/request-tac.
func (h *AuthHandler) RequestTAC(w http.ResponseWriter, r *http.Request) {
	var in service.TACRequestInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	result, err := h.onboarding.RequestTAC(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// VerifyTAC handles POST /auth/verify-tac.
func (h *AuthHandler) VerifyTAC(w http.ResponseWriter, r *http.Request) {
	var in service.VerifyInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	result, err := h.onboarding.VerifyTAC(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

// LoginByPhone handles POST /auth/login-by-phone.
func (h *AuthHandler) LoginByPhone(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	result, err := h.onboarding.LoginByPhone(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
