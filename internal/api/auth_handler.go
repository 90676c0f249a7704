package api

import (
	"errors"
	"net/http"

	"github.com/examtrainer/backend/internal/auth"
)

// ── Request / Response types ────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// POST /api/login
//
//	@Summary  Exchange static credentials for a bearer token
//	@Accept   json
//	@Produce  json
//	@Success  200 {object} LoginResponse
//	@Failure  401 {object} errorResponse
//	@Router   /api/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, Username: req.Username})
}
