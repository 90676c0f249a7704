package api

import (
	"errors"
	"net/http"

	"github.com/examtrainer/backend/internal/auth"
	"github.com/examtrainer/backend/internal/session"
	"github.com/examtrainer/backend/internal/store"
)

type successResponse struct {
	Success bool `json:"success"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /api/progress
//
// First access auto-creates empty progress so the client never has to
// special-case a missing record.
//
//	@Summary  Get the calling user's saved progress
//	@Produce  json
//	@Success  200 {object} session.Progress
//	@Security BearerAuth
//	@Router   /api/progress [get]
func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := auth.UsernameFromContext(ctx)

	p, err := h.store.GetProgress(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		p = session.EmptyProgress()
		err = h.store.SaveProgress(ctx, username, p)
	}
	if err != nil {
		h.logger.Error("failed to load progress", "error", err, "user", username)
		respondError(w, http.StatusInternalServerError, "failed to load progress")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// POST /api/progress
//
//	@Summary  Replace the calling user's progress
//	@Accept   json
//	@Produce  json
//	@Success  200 {object} successResponse
//	@Security BearerAuth
//	@Router   /api/progress [post]
func (h *Handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := auth.UsernameFromContext(ctx)

	p := session.EmptyProgress()
	if !decodeJSON(w, r, &p) {
		return
	}
	// A client may omit the maps entirely; store them as empty, not null.
	if p.Answers == nil {
		p.Answers = map[string]int{}
	}
	if p.ShuffledOptions == nil {
		p.ShuffledOptions = map[string][]session.OptionView{}
	}
	if p.Mode != session.ModeRetry {
		p.Mode = session.ModeNormal
	}

	if err := h.store.SaveProgress(ctx, username, p); err != nil {
		h.logger.Error("failed to save progress", "error", err, "user", username)
		respondError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}

	respondJSON(w, http.StatusOK, successResponse{Success: true})
}

// DELETE /api/progress
//
//	@Summary  Delete the calling user's progress (session reset)
//	@Produce  json
//	@Success  200 {object} successResponse
//	@Security BearerAuth
//	@Router   /api/progress [delete]
func (h *Handler) deleteProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := auth.UsernameFromContext(ctx)

	if err := h.store.DeleteProgress(ctx, username); err != nil {
		h.logger.Error("failed to delete progress", "error", err, "user", username)
		respondError(w, http.StatusInternalServerError, "failed to delete progress")
		return
	}

	respondJSON(w, http.StatusOK, successResponse{Success: true})
}
