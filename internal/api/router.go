// internal/api/router.go
package api

import (
	"net/http"

	"github.com/examtrainer/backend/internal/auth"
)

// RegisterRoutes wires the sync API. Everything except login sits behind
// the bearer-token gate.
func RegisterRoutes(mux *http.ServeMux, h *Handler, svc *auth.Service) {
	protected := auth.Middleware(svc)

	mux.HandleFunc("POST /api/login", h.login)

	// Questions
	mux.Handle("GET /api/questions", protected(http.HandlerFunc(h.listQuestions)))
	mux.Handle("POST /api/questions", protected(http.HandlerFunc(h.createQuestion)))
	// older web clients post a single question to the singular path
	mux.Handle("POST /api/question", protected(http.HandlerFunc(h.createQuestion)))
	mux.Handle("POST /api/import", protected(http.HandlerFunc(h.importQuestions)))

	// Progress
	mux.Handle("GET /api/progress", protected(http.HandlerFunc(h.getProgress)))
	mux.Handle("POST /api/progress", protected(http.HandlerFunc(h.saveProgress)))
	mux.Handle("DELETE /api/progress", protected(http.HandlerFunc(h.deleteProgress)))
}
