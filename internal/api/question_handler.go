package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/examtrainer/backend/internal/domain/question"
	"github.com/examtrainer/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

// QuestionPayload is the wire shape the web client expects: the _id field
// name is kept from the earlier Mongo-backed revision.
type QuestionPayload struct {
	ID       string   `json:"_id,omitempty"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

type CreateQuestionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type ImportResponse struct {
	Success    bool `json:"success"`
	Added      int  `json:"added"`
	Duplicates int  `json:"duplicates"`
	TotalInDB  int  `json:"total_in_db"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// GET /api/questions
//
//	@Summary  List the whole question bank
//	@Produce  json
//	@Success  200 {array} QuestionPayload
//	@Security BearerAuth
//	@Router   /api/questions [get]
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(r.Context())
	if err != nil {
		h.logger.Error("failed to load questions", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}

	payload := make([]QuestionPayload, len(questions))
	for i, q := range questions {
		payload[i] = QuestionPayload{
			ID:       q.ID,
			Question: q.Text,
			Options:  q.Options,
			Correct:  q.Correct,
		}
	}
	respondJSON(w, http.StatusOK, payload)
}

// POST /api/questions (also /api/question)
//
//	@Summary  Add a single question to the bank
//	@Accept   json
//	@Produce  json
//	@Success  201 {object} CreateQuestionResponse
//	@Failure  400 {object} errorResponse
//	@Security BearerAuth
//	@Router   /api/questions [post]
func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := question.New(req.Question, req.Options, req.Correct)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.AddQuestion(r.Context(), q); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(w, http.StatusBadRequest, "question already exists")
			return
		}
		h.logger.Error("failed to save question", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save question")
		return
	}

	respondJSON(w, http.StatusCreated, CreateQuestionResponse{Success: true, ID: q.ID})
}

// POST /api/import
//
//	@Summary  Bulk import a JSON array of questions, skipping duplicates
//	@Accept   json
//	@Produce  json
//	@Success  200 {object} ImportResponse
//	@Failure  400 {object} errorResponse
//	@Security BearerAuth
//	@Router   /api/import [post]
func (h *Handler) importQuestions(w http.ResponseWriter, r *http.Request) {
	var payload []QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "expected a JSON array of questions")
		return
	}

	// Validate the whole array before touching the bank.
	questions := make([]*question.Question, len(payload))
	for i, item := range payload {
		q, err := question.New(item.Question, item.Options, item.Correct)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("question %d: %v", i, err))
			return
		}
		questions[i] = q
	}

	summary, err := h.store.ImportQuestions(r.Context(), questions)
	if err != nil {
		h.logger.Error("import failed", "error", err, "added", summary.Added)
		respondError(w, http.StatusInternalServerError, "import failed")
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		Success:    true,
		Added:      summary.Added,
		Duplicates: summary.Duplicates,
		TotalInDB:  summary.Total,
	})
}
