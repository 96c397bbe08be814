package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyquiz/internal/models"
	"studyquiz/internal/quiz"
)

// QuizHandler serves the question sets and quiz of the calling session.
type QuizHandler struct{}

func NewQuizHandler() *QuizHandler {
	return &QuizHandler{}
}

func (h *QuizHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	snap := sess.Store.Snapshot()
	sets := lo.Map(snap.QuestionSets, func(s *models.QuestionSet, _ int) models.QuestionSetSummary {
		return s.Summary()
	})

	var current *uuid.UUID
	if snap.CurrentSet != nil {
		id := snap.CurrentSet.ID
		current = &id
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sets":           sets,
		"current_set_id": current,
	})
}

func (h *QuizHandler) SelectSet(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid set ID", r))
		return
	}

	// An unknown id must leave the active quiz alone.
	if !sess.Store.HasSet(id) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Question set not found", r))
		return
	}
	sess.Store.SetCurrentSet(id)

	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

func (h *QuizHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sess.Quiz.View())
}

func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Option == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Option is required", r))
		return
	}

	view, err := sess.Quiz.Select(*req.Option)
	if err != nil {
		writeQuizError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Continue(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	view, err := sess.Quiz.Continue()
	if err != nil {
		writeQuizError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sess.Quiz.Restart())
}

func writeQuizError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoQuestions):
		writeJSON(w, http.StatusNotFound, errorResp("NO_QUESTIONS", quiz.MessageEmpty, r))
	case errors.Is(err, quiz.ErrInvalidOption):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Option is out of range", r))
	case errors.Is(err, quiz.ErrAnswerLocked):
		writeJSON(w, http.StatusConflict, errorResp("ANSWER_LOCKED", "An answer was already selected for this question", r))
	case errors.Is(err, quiz.ErrNotAnswered):
		writeJSON(w, http.StatusConflict, errorResp("NOT_ANSWERED", "Select an answer before continuing", r))
	case errors.Is(err, quiz.ErrQuizComplete):
		writeJSON(w, http.StatusConflict, errorResp("QUIZ_COMPLETE", quiz.MessageComplete, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Internal server error", r))
	}
}
