package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gamedev-academy/academy/internal/i18n"
	"github.com/gamedev-academy/academy/internal/model"
	"github.com/gamedev-academy/academy/internal/quiz"
)

// quizQuestionView is a question as served to clients. Answer keys and
// explanations only appear once the run is completed.
type quizQuestionView struct {
	ID          int64    `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     *int     `json:"correct,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

type quizStateResponse struct {
	quiz.Snapshot
	Questions []quizQuestionView `json:"questions"`
}

func (h *Handler) quizState(quizType string, ctrl *quiz.Controller) quizStateResponse {
	snap := ctrl.Snapshot()
	q, _ := h.catalog.Quiz(quizType)

	reveal := snap.State == quiz.StateCompleted
	questions := make([]quizQuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		view := quizQuestionView{
			ID:       question.ID,
			Question: question.Question,
			Options:  question.Options,
		}
		if reveal {
			correct := question.Correct
			view.Correct = &correct
			view.Explanation = question.Explanation
		}
		questions = append(questions, view)
	}
	return quizStateResponse{Snapshot: snap, Questions: questions}
}

func (h *Handler) handleQuizOpen(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	if err := ctrl.Open(r.Context()); err != nil {
		slog.Error("open quiz", "type", quizType, "error", err)
		respondError(w, http.StatusInternalServerError, "could not restore progress")
		return
	}
	// A restored run keeps counting down. RunTicker replaces any prior
	// ticker, so reopening an already-running controller is safe.
	if ctrl.Snapshot().State == quiz.StateInProgress {
		ctrl.RunTicker(context.WithoutCancel(r.Context()))
	}
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	ctrl.Start(r.Context())
	// The countdown outlives the request.
	ctrl.RunTicker(context.WithoutCancel(r.Context()))
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID int64 `json:"question_id"`
		Choice     int   `json:"choice"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	if err := ctrl.SelectAnswer(r.Context(), req.QuestionID, req.Choice); err != nil {
		if errors.Is(err, quiz.ErrNotInProgress) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	ctrl.Next(r.Context())
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizPrevious(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	ctrl.Previous(r.Context())
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizFinish(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	if err := ctrl.Finish(r.Context()); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	state := h.quizState(quizType, ctrl)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": i18n.T(r.Context(), "QuizComplete"),
		"state":   state,
	})
}

func (h *Handler) handleQuizClose(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	ctrl.Close()
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (h *Handler) handleQuizState(w http.ResponseWriter, r *http.Request) {
	quizType := chi.URLParam(r, "quizType")
	ctrl, ok := h.quizFor(r, quizType)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown quiz type")
		return
	}
	respondJSON(w, http.StatusOK, h.quizState(quizType, ctrl))
}

func (h *Handler) handleQuizHistory(w http.ResponseWriter, r *http.Request) {
	clientID := model.ClientIDFromContext(r.Context())
	history, err := h.store.ListQuizHistory(clientID + ":")
	if err != nil {
		slog.Error("list quiz history", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if history == nil {
		history = []model.QuizResult{}
	}
	respondJSON(w, http.StatusOK, history)
}
