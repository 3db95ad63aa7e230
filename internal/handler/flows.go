package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gamedev-academy/academy/internal/flow"
	"github.com/gamedev-academy/academy/internal/i18n"
)

type changeRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type blurRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleEnrollOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Course string `json:"course"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	e := h.enrollmentFor(r, req.Course)
	if err := e.Open(r.Context()); err != nil {
		slog.Error("open enrollment", "error", err)
		respondError(w, http.StatusInternalServerError, "could not restore draft")
		return
	}
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleEnrollChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := h.enrollmentFor(r, "")
	e.Change(r.Context(), req.Name, req.Value)
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleEnrollBlur(w http.ResponseWriter, r *http.Request) {
	var req blurRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := h.enrollmentFor(r, "")
	e.Blur(req.Name)
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleEnrollNext(w http.ResponseWriter, r *http.Request) {
	e := h.enrollmentFor(r, "")
	if !e.Next(r.Context()) {
		respondJSON(w, http.StatusUnprocessableEntity, e.Snapshot())
		return
	}
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleEnrollPrevious(w http.ResponseWriter, r *http.Request) {
	e := h.enrollmentFor(r, "")
	e.Previous(r.Context())
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleEnrollSubmit(w http.ResponseWriter, r *http.Request) {
	e := h.enrollmentFor(r, "")
	rec, err := e.Submit(r.Context())
	if err != nil {
		h.respondFlowError(w, r, err, e.Snapshot())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    i18n.T(r.Context(), "EnrollmentReceived"),
		"submission": rec,
		"snapshot":   e.Snapshot(),
	})
}

func (h *Handler) handleEnrollReset(w http.ResponseWriter, r *http.Request) {
	e := h.enrollmentFor(r, "")
	e.Reset()
	respondJSON(w, http.StatusOK, e.Snapshot())
}

func (h *Handler) handleContactOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InquiryType string `json:"inquiryType"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c := h.contactFor(r, req.InquiryType)
	if err := c.Open(r.Context()); err != nil {
		slog.Error("open contact", "error", err)
		respondError(w, http.StatusInternalServerError, "could not restore draft")
		return
	}
	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) handleContactChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := h.contactFor(r, "")
	c.Change(r.Context(), req.Name, req.Value)
	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) handleContactBlur(w http.ResponseWriter, r *http.Request) {
	var req blurRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := h.contactFor(r, "")
	c.Blur(req.Name)
	respondJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	c := h.contactFor(r, "")
	rec, err := c.Submit(r.Context())
	if err != nil {
		h.respondFlowError(w, r, err, c.Snapshot())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    i18n.T(r.Context(), "ContactReceived"),
		"submission": rec,
		"snapshot":   c.Snapshot(),
	})
}

func (h *Handler) handleContactReset(w http.ResponseWriter, r *http.Request) {
	c := h.contactFor(r, "")
	c.Reset()
	respondJSON(w, http.StatusOK, c.Snapshot())
}

// respondFlowError maps flow errors to HTTP statuses. Validation failures
// carry the snapshot so the client can render per-field errors.
func (h *Handler) respondFlowError(w http.ResponseWriter, r *http.Request, err error, snap flow.Snapshot) {
	switch {
	case errors.Is(err, flow.ErrValidation):
		respondJSON(w, http.StatusUnprocessableEntity, snap)
	case errors.Is(err, flow.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, i18n.T(r.Context(), "SubmissionInFlight"))
	case errors.Is(err, flow.ErrWrongStep):
		respondError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("submit flow", "error", err)
		respondError(w, http.StatusBadGateway, "submission failed, your input was kept")
	}
}
