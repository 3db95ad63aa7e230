package handler

import (
	"log/slog"
	"net/http"

	"github.com/gamedev-academy/academy/internal/model"
)

// handleAdminStats reports submission and quiz volumes. Intended for the
// operator, not the public page; deploy behind the reverse proxy's ACL.
func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{}
	for _, f := range []model.Flow{model.FlowEnrollment, model.FlowContact, model.FlowResourceEmail} {
		n, err := h.store.SubmissionCount(f)
		if err != nil {
			slog.Error("submission count", "flow", f, "error", err)
			respondError(w, http.StatusInternalServerError, "could not load stats")
			return
		}
		stats[string(f)] = n
	}

	quizRuns, err := h.store.QuizHistoryCount("")
	if err != nil {
		slog.Error("quiz history count", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	stats["quiz_runs"] = quizRuns

	respondJSON(w, http.StatusOK, stats)
}

// handleAdminExport serves the full submission and quiz archive as JSON,
// the same shape the export subcommand writes to disk.
func (h *Handler) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.store.ExportAll()
	if err != nil {
		slog.Error("export", "error", err)
		respondError(w, http.StatusInternalServerError, "could not build export")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="academy-export.json"`)
	respondJSON(w, http.StatusOK, export)
}
