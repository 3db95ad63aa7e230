package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/form"
	"github.com/gamedev-academy/academy/internal/i18n"
	"github.com/gamedev-academy/academy/internal/model"
	"github.com/gamedev-academy/academy/internal/youtube"
)

func (h *Handler) handleCourses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Courses)
}

// handleQuizList serves quiz metadata only. Questions come from the quiz
// state endpoint, which withholds answer keys for runs in progress.
func (h *Handler) handleQuizList(w http.ResponseWriter, r *http.Request) {
	type quizInfo struct {
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Questions   int    `json:"questions"`
		Duration    int    `json:"duration"`
	}
	list := make([]quizInfo, 0, len(h.catalog.Quizzes))
	for _, q := range h.catalog.Quizzes {
		list = append(list, quizInfo{
			Type:        q.Type,
			Title:       q.Title,
			Description: q.Description,
			Questions:   len(q.Questions),
			Duration:    h.config.QuizDuration,
		})
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleResources(w http.ResponseWriter, r *http.Request) {
	type resourceView struct {
		model.Resource
		Downloads int `json:"downloads"`
	}
	list := make([]resourceView, 0, len(h.catalog.Resources))
	for _, res := range h.catalog.Resources {
		count, err := h.store.DownloadCount(res.ID)
		if err != nil {
			slog.Error("download count", "resource", res.ID, "error", err)
		}
		list = append(list, resourceView{Resource: res, Downloads: count})
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.Projects)
}

// emailGateKey marks a client as signed up for premium downloads.
func emailGateKey(clientID string) string {
	return clientID + ":email_signup"
}

func (h *Handler) handleResourceDownload(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")
	res := h.catalog.Resource(resourceID)
	if res == nil {
		respondError(w, http.StatusNotFound, "unknown resource")
		return
	}

	clientID := model.ClientIDFromContext(r.Context())
	if res.Premium {
		rec, err := h.drafts.Load(r.Context(), emailGateKey(clientID))
		if err != nil {
			slog.Error("check email gate", "error", err)
			respondError(w, http.StatusInternalServerError, "could not check signup")
			return
		}
		if rec == nil {
			respondError(w, http.StatusForbidden, i18n.T(r.Context(), "ResourceLocked"))
			return
		}
	}

	count, err := h.store.RecordDownload(clientID, resourceID)
	if err != nil {
		slog.Error("record download", "resource", resourceID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not record download")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"resource":  res,
		"downloads": count,
		"message":   i18n.Td(r.Context(), "DownloadCount", map[string]any{"Count": count}),
	})
}

func (h *Handler) handleResourceEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	rules := form.RuleSet{"email": {Required: true, Email: true}}
	if msg := form.ValidateField("email", req.Email, rules, form.Values{"email": req.Email}); msg != "" {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": map[string]string{"email": msg},
		})
		return
	}

	resourceID := chi.URLParam(r, "resourceID")
	clientID := model.ClientIDFromContext(r.Context())
	rec := model.SubmissionRecord{
		ID:   "SIGNUP-" + uuid.NewString(),
		Flow: model.FlowResourceEmail,
		Values: map[string]any{
			"email":       strings.TrimSpace(req.Email),
			"resource_id": resourceID,
		},
		Status:      model.SubmissionReceived,
		SubmittedAt: time.Now(),
	}
	if err := h.store.AppendSubmission(rec); err != nil {
		slog.Error("append email signup", "error", err)
		respondError(w, http.StatusInternalServerError, "could not record signup")
		return
	}

	gate := draft.NewRecord(map[string]any{"email": rec.Values["email"]}, 0)
	if err := h.drafts.Save(r.Context(), emailGateKey(clientID), gate); err != nil {
		slog.Error("save email gate", "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":    i18n.T(r.Context(), "EmailSignupReceived"),
		"submission": rec,
	})
}

func (h *Handler) handleProjectFavorite(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if h.catalog.Project(projectID) == nil {
		respondError(w, http.StatusNotFound, "unknown project")
		return
	}

	clientID := model.ClientIDFromContext(r.Context())
	favorited, err := h.store.ToggleFavorite(clientID, projectID)
	if err != nil {
		slog.Error("toggle favorite", "project", projectID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not update favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"project": projectID, "favorited": favorited})
}

func (h *Handler) handleProjectView(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if h.catalog.Project(projectID) == nil {
		respondError(w, http.StatusNotFound, "unknown project")
		return
	}

	views, err := h.store.RecordProjectView(projectID)
	if err != nil {
		slog.Error("record view", "project", projectID, "error", err)
		respondError(w, http.StatusInternalServerError, "could not record view")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"project": projectID, "views": views})
}

func (h *Handler) handleFavorites(w http.ResponseWriter, r *http.Request) {
	clientID := model.ClientIDFromContext(r.Context())
	favorites, err := h.store.ListFavorites(clientID)
	if err != nil {
		slog.Error("list favorites", "error", err)
		respondError(w, http.StatusInternalServerError, "could not load favorites")
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	respondJSON(w, http.StatusOK, favorites)
}

// videoSearchResponse always carries a videos list. Error is set when the
// upstream lookup failed, so clients can tell "no results" from "try again".
type videoSearchResponse struct {
	Videos []youtube.Video `json:"videos"`
	Error  string          `json:"error,omitempty"`
}

type videoDetailsResponse struct {
	Details []youtube.VideoDetail `json:"details"`
	Error   string                `json:"error,omitempty"`
}

func (h *Handler) handleVideoSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	if h.videos == nil {
		respondJSON(w, http.StatusOK, videoSearchResponse{Videos: []youtube.Video{}})
		return
	}

	opts := youtube.SearchOptions{
		Order:          r.URL.Query().Get("order"),
		Duration:       r.URL.Query().Get("duration"),
		ChannelID:      r.URL.Query().Get("channel"),
		PublishedAfter: r.URL.Query().Get("publishedAfter"),
	}
	if max := r.URL.Query().Get("max"); max != "" {
		if n, err := strconv.Atoi(max); err == nil {
			opts.MaxResults = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	videos, err := h.videos.SearchVideos(ctx, query, opts)
	if err != nil {
		slog.Warn("video search", "query", query, "error", err)
		respondJSON(w, http.StatusOK, videoSearchResponse{
			Videos: []youtube.Video{},
			Error:  "video search is temporarily unavailable",
		})
		return
	}
	if videos == nil {
		videos = []youtube.Video{}
	}
	respondJSON(w, http.StatusOK, videoSearchResponse{Videos: videos})
}

func (h *Handler) handleVideoDetails(w http.ResponseWriter, r *http.Request) {
	idsParam := r.URL.Query().Get("ids")
	if idsParam == "" {
		respondError(w, http.StatusBadRequest, "missing query parameter ids")
		return
	}
	if h.videos == nil {
		respondJSON(w, http.StatusOK, videoDetailsResponse{Details: []youtube.VideoDetail{}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	details, err := h.videos.VideoDetails(ctx, strings.Split(idsParam, ","))
	if err != nil {
		slog.Warn("video details", "ids", idsParam, "error", err)
		respondJSON(w, http.StatusOK, videoDetailsResponse{
			Details: []youtube.VideoDetail{},
			Error:   "video details are temporarily unavailable",
		})
		return
	}
	if details == nil {
		details = []youtube.VideoDetail{}
	}
	respondJSON(w, http.StatusOK, videoDetailsResponse{Details: details})
}
