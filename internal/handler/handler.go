// Package handler exposes the landing page's JSON API: enrollment and
// contact form flows, skill quizzes, the content catalog, resource
// downloads, project counters, and the tutorial video search proxy.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gamedev-academy/academy/internal/catalog"
	"github.com/gamedev-academy/academy/internal/draft"
	"github.com/gamedev-academy/academy/internal/flow"
	"github.com/gamedev-academy/academy/internal/model"
	"github.com/gamedev-academy/academy/internal/quiz"
	"github.com/gamedev-academy/academy/internal/store"
	"github.com/gamedev-academy/academy/internal/youtube"
)

const clientCookieName = "client_id"

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store   *store.Store
	catalog *catalog.Catalog
	drafts  draft.Store
	videos  *youtube.Client
	config  model.ServerConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the in-memory flow state for one client.
type session struct {
	enrollment *flow.Enrollment
	contact    *flow.Contact
	quizzes    map[string]*quiz.Controller
}

// New creates a new Handler. videos may be nil when no API key is configured;
// video search then degrades to empty results.
func New(s *store.Store, c *catalog.Catalog, drafts draft.Store, videos *youtube.Client, cfg model.ServerConfig) *Handler {
	return &Handler{
		store:    s,
		catalog:  c,
		drafts:   drafts,
		videos:   videos,
		config:   cfg,
		sessions: make(map[string]*session),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(h.clientID)

		r.Route("/enroll", func(r chi.Router) {
			r.Post("/open", h.handleEnrollOpen)
			r.Post("/change", h.handleEnrollChange)
			r.Post("/blur", h.handleEnrollBlur)
			r.Post("/next", h.handleEnrollNext)
			r.Post("/previous", h.handleEnrollPrevious)
			r.Post("/submit", h.handleEnrollSubmit)
			r.Post("/reset", h.handleEnrollReset)
		})

		r.Route("/contact", func(r chi.Router) {
			r.Post("/open", h.handleContactOpen)
			r.Post("/change", h.handleContactChange)
			r.Post("/blur", h.handleContactBlur)
			r.Post("/submit", h.handleContactSubmit)
			r.Post("/reset", h.handleContactReset)
		})

		r.Get("/quiz/history", h.handleQuizHistory)
		r.Route("/quiz/{quizType}", func(r chi.Router) {
			r.Post("/open", h.handleQuizOpen)
			r.Post("/start", h.handleQuizStart)
			r.Post("/answer", h.handleQuizAnswer)
			r.Post("/next", h.handleQuizNext)
			r.Post("/previous", h.handleQuizPrevious)
			r.Post("/finish", h.handleQuizFinish)
			r.Post("/close", h.handleQuizClose)
			r.Get("/state", h.handleQuizState)
		})

		r.Get("/catalog/courses", h.handleCourses)
		r.Get("/catalog/quizzes", h.handleQuizList)
		r.Get("/catalog/resources", h.handleResources)
		r.Get("/catalog/projects", h.handleProjects)

		r.Post("/resources/{resourceID}/download", h.handleResourceDownload)
		r.Post("/resources/{resourceID}/email", h.handleResourceEmail)

		r.Post("/projects/{projectID}/favorite", h.handleProjectFavorite)
		r.Post("/projects/{projectID}/view", h.handleProjectView)
		r.Get("/projects/favorites", h.handleFavorites)

		r.Get("/videos/search", h.handleVideoSearch)
		r.Get("/videos/details", h.handleVideoDetails)

		r.Get("/admin/stats", h.handleAdminStats)
		r.Get("/admin/export", h.handleAdminExport)
	})
}

// clientID assigns each browser a stable random identifier via cookie. The
// identifier namespaces drafts and in-memory flow state per client.
func (h *Handler) clientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(clientCookieName); err == nil && c.Value != "" {
			id = c.Value
		} else {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				Secure:   h.config.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(model.ContextWithClientID(r.Context(), id)))
	})
}

// sessionFor returns (creating if needed) the in-memory state for a client.
// Caller must hold h.mu.
func (h *Handler) sessionFor(id string) *session {
	sess, ok := h.sessions[id]
	if !ok {
		sess = &session{quizzes: make(map[string]*quiz.Controller)}
		h.sessions[id] = sess
	}
	return sess
}

// enrollmentFor returns the client's enrollment flow, creating it on first
// use. preSelectedCourse only matters at creation time.
func (h *Handler) enrollmentFor(r *http.Request, preSelectedCourse string) *flow.Enrollment {
	id := model.ClientIDFromContext(r.Context())
	h.mu.Lock()
	defer h.mu.Unlock()
	sess := h.sessionFor(id)
	if sess.enrollment == nil {
		sess.enrollment = flow.NewEnrollment(id+":enrollment_draft", preSelectedCourse, h.drafts, h.store, h.submitter())
	}
	return sess.enrollment
}

// contactFor returns the client's contact flow, creating it on first use.
func (h *Handler) contactFor(r *http.Request, inquiryType string) *flow.Contact {
	id := model.ClientIDFromContext(r.Context())
	h.mu.Lock()
	defer h.mu.Unlock()
	sess := h.sessionFor(id)
	if sess.contact == nil {
		sess.contact = flow.NewContact(id+":contact_draft", inquiryType, h.drafts, h.store, h.submitter())
	}
	return sess.contact
}

// quizFor returns the client's controller for a quiz type, creating it on
// first use. The second return is false for unknown quiz types.
func (h *Handler) quizFor(r *http.Request, quizType string) (*quiz.Controller, bool) {
	q, ok := h.catalog.Quiz(quizType)
	if !ok {
		return nil, false
	}
	id := model.ClientIDFromContext(r.Context())
	h.mu.Lock()
	defer h.mu.Unlock()
	sess := h.sessionFor(id)
	ctrl, ok := sess.quizzes[quizType]
	if !ok {
		ctrl = quiz.New(q,
			id+":quiz_"+quizType+"_progress",
			id+":quiz_"+quizType+"_result",
			h.drafts, h.store,
			quiz.Options{Duration: h.config.QuizDuration})
		sess.quizzes[quizType] = ctrl
	}
	return ctrl, true
}

func (h *Handler) submitter() flow.Submitter {
	return flow.Simulated{Latency: h.config.SubmitLatency}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
