package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/match-hub/match-hub/internal/apperr"
	appMatch "github.com/match-hub/match-hub/internal/application/match"
	appNotification "github.com/match-hub/match-hub/internal/application/notification"
	"github.com/match-hub/match-hub/internal/infrastructure/sse"
)

const requestTimeout = 30 * time.Second

// Server holds dependencies for HTTP handlers.
type Server struct {
	matchSvc        *appMatch.Service
	notificationSvc *appNotification.Service
	logger          zerolog.Logger
	corsOrigins     []string
	ready           func(ctx context.Context) error
	stream          *sse.Hub
	heartbeat       time.Duration
}

// Option customizes a Server
type Option func(*Server)

// WithCORSOrigins sets the allowed CORS origins. Defaults to any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithReadiness adds a dependency check to /healthz.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// WithStream enables GET /v1/notifications/stream backed by hub.
func WithStream(hub *sse.Hub) Option {
	return func(s *Server) { s.stream = hub }
}

func NewServer(
	matchSvc *appMatch.Service,
	notificationSvc *appNotification.Service,
	logger zerolog.Logger,
	opts ...Option,
) *Server {
	s := &Server{
		matchSvc:        matchSvc,
		notificationSvc: notificationSvc,
		logger:          logger.With().Str("component", "http").Logger(),
		corsOrigins:     []string{"*"},
		heartbeat:       25 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Dur("duration", duration).
			Msg("request handled")
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", UserIDHeader},
		ExposedHeaders: []string{"Retry-After"},
	}).Handler)

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/matches", func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Post("/", s.registerPost)
				r.Get("/", s.listPosts)
				r.Get("/{postId}", s.getPost)
				r.Delete("/{postId}", s.deletePost)

				r.Post("/{postId}/apply", s.applyToMatch)
				r.Post("/{postId}/cancel", s.cancelApplication)
				r.Get("/{postId}/applicants", s.listApplicants)
				r.Post("/{postId}/accept/{applicationId}", s.acceptApplication)
				r.Post("/{postId}/reject/{applicationId}", s.rejectApplication)
			})

			r.Route("/notifications", func(r chi.Router) {
				// The stream outlives the request timeout.
				if s.stream != nil {
					r.Get("/stream", s.streamNotifications)
				}
				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(requestTimeout))
					r.Get("/", s.listNotifications)
					r.Get("/unread-count", s.unreadCount)
					r.Post("/read-all", s.markAllNotificationsRead)
					r.Post("/{notificationId}/read", s.markNotificationRead)
				})
			})
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("readiness check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondAppError maps a service error to its HTTP status. Uncoded errors
// are logged and answered with an opaque 500.
func respondAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		hlog.FromRequest(r).Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeInvalidState, apperr.CodeDuplicateResource:
		status = http.StatusConflict
	case apperr.CodeForbidden:
		status = http.StatusForbidden
	case apperr.CodeLockAcquisitionFailed:
		w.Header().Set("Retry-After", "1")
		status = http.StatusConflict
	case apperr.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperr.CodeUnauthorized:
		status = http.StatusUnauthorized
	}
	respondError(w, status, string(appErr.Code), appErr.Message)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
