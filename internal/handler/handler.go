package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
	"github.com/orderdesk/backend/internal/service"
	"github.com/orderdesk/backend/pkg/auth"
)

type Handler struct {
	db          repository.DB
	frontendURL string
	checks      []healthCheck
}

func New(db repository.DB, frontendURL string) *Handler {
	return &Handler{db: db, frontendURL: frontendURL}
}

func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.frontendURL)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Invalidate, Retry-After, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// actorFromRequest builds the caller from the auth context. An unauthenticated
// request yields the zero Actor.
func actorFromRequest(r *http.Request) model.Actor {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		return model.Actor{}
	}
	return model.Actor{ID: userID, Role: model.ParseRole(auth.RoleFromContext(r.Context()))}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps a service error to its HTTP response. Anything that
// is not a domain error is logged and reported as fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, actor model.Actor, err error, fallback string, attrs ...any) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_input", "field": verr.Field, "message": verr.Message})
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, service.ErrUnauthorized):
		if actor.Authenticated() {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		slog.ErrorContext(r.Context(), fallback, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// pageParams reads limit/offset query parameters. limit is clamped to
// [1, 100]; invalid values fall back to the defaults.
func pageParams(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
