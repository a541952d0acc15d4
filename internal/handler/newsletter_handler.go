package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orderdesk/backend/internal/service"
)

// NewsletterHandler serves the public newsletter sign-up form.
type NewsletterHandler struct {
	newsletter service.NewsletterService
}

// NewNewsletterHandler creates a NewsletterHandler.
func NewNewsletterHandler(newsletter service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe handles POST /api/newsletter. No session is required.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	_, err := h.newsletter.Subscribe(r.Context(), req.Email)
	if errors.Is(err, service.ErrConflict) {
		writeError(w, http.StatusConflict, "already_subscribed")
		return
	}
	if err != nil {
		writeServiceError(w, r, actor, err, "subscribe_failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}
