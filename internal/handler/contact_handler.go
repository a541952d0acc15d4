package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/service"
)

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService service.ContactService
	retryAfter     string
}

// NewContactHandler creates a ContactHandler. limiter supplies the
// Retry-After value sent with a rate-limited response.
func NewContactHandler(contactService service.ContactService, limiter *service.ContactRateLimiter) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		retryAfter:     strconv.Itoa(int(limiter.Window().Seconds())),
	}
}

// submitRequest is the expected JSON body for POST /api/contact. Name and
// email come from the signed-in account.
type submitRequest struct {
	Message string `json:"message"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	msg, err := h.contactService.Submit(r.Context(), actor, OriginAddress(r), req.Message)
	if errors.Is(err, service.ErrRateLimited) {
		w.Header().Set("Retry-After", h.retryAfter)
	}
	if err != nil {
		writeServiceError(w, r, actor, err, "submit_failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": msg.ID})
}

// adminListResponse is the JSON response for GET /api/admin/contacts.
type adminListResponse struct {
	Messages []*model.ContactMessage `json:"messages"`
}

// AdminList handles GET /api/admin/contacts (staff only).
// Supports query params: status (all/unread/read), limit, offset.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	limit, offset := pageParams(r, 20)
	opts := model.ContactListOptions{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}

	messages, err := h.contactService.List(r.Context(), actor, opts)
	if err != nil {
		writeServiceError(w, r, actor, err, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, adminListResponse{Messages: messages})
}

// MarkRead handles PATCH /api/admin/contacts/{id}/read (staff only).
func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := r.PathValue("id")

	if err := h.contactService.MarkRead(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, actor, err, "update_failed", "contact_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/admin/contacts/{id} (staff only).
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := r.PathValue("id")

	if err := h.contactService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, actor, err, "delete_failed", "contact_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
