package handler

import (
	"encoding/json"
	"net/http"

	"github.com/orderdesk/backend/internal/service"
)

// invalidateHeader tells the client which cached view to refetch after a write.
const invalidateHeader = "X-Invalidate"

// MessageHandler serves an order's conversation thread.
type MessageHandler struct {
	messages service.MessageService
	orders   service.OrderService
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(messages service.MessageService, orders service.OrderService) *MessageHandler {
	return &MessageHandler{messages: messages, orders: orders}
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/orders/{id}/messages (author or staff).
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	orderID := r.PathValue("id")

	if _, err := h.orders.Get(r.Context(), actor, orderID); err != nil {
		writeServiceError(w, r, actor, err, "list_failed", "order_id", orderID)
		return
	}

	messages, err := h.messages.ListForOrder(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, r, actor, err, "list_failed", "order_id", orderID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// Send handles POST /api/orders/{id}/messages.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	orderID := r.PathValue("id")

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	msg, err := h.messages.Send(r.Context(), actor, orderID, req.Content)
	if err != nil {
		writeServiceError(w, r, actor, err, "send_failed", "order_id", orderID)
		return
	}

	w.Header().Set(invalidateHeader, "orders/"+orderID)
	writeJSON(w, http.StatusCreated, msg)
}

// MarkRead handles POST /api/orders/{id}/messages/read. The response carries
// no invalidation hint: viewing a thread must not cause another fetch of it.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	orderID := r.PathValue("id")

	if err := h.messages.MarkRead(r.Context(), actor, orderID); err != nil {
		writeServiceError(w, r, actor, err, "mark_read_failed", "order_id", orderID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unread handles GET /api/orders/{id}/messages/unread.
func (h *MessageHandler) Unread(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	orderID := r.PathValue("id")

	n, err := h.messages.UnreadCountFor(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, r, actor, err, "count_failed", "order_id", orderID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}
