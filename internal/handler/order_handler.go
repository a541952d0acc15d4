package handler

import (
	"encoding/json"
	"net/http"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/service"
)

// OrderHandler serves order intake, detail and list views.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	var in service.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	order, err := h.orders.Submit(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, actor, err, "create_failed")
		return
	}
	w.Header().Set(invalidateHeader, "orders")
	writeJSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := r.PathValue("id")

	order, err := h.orders.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, actor, err, "get_failed", "order_id", id)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ListMine handles GET /api/me/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	limit, offset := pageParams(r, 20)

	orders, err := h.orders.ListForCustomer(r.Context(), actor, model.OrderListOptions{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, r, actor, err, "list_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// AdminList handles GET /api/admin/orders (staff only).
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	limit, offset := pageParams(r, 20)

	orders, err := h.orders.ListForStaff(r.Context(), actor, model.OrderListOptions{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, r, actor, err, "list_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status (staff only).
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), actor, id, req.Status); err != nil {
		writeServiceError(w, r, actor, err, "update_failed", "order_id", id)
		return
	}
	w.Header().Set(invalidateHeader, "orders/"+id)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}
