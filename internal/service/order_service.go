package service

import (
	"context"

	"github.com/orderdesk/backend/internal/model"
)

// OrderInput is a customer's order submission.
type OrderInput struct {
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"min=20,max=5000"`
	Budget      string `json:"budget" validate:"max=100"`
	Deadline    string `json:"deadline" validate:"max=100"`
}

// OrderService covers order intake, staff status changes and the list views.
type OrderService interface {
	// Submit places a new PENDING order authored by actor.
	Submit(ctx context.Context, actor model.Actor, in OrderInput) (*model.Order, error)
	// Get returns the order if actor is its author or staff.
	Get(ctx context.Context, actor model.Actor, id string) (*model.Order, error)
	// UpdateStatus is staff only.
	UpdateStatus(ctx context.Context, actor model.Actor, id string, status model.OrderStatus) error
	// ListForStaff lists all orders, most recently active first, with staff unread badges.
	ListForStaff(ctx context.Context, actor model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error)
	// ListForCustomer lists the actor's own orders with customer unread badges.
	ListForCustomer(ctx context.Context, actor model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error)
}
