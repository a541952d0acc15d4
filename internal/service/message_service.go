package service

import (
	"context"

	"github.com/orderdesk/backend/internal/model"
)

// MessageService is the only way into an order's conversation.
type MessageService interface {
	// Send appends a message from actor to the order's thread and bumps the
	// order's last activity. Only the order's author or staff may send.
	// Callers own any view refresh that should follow.
	Send(ctx context.Context, actor model.Actor, orderID, content string) (*model.Message, error)

	// MarkRead marks everything the actor has not written as read for the
	// actor's side. It is a silent data update: it never triggers a refresh
	// or notification. Non-participants and unknown orders are a no-op.
	MarkRead(ctx context.Context, actor model.Actor, orderID string) error

	// ListForOrder returns the thread oldest first.
	ListForOrder(ctx context.Context, orderID string) ([]*model.Message, error)

	// UnreadCountFor counts exactly the messages MarkRead would clear.
	UnreadCountFor(ctx context.Context, actor model.Actor, orderID string) (int, error)
}
