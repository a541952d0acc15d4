package service

import (
	"context"

	"github.com/orderdesk/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit stores a contact message from an authenticated user. origin is
	// the submitter's network address and keys the rate limit.
	Submit(ctx context.Context, actor model.Actor, origin, message string) (*model.ContactMessage, error)

	// List returns contact messages according to the given options. Staff only.
	List(ctx context.Context, actor model.Actor, opts model.ContactListOptions) ([]*model.ContactMessage, error)

	// MarkRead marks one contact message as read. Staff only.
	MarkRead(ctx context.Context, actor model.Actor, id string) error

	// Delete removes one contact message. Staff only.
	Delete(ctx context.Context, actor model.Actor, id string) error
}
