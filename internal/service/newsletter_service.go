package service

import (
	"context"

	"github.com/orderdesk/backend/internal/model"
)

// NewsletterService handles public newsletter sign-ups.
type NewsletterService interface {
	// Subscribe adds email to the list. ErrConflict when it is already there.
	Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error)
}
