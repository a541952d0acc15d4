package model

import "time"

// NewsletterSubscription is one address on the newsletter list. Emails are
// stored trimmed and lower-cased, and are unique.
type NewsletterSubscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
