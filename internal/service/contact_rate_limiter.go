package service

import (
	"context"
	"fmt"
	"time"

	"github.com/orderdesk/backend/internal/repository"
)

// DefaultContactWindow is how long an origin waits between contact submissions.
const DefaultContactWindow = time.Hour

// ContactRateLimiter allows one contact submission per origin per rolling
// window. There is no burst allowance: any recorded submission inside the
// window denies the next one.
type ContactRateLimiter struct {
	ledger repository.SubmissionLedger
	window time.Duration
	now    func() time.Time
}

// NewContactRateLimiter creates a limiter over ledger. A non-positive window
// falls back to DefaultContactWindow.
func NewContactRateLimiter(ledger repository.SubmissionLedger, window time.Duration) *ContactRateLimiter {
	if window <= 0 {
		window = DefaultContactWindow
	}
	return &ContactRateLimiter{ledger: ledger, window: window, now: time.Now}
}

// Window returns the rolling window length.
func (l *ContactRateLimiter) Window() time.Duration {
	return l.window
}

// Check returns ErrRateLimited when origin submitted within the last window.
func (l *ContactRateLimiter) Check(ctx context.Context, origin string) error {
	since := l.now().UTC().Add(-l.window)
	exists, err := l.ledger.ExistsSince(ctx, origin, since)
	if err != nil {
		return fmt.Errorf("check submission ledger: %w", err)
	}
	if exists {
		return ErrRateLimited
	}
	return nil
}

// Record notes an accepted submission from origin. Call it only after the
// submission has been stored.
func (l *ContactRateLimiter) Record(ctx context.Context, origin string) error {
	if err := l.ledger.Record(ctx, origin, l.now().UTC()); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}
