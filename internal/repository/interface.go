package repository

import (
	"context"
	"time"

	"github.com/orderdesk/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository resolves stored accounts. Account management lives elsewhere;
// the API only needs to know who a session belongs to and which role it has.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// OrderRepository persists orders and produces the list views.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
	// ListAll returns every order, most recently active first, with the
	// reader's unread count per order.
	ListAll(ctx context.Context, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error)
	// ListByAuthor is ListAll restricted to orders placed by authorID.
	ListByAuthor(ctx context.Context, authorID string, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error)
}

// MessageRepository is the per-order message log.
type MessageRepository interface {
	// Append stores msg and moves the owning order's last_activity_at to
	// msg.CreatedAt in one transaction. ErrNotFound when the order is gone.
	Append(ctx context.Context, msg *model.Message) error
	// ListByOrder returns the thread oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]*model.Message, error)
	// MarkRead sets role's read flag on every message of the order that the
	// reader did not write and has not read. Returns the number of rows changed.
	MarkRead(ctx context.Context, orderID, readerID string, role model.Role) (int64, error)
	// CountUnread counts with the same predicate MarkRead clears.
	CountUnread(ctx context.Context, orderID, readerID string, role model.Role) (int, error)
}

// ContactRepository defines the persistence interface for contact messages.
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SubmissionLedger records accepted contact submissions per network origin.
type SubmissionLedger interface {
	// ExistsSince reports whether origin has a submission at or after since.
	ExistsSince(ctx context.Context, origin string, since time.Time) (bool, error)
	Record(ctx context.Context, origin string, at time.Time) error
}

// NewsletterRepository stores newsletter sign-ups.
type NewsletterRepository interface {
	// Subscribe inserts sub and fills ID and CreatedAt. ErrAlreadyExists when
	// the email is already on the list.
	Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error
}
