package model

import "time"

// OrderStatus is the lifecycle state of an order. Only staff change it.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a unit of work requested by a customer. It owns one conversation thread.
// AuthorID never changes after creation and LastActivityAt never moves backwards.
type Order struct {
	ID             string      `json:"id"`
	AuthorID       string      `json:"author_id"`
	Category       string      `json:"category"`
	Description    string      `json:"description"`
	Budget         string      `json:"budget,omitempty"`
	Deadline       string      `json:"deadline,omitempty"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	LastActivityAt time.Time   `json:"last_activity_at"`
}

// IsAuthor reports whether the actor placed this order.
func (o *Order) IsAuthor(a Actor) bool {
	return a.ID != "" && a.ID == o.AuthorID
}

// CanParticipate reports whether the actor may read or write the order's thread.
func (o *Order) CanParticipate(a Actor) bool {
	return o.IsAuthor(a) || (a.Authenticated() && a.IsStaff())
}

// OrderSummary is a list-view row: the order, its author's display name and the
// number of messages the viewing actor has not read yet.
type OrderSummary struct {
	Order
	AuthorName  string `json:"author_name,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// OrderListOptions carries pagination for order list views.
type OrderListOptions struct {
	Limit  int
	Offset int
}
