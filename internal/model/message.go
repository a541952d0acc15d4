package model

import "time"

// Message is one entry of an order's conversation. Content is immutable once
// stored; only the two read flags change afterwards.
type Message struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	SenderID         string    `json:"sender_id"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"created_at"`
	IsReadByStaff    bool      `json:"is_read_by_staff"`
	IsReadByCustomer bool      `json:"is_read_by_customer"`
}

// NewMessage builds a message authored by sender. The flag matching the
// sender's own role starts true, the other one false.
func NewMessage(sender Actor, orderID, content string, at time.Time) *Message {
	staff := sender.IsStaff()
	return &Message{
		OrderID:          orderID,
		SenderID:         sender.ID,
		Content:          content,
		CreatedAt:        at,
		IsReadByStaff:    staff,
		IsReadByCustomer: !staff,
	}
}

// ReadBy returns the read flag belonging to role.
func (m *Message) ReadBy(role Role) bool {
	if role == RoleStaff {
		return m.IsReadByStaff
	}
	return m.IsReadByCustomer
}

// UnreadFor reports whether reader still has to see this message.
// Messages the reader wrote never count.
func (m *Message) UnreadFor(reader Actor) bool {
	return m.SenderID != reader.ID && !m.ReadBy(reader.Role)
}
