package model

// Role is the reader/writer side an actor takes in an order conversation.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
)

// ParseRole maps a stored role string to a Role. Anything unknown is a customer.
func ParseRole(s string) Role {
	if Role(s) == RoleStaff {
		return RoleStaff
	}
	return RoleCustomer
}

// Actor is the authenticated caller of a messaging or order operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != ""
}

// IsStaff reports whether the actor acts on behalf of the business.
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}
