package model

import "time"

// Customer represents a customer that serial units can be assigned to.
// The ID is externally supplied (typically a 4-digit PIN) and immutable.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CustomerUpdate enumerates the mutable customer fields.
// Nil fields are left unchanged.
type CustomerUpdate struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}
