package model

import (
	"errors"
	"time"
)

// User represents an authentication user.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles, lowest to highest privilege.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin3   = "admin3"
	RoleAdmin2   = "admin2"
	RoleAdmin1   = "admin1"
)

// AllRoles lists every role in ascending privilege order.
var AllRoles = []string{RoleViewer, RoleOperator, RoleAdmin3, RoleAdmin2, RoleAdmin1}

var roleLevels = map[string]int{
	RoleViewer:   1,
	RoleOperator: 2,
	RoleAdmin3:   3,
	RoleAdmin2:   4,
	RoleAdmin1:   5,
}

// RoleLevel returns the numeric privilege level of a role, or 0 for unknown
// roles so they fail every comparison.
func RoleLevel(role string) int {
	return roleLevels[role]
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	if !ValidRole(role) || !ValidRole(minimum) {
		return false
	}
	return RoleLevel(role) >= RoleLevel(minimum)
}

// CanManage reports whether an actor role may add, edit, or delete a user
// holding the target role. The top role manages every level including its
// own; everyone else only manages strictly lower levels.
func CanManage(actor, target string) bool {
	if !ValidRole(actor) || !ValidRole(target) {
		return false
	}
	if actor == RoleAdmin1 {
		return true
	}
	return RoleLevel(target) < RoleLevel(actor)
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
