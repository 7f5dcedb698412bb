// internal/model/user.go
package model

import "strings"

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID               int    `db:"id" json:"id"`
	Email            string `db:"email" json:"email"`
	PasswordHash     string `db:"password_hash" json:"-"`
	Name             string `db:"name" json:"name"`
	FirstName        string `db:"first_name" json:"first_name"`
	LastName         string `db:"last_name" json:"last_name"`
	Role             Role   `db:"role" json:"role"`
	ManagerFirstName string `db:"manager_first_name" json:"manager_first_name"`
	ManagerLastName  string `db:"manager_last_name" json:"manager_last_name"`
	ManagerEmail     string `db:"manager_email" json:"manager_email"`
}

// DisplayName prefers the split name fields and falls back to the legacy
// single name column.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Name
	}
	return full
}
