// internal/model/auth_settings.go
package model

// AuthSettings gates self-service registration and password login. Both
// default to enabled when no row exists yet.
type AuthSettings struct {
	RegistrationEnabled  bool `db:"registration_enabled" json:"registration_enabled"`
	PasswordLoginEnabled bool `db:"password_login_enabled" json:"password_login_enabled"`
}
