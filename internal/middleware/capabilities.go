// internal/middleware/capabilities.go
package middleware

import (
	"net/http"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// Capability names one action a role may perform. Authorization is a closed
// role -> capability table instead of string comparisons scattered through
// handlers.
type Capability string

const (
	CapManageCampaigns Capability = "campaigns:manage"
	CapManageInvites   Capability = "invites:manage"
	CapManageSettings  Capability = "settings:manage"
	CapManageAssets    Capability = "assets:manage"
	CapViewReports     Capability = "reports:view"
	CapAttestSelf      Capability = "attestation:self"
)

var roleCapabilities = map[model.Role]map[Capability]bool{
	model.RoleAdmin: {
		CapManageCampaigns: true,
		CapManageInvites:   true,
		CapManageSettings:  true,
		CapManageAssets:    true,
		CapViewReports:     true,
		CapAttestSelf:      true,
	},
	model.RoleManager: {
		CapManageCampaigns: true,
		CapManageInvites:   true,
		CapViewReports:     true,
		CapAttestSelf:      true,
	},
	model.RoleEmployee: {
		CapAttestSelf: true,
	},
}

// Allowed reports whether the role grants the capability.
func Allowed(role model.Role, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// Authorize gates a route on one capability. Runs after Authenticate.
func Authorize(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			if !Allowed(user.Role, cap) {
				writeAuthError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
