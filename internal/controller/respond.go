// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Unknown errors
// become an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *appErrors.ValidationError
		notFound   *appErrors.NotFoundError
		transition *appErrors.InvalidTransitionError
		authn      *appErrors.AuthnError
		authz      *appErrors.AuthzError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Message})
	case errors.As(err, &authn):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": authn.Message})
	case errors.As(err, &authz):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": authz.Message})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound.Error()})
	case errors.As(err, &transition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": transition.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
