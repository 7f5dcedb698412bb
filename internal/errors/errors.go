// internal/errors/errors.go
package appErrors

import "fmt"

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// Helper constructors
func NewCampaignNotFound(id int) error {
	return &NotFoundError{Entity: "campaign", Key: fmt.Sprintf("%d", id)}
}

func NewRecordNotFound(id int) error {
	return &NotFoundError{Entity: "attestation record", Key: fmt.Sprintf("%d", id)}
}

func NewUserNotFound(id int) error {
	return &NotFoundError{Entity: "user", Key: fmt.Sprintf("%d", id)}
}

func NewAssetNotFound(id int) error {
	return &NotFoundError{Entity: "asset", Key: fmt.Sprintf("%d", id)}
}

// InvalidTransitionError reports a campaign or record state machine
// violation. It carries both the current and the requested state.
type InvalidTransitionError struct {
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.Current, e.Requested)
}

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthnError reports a missing or invalid credential.
type AuthnError struct {
	Message string
}

func (e *AuthnError) Error() string { return e.Message }

// AuthzError reports an insufficient role or a closed gate.
type AuthzError struct {
	Message string
}

func (e *AuthzError) Error() string { return e.Message }

// UpstreamError wraps an external transport failure (SMTP, CRM API). It is
// logged or retried, never surfaced as a hard crash.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
