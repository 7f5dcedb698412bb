// internal/mailer/mailer.go
package mailer

import (
	"fmt"

	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// SendResult reports a single delivery attempt. Delivery failure is data,
// not an error: callers decide whether to stamp, retry, or ignore.
type SendResult struct {
	Success bool
	Err     error
}

// Gateway abstracts the notification emails the attestation flows send.
// Implementations never panic or return a hard error for delivery failure.
type Gateway interface {
	SendReminderEmail(toEmail string, campaign *model.Campaign, attestationURL string) SendResult
	SendEscalationEmail(managerEmail, employeeName, employeeEmail string, campaign *model.Campaign) SendResult
	SendAdminCompletionNotice(recipients []string, employeeName, employeeEmail string, campaign *model.Campaign) SendResult

	// SendRendered delivers a message whose subject and body were rendered
	// and persisted at enqueue time (the invite pipeline).
	SendRendered(recipients []string, subject, body string) SendResult
}

// RenderInvite builds the subject and body for a campaign invite so the
// queue pipeline can persist them before delivery.
func RenderInvite(firstName, registrationURL string, campaign *model.Campaign) (subject, body string) {
	subject = fmt.Sprintf("Action required: register for %s", campaign.Name)
	greeting := "Hello"
	if firstName != "" {
		greeting = "Hello " + firstName
	}
	body = fmt.Sprintf(
		"%s,\n\nYou have been included in the attestation campaign %q.\n"+
			"Please register your account to confirm your asset inventory:\n\n%s\n\n"+
			"This link is personal to you and can be used once.\n",
		greeting, campaign.Name, registrationURL,
	)
	return subject, body
}
