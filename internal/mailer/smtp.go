// internal/mailer/smtp.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/config"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

// SMTPMailer delivers notifications over plain SMTP or STARTTLS.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
	Log      *zap.SugaredLogger
}

func NewSMTPMailer(cfg *config.Config, log *zap.SugaredLogger) *SMTPMailer {
	return &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseTLS:   cfg.SMTPTLS,
		Log:      log,
	}
}

func (m *SMTPMailer) SendReminderEmail(toEmail string, campaign *model.Campaign, attestationURL string) SendResult {
	subject := fmt.Sprintf("Reminder: complete your attestation for %s", campaign.Name)
	body := fmt.Sprintf(
		"Hello,\n\nThis is a reminder that the attestation campaign %q requires your action.\n"+
			"Please review and confirm your assets here:\n\n%s\n",
		campaign.Name, attestationURL,
	)
	return m.send([]string{toEmail}, subject, body)
}

func (m *SMTPMailer) SendEscalationEmail(managerEmail, employeeName, employeeEmail string, campaign *model.Campaign) SendResult {
	subject := fmt.Sprintf("Escalation: %s has not completed attestation for %s", employeeName, campaign.Name)
	body := fmt.Sprintf(
		"Hello,\n\nYour report %s (%s) has not yet completed the attestation campaign %q.\n"+
			"Please follow up with them.\n",
		employeeName, employeeEmail, campaign.Name,
	)
	return m.send([]string{managerEmail}, subject, body)
}

func (m *SMTPMailer) SendAdminCompletionNotice(recipients []string, employeeName, employeeEmail string, campaign *model.Campaign) SendResult {
	subject := fmt.Sprintf("Attestation completed: %s (%s)", employeeName, campaign.Name)
	body := fmt.Sprintf(
		"Hello,\n\n%s (%s) has completed their attestation for campaign %q.\n",
		employeeName, employeeEmail, campaign.Name,
	)
	return m.send(recipients, subject, body)
}

func (m *SMTPMailer) SendRendered(recipients []string, subject, body string) SendResult {
	return m.send(recipients, subject, body)
}

func (m *SMTPMailer) send(to []string, subject, body string) SendResult {
	if err := m.sendMail(to, subject, body); err != nil {
		m.Log.Warnw("email delivery failed", "to", to, "subject", subject, "err", err)
		return SendResult{Success: false, Err: err}
	}
	return SendResult{Success: true}
}

// sendMail speaks SMTP directly so the STARTTLS path can carry dial and
// session deadlines; smtp.SendMail offers neither.
func (m *SMTPMailer) sendMail(to []string, subject, body string) error {
	if m.Host == "" || m.From == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	fromHeader := fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.FromName), m.From)
	var msg strings.Builder
	msg.WriteString("From: " + fromHeader + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if !m.UseTLS {
		return smtp.SendMail(addr, auth, m.From, to, []byte(msg.String()))
	}

	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return err
		}
	}
	if m.Username != "" {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(m.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

var _ Gateway = (*SMTPMailer)(nil)
