package service

import (
	"errors"
	"time"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

var errSendFailed = errors.New("send failed")

func errCampaignNotFound(id int) error { return appErrors.NewCampaignNotFound(id) }
func errRecordNotFound(id int) error   { return appErrors.NewRecordNotFound(id) }

// Hand-written in-memory fakes for the repository interfaces.

type mockCampaignRepo struct {
	campaigns map[int]*model.Campaign
	nextID    int
	statsByID map[int]map[string]int
	updateErr error
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{campaigns: map[int]*model.Campaign{}, statsByID: map[int]map[string]int{}, nextID: 1}
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	c.ID = m.nextID
	m.nextID++
	m.campaigns[c.ID] = c
	return nil
}

func (m *mockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	c, ok := m.campaigns[id]
	if !ok {
		return nil, errCampaignNotFound(id)
	}
	return c, nil
}

func (m *mockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *mockCampaignRepo) GetByStatus(status string) ([]*model.Campaign, error) {
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCampaignRepo) UpdateStatus(campaignID int, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	c, ok := m.campaigns[campaignID]
	if !ok {
		return errCampaignNotFound(campaignID)
	}
	c.Status = status
	return nil
}

func (m *mockCampaignRepo) Delete(id int) error {
	delete(m.campaigns, id)
	return nil
}

func (m *mockCampaignRepo) GetRecordStats(campaignID int) (map[string]int, error) {
	return m.statsByID[campaignID], nil
}

type mockRecordRepo struct {
	records  map[int]*model.AttestationRecord
	nextID   int
	stampErr error
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{records: map[int]*model.AttestationRecord{}, nextID: 1}
}

func (m *mockRecordRepo) Create(rec *model.AttestationRecord) error {
	rec.ID = m.nextID
	m.nextID++
	if rec.Status == "" {
		rec.Status = model.RecordStatusPending
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *mockRecordRepo) GetByID(id int) (*model.AttestationRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, errRecordNotFound(id)
	}
	return rec, nil
}

func (m *mockRecordRepo) GetByCampaignID(campaignID int) ([]*model.AttestationRecord, error) {
	var out []*model.AttestationRecord
	for _, rec := range m.records {
		if rec.CampaignID == campaignID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRecordRepo) GetByUserID(userID int) ([]*model.AttestationRecord, error) {
	var out []*model.AttestationRecord
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockRecordRepo) UpdateStatus(id int, status string, completedAt *time.Time) error {
	rec, ok := m.records[id]
	if !ok {
		return errRecordNotFound(id)
	}
	rec.Status = status
	rec.CompletedAt = completedAt
	return nil
}

func (m *mockRecordRepo) StampReminderSent(id int, at time.Time) error {
	if m.stampErr != nil {
		return m.stampErr
	}
	rec, ok := m.records[id]
	if !ok {
		return errRecordNotFound(id)
	}
	if rec.ReminderSentAt == nil {
		t := at
		rec.ReminderSentAt = &t
	}
	return nil
}

func (m *mockRecordRepo) StampEscalationSent(id int, at time.Time) error {
	rec, ok := m.records[id]
	if !ok {
		return errRecordNotFound(id)
	}
	if rec.EscalationSentAt == nil {
		t := at
		rec.EscalationSentAt = &t
	}
	return nil
}

type mockUserRepo struct {
	users  map[int]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int]*model.User{}, nextID: 1}
}

func (m *mockUserRepo) add(u *model.User) *model.User {
	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) GetByID(id int) (*model.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByEmail(email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) GetByRole(role model.Role) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListAll() ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Create(u *model.User) error {
	m.add(u)
	return nil
}

type mockInviteRepo struct {
	invites map[int]*model.PendingInvite
	nextID  int
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{invites: map[int]*model.PendingInvite{}, nextID: 1}
}

func (m *mockInviteRepo) Create(inv *model.PendingInvite) error {
	inv.ID = m.nextID
	m.nextID++
	m.invites[inv.ID] = inv
	return nil
}

func (m *mockInviteRepo) GetByToken(token string) (*model.PendingInvite, error) {
	for _, inv := range m.invites {
		if inv.InviteToken == token {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInviteRepo) GetByCampaignID(campaignID int) ([]*model.PendingInvite, error) {
	var out []*model.PendingInvite
	for _, inv := range m.invites {
		if inv.CampaignID == campaignID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInviteRepo) MarkRegistered(id int, at time.Time) error {
	inv, ok := m.invites[id]
	if !ok {
		return nil
	}
	if inv.RegisteredAt == nil {
		t := at
		inv.RegisteredAt = &t
	}
	return nil
}

type mockOutboundRepo struct {
	emails map[int]*model.OutboundEmail
	nextID int
}

func newMockOutboundRepo() *mockOutboundRepo {
	return &mockOutboundRepo{emails: map[int]*model.OutboundEmail{}, nextID: 1}
}

func (m *mockOutboundRepo) Create(msg *model.OutboundEmail) error {
	msg.ID = m.nextID
	m.nextID++
	if msg.Status == "" {
		msg.Status = model.EmailStatusPending
	}
	m.emails[msg.ID] = msg
	return nil
}

func (m *mockOutboundRepo) GetByID(id int) (*model.OutboundEmail, error) {
	return m.emails[id], nil
}

func (m *mockOutboundRepo) UpdateStatus(id int, status, lastError string) error {
	msg, ok := m.emails[id]
	if !ok {
		return nil
	}
	msg.Status = status
	msg.LastError = lastError
	return nil
}

type mockAuditRepo struct {
	entries []model.AuditEntry
}

func (m *mockAuditRepo) Log(entry *model.AuditEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(limit int) ([]model.AuditEntry, error) {
	return m.entries, nil
}

type mockQueue struct {
	published []any
	err       error
}

func (m *mockQueue) Publish(topic string, payload any) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, payload)
	return nil
}

func (m *mockQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

// sentMail records one gateway call.
type sentMail struct {
	kind       string
	recipients []string
	subject    string
}

// mockGateway records sends and can be told to fail.
type mockGateway struct {
	sent []sentMail
	fail bool
}

func (m *mockGateway) result() mailer.SendResult {
	if m.fail {
		return mailer.SendResult{Success: false, Err: errSendFailed}
	}
	return mailer.SendResult{Success: true}
}

func (m *mockGateway) SendReminderEmail(toEmail string, campaign *model.Campaign, attestationURL string) mailer.SendResult {
	if !m.fail {
		m.sent = append(m.sent, sentMail{kind: "reminder", recipients: []string{toEmail}})
	}
	return m.result()
}

func (m *mockGateway) SendEscalationEmail(managerEmail, employeeName, employeeEmail string, campaign *model.Campaign) mailer.SendResult {
	if !m.fail {
		m.sent = append(m.sent, sentMail{kind: "escalation", recipients: []string{managerEmail}})
	}
	return m.result()
}

func (m *mockGateway) SendAdminCompletionNotice(recipients []string, employeeName, employeeEmail string, campaign *model.Campaign) mailer.SendResult {
	if !m.fail {
		m.sent = append(m.sent, sentMail{kind: "completion", recipients: recipients})
	}
	return m.result()
}

func (m *mockGateway) SendRendered(recipients []string, subject, body string) mailer.SendResult {
	if !m.fail {
		m.sent = append(m.sent, sentMail{kind: "rendered", recipients: recipients, subject: subject})
	}
	return m.result()
}
