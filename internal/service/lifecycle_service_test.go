package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type lifecycleFixture struct {
	campaigns *mockCampaignRepo
	records   *mockRecordRepo
	users     *mockUserRepo
	invites   *mockInviteRepo
	outbound  *mockOutboundRepo
	audit     *mockAuditRepo
	queue     *mockQueue
	gateway   *mockGateway
	svc       *LifecycleService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		campaigns: newMockCampaignRepo(),
		records:   newMockRecordRepo(),
		users:     newMockUserRepo(),
		invites:   newMockInviteRepo(),
		outbound:  newMockOutboundRepo(),
		audit:     &mockAuditRepo{},
		queue:     &mockQueue{},
		gateway:   &mockGateway{},
	}
	f.svc = &LifecycleService{
		Campaigns:   f.campaigns,
		Records:     f.records,
		Users:       f.users,
		Invites:     f.invites,
		Outbound:    f.outbound,
		Audit:       f.audit,
		Queue:       f.queue,
		Gateway:     f.gateway,
		FrontendURL: "http://localhost:3000",
		Log:         zap.NewNop().Sugar(),
	}
	return f
}

func (f *lifecycleFixture) draftCampaign() *model.Campaign {
	c := &model.Campaign{
		Name:      "Q3 Hardware Attestation",
		StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:    model.CampaignStatusDraft,
		CreatedBy: 1,
	}
	f.campaigns.Create(c)
	return c
}

func TestStartCreatesRecordsPerEmployee(t *testing.T) {
	f := newLifecycleFixture()
	f.users.add(&model.User{Email: "admin@example.com", Role: model.RoleAdmin})
	f.users.add(&model.User{Email: "eli@example.com", Role: model.RoleEmployee})
	f.users.add(&model.User{Email: "june@example.com", Role: model.RoleEmployee})
	c := f.draftCampaign()

	res, err := f.svc.Start(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsCreated != 2 {
		t.Fatalf("expected 2 records (employees only), got %d", res.RecordsCreated)
	}
	if c.Status != model.CampaignStatusActive {
		t.Fatalf("campaign status = %q", c.Status)
	}
	recs, _ := f.records.GetByCampaignID(c.ID)
	for _, rec := range recs {
		if rec.Status != model.RecordStatusPending {
			t.Fatalf("new record status = %q", rec.Status)
		}
	}
}

func TestStartRejectsNonDraft(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()
	c.Status = model.CampaignStatusActive

	_, err := f.svc.Start(c.ID)
	var transition *appErrors.InvalidTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transition.Current != model.CampaignStatusActive {
		t.Fatalf("transition current = %q", transition.Current)
	}
}

func TestStartQueuesUnconsumedInvites(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()
	f.invites.Create(&model.PendingInvite{CampaignID: c.ID, EmployeeEmail: "new@example.com", InviteToken: "tok-1"})
	consumed := time.Now()
	f.invites.Create(&model.PendingInvite{CampaignID: c.ID, EmployeeEmail: "old@example.com", InviteToken: "tok-2", RegisteredAt: &consumed})

	res, err := f.svc.Start(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.InvitesQueued != 1 {
		t.Fatalf("expected 1 invite queued, got %d", res.InvitesQueued)
	}
	if len(f.queue.published) != 1 {
		t.Fatalf("expected 1 published job, got %d", len(f.queue.published))
	}

	// The rendered message was persisted before publish.
	id := f.queue.published[0].(int)
	msg, _ := f.outbound.GetByID(id)
	if msg == nil || msg.Recipient != "new@example.com" || msg.Kind != model.EmailKindInvite {
		t.Fatalf("unexpected outbound row %+v", msg)
	}
	if msg.Subject == "" || msg.Body == "" {
		t.Fatal("rendered subject and body must be stored on the row")
	}
}

func TestCancelOnlyActive(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()

	if err := f.svc.Cancel(c.ID); err == nil {
		t.Fatal("cancel of a draft campaign must fail")
	}

	c.Status = model.CampaignStatusActive
	if err := f.svc.Cancel(c.ID); err != nil {
		t.Fatal(err)
	}
	if c.Status != model.CampaignStatusCancelled {
		t.Fatalf("campaign status = %q", c.Status)
	}

	// Terminal: cannot cancel again.
	if err := f.svc.Cancel(c.ID); err == nil {
		t.Fatal("cancel of a cancelled campaign must fail")
	}
}

func TestStartRecordOwnership(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()
	owner := f.users.add(&model.User{Email: "eli@example.com", Role: model.RoleEmployee})
	other := f.users.add(&model.User{Email: "june@example.com", Role: model.RoleEmployee})
	rec := &model.AttestationRecord{CampaignID: c.ID, UserID: owner.ID}
	f.records.Create(rec)

	if err := f.svc.StartRecord(rec.ID, other); err == nil {
		t.Fatal("another employee must not start someone else's record")
	}
	if err := f.svc.StartRecord(rec.ID, owner); err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.RecordStatusInProgress {
		t.Fatalf("record status = %q", rec.Status)
	}

	// Already in progress: pending is the only valid source state.
	if err := f.svc.StartRecord(rec.ID, owner); err == nil {
		t.Fatal("expected transition error on second start")
	}
}

func TestCompleteRecordNotifiesCreator(t *testing.T) {
	f := newLifecycleFixture()
	creator := f.users.add(&model.User{Email: "admin@example.com", Role: model.RoleAdmin})
	emp := f.users.add(&model.User{Email: "eli@example.com", FirstName: "Eli", LastName: "Otieno", Role: model.RoleEmployee})

	c := f.draftCampaign()
	c.CreatedBy = creator.ID
	rec := &model.AttestationRecord{CampaignID: c.ID, UserID: emp.ID}
	f.records.Create(rec)

	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time { return fixed }

	if err := f.svc.CompleteRecord(rec.ID, emp); err != nil {
		t.Fatal(err)
	}
	if rec.Status != model.RecordStatusCompleted {
		t.Fatalf("record status = %q", rec.Status)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(fixed) {
		t.Fatalf("completed_at = %v", rec.CompletedAt)
	}

	if len(f.gateway.sent) != 1 || f.gateway.sent[0].kind != "completion" {
		t.Fatalf("expected one completion notice, got %+v", f.gateway.sent)
	}
	if f.gateway.sent[0].recipients[0] != "admin@example.com" {
		t.Fatalf("completion notice went to %v", f.gateway.sent[0].recipients)
	}

	// Completing twice is a conflict.
	if err := f.svc.CompleteRecord(rec.ID, emp); err == nil {
		t.Fatal("expected transition error on double complete")
	}
}

func TestCompleteRecordFallsBackToAdmins(t *testing.T) {
	f := newLifecycleFixture()
	f.users.add(&model.User{Email: "admin1@example.com", Role: model.RoleAdmin})
	f.users.add(&model.User{Email: "admin2@example.com", Role: model.RoleAdmin})
	emp := f.users.add(&model.User{Email: "eli@example.com", Role: model.RoleEmployee})

	c := f.draftCampaign()
	c.CreatedBy = 99 // deleted user
	rec := &model.AttestationRecord{CampaignID: c.ID, UserID: emp.ID}
	f.records.Create(rec)

	if err := f.svc.CompleteRecord(rec.ID, emp); err != nil {
		t.Fatal(err)
	}
	if len(f.gateway.sent) != 1 || len(f.gateway.sent[0].recipients) != 2 {
		t.Fatalf("expected notice to both admins, got %+v", f.gateway.sent)
	}
}

func TestCompleteRecordSurvivesNotificationFailure(t *testing.T) {
	f := newLifecycleFixture()
	creator := f.users.add(&model.User{Email: "admin@example.com", Role: model.RoleAdmin})
	emp := f.users.add(&model.User{Email: "eli@example.com", Role: model.RoleEmployee})
	c := f.draftCampaign()
	c.CreatedBy = creator.ID
	rec := &model.AttestationRecord{CampaignID: c.ID, UserID: emp.ID}
	f.records.Create(rec)

	f.gateway.fail = true
	if err := f.svc.CompleteRecord(rec.ID, emp); err != nil {
		t.Fatalf("notification failure must not fail the completion: %v", err)
	}
	if rec.Status != model.RecordStatusCompleted {
		t.Fatalf("record status = %q", rec.Status)
	}
}

func TestCreateInviteRejectsTerminalCampaign(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()
	c.Status = model.CampaignStatusCancelled

	_, err := f.svc.CreateInvite(c.ID, "new@example.com", "New", "Hire")
	var validation *appErrors.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateInviteOnActiveCampaignQueuesImmediately(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()
	c.Status = model.CampaignStatusActive

	inv, err := f.svc.CreateInvite(c.ID, "new@example.com", "New", "Hire")
	if err != nil {
		t.Fatal(err)
	}
	if inv.InviteToken == "" {
		t.Fatal("invite token must be generated")
	}
	if len(f.queue.published) != 1 {
		t.Fatalf("expected immediate enqueue on active campaign, got %d jobs", len(f.queue.published))
	}
}

func TestCreateInviteOnDraftCampaignDefersSend(t *testing.T) {
	f := newLifecycleFixture()
	c := f.draftCampaign()

	if _, err := f.svc.CreateInvite(c.ID, "new@example.com", "New", "Hire"); err != nil {
		t.Fatal(err)
	}
	if len(f.queue.published) != 0 {
		t.Fatal("draft campaign invite must wait for start")
	}

	res, err := f.svc.Start(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.InvitesQueued != 1 {
		t.Fatalf("expected deferred invite to queue at start, got %d", res.InvitesQueued)
	}
}
