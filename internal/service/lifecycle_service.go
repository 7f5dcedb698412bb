// internal/service/lifecycle_service.go
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/queue"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

// LifecycleService enforces the campaign state machine:
// draft -> active -> completed | cancelled. Completed and cancelled are
// terminal.
type LifecycleService struct {
	Campaigns repository.CampaignRepositoryInterface
	Records   repository.RecordRepositoryInterface
	Users     repository.UserRepositoryInterface
	Invites   repository.InviteRepositoryInterface
	Outbound  repository.OutboundEmailRepositoryInterface
	Audit     repository.AuditRepositoryInterface
	Queue     queue.Queue
	Gateway   mailer.Gateway

	FrontendURL string
	Log         *zap.SugaredLogger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *LifecycleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StartResult reports what a campaign start produced.
type StartResult struct {
	CampaignID     int `json:"campaign_id"`
	RecordsCreated int `json:"records_created"`
	InvitesQueued  int `json:"invites_queued"`
}

// Start activates a draft campaign: one pending attestation record per
// employee, invite emails queued for not-yet-registered employees.
func (s *LifecycleService) Start(campaignID int) (*StartResult, error) {
	campaign, err := s.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != model.CampaignStatusDraft {
		return nil, &appErrors.InvalidTransitionError{Current: campaign.Status, Requested: model.CampaignStatusActive}
	}

	employees, err := s.Users.GetByRole(model.RoleEmployee)
	if err != nil {
		return nil, err
	}

	result := &StartResult{CampaignID: campaignID}
	for _, emp := range employees {
		rec := &model.AttestationRecord{CampaignID: campaignID, UserID: emp.ID}
		if err := s.Records.Create(rec); err != nil {
			s.Log.Warnw("failed to create attestation record", "campaign_id", campaignID, "user_id", emp.ID, "err", err)
			continue
		}
		result.RecordsCreated++
	}

	if err := s.Campaigns.UpdateStatus(campaignID, model.CampaignStatusActive); err != nil {
		return result, err
	}
	campaign.Status = model.CampaignStatusActive

	invites, err := s.Invites.GetByCampaignID(campaignID)
	if err != nil {
		s.Log.Warnw("failed to load pending invites", "campaign_id", campaignID, "err", err)
	} else {
		for _, inv := range invites {
			if inv.RegisteredAt != nil {
				continue
			}
			if err := s.enqueueInvite(campaign, inv); err != nil {
				s.Log.Warnw("failed to enqueue invite", "invite_id", inv.ID, "err", err)
				continue
			}
			result.InvitesQueued++
		}
	}

	_ = s.Audit.Log(&model.AuditEntry{
		Action: "campaign.start",
		Entity: campaign.Name,
		Detail: fmt.Sprintf("%d records created, %d invites queued", result.RecordsCreated, result.InvitesQueued),
	})
	return result, nil
}

// Cancel stops an active campaign. Its records stop receiving reminders and
// escalations because the scheduler only visits active campaigns.
func (s *LifecycleService) Cancel(campaignID int) error {
	campaign, err := s.Campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status != model.CampaignStatusActive {
		return &appErrors.InvalidTransitionError{Current: campaign.Status, Requested: model.CampaignStatusCancelled}
	}
	if err := s.Campaigns.UpdateStatus(campaignID, model.CampaignStatusCancelled); err != nil {
		return err
	}
	_ = s.Audit.Log(&model.AuditEntry{Action: "campaign.cancel", Entity: campaign.Name})
	return nil
}

// StartRecord moves an employee's own record from pending to in_progress.
func (s *LifecycleService) StartRecord(recordID int, actor *model.User) error {
	rec, err := s.Records.GetByID(recordID)
	if err != nil {
		return err
	}
	if rec.UserID != actor.ID && actor.Role != model.RoleAdmin {
		return &appErrors.AuthzError{Message: "You can only update your own attestation record"}
	}
	if rec.Status != model.RecordStatusPending {
		return &appErrors.InvalidTransitionError{Current: rec.Status, Requested: model.RecordStatusInProgress}
	}
	return s.Records.UpdateStatus(recordID, model.RecordStatusInProgress, nil)
}

// CompleteRecord finishes an attestation record and notifies the campaign
// creator, falling back to all admins when the creator no longer exists.
// Notification failure never fails the completion.
func (s *LifecycleService) CompleteRecord(recordID int, completedBy *model.User) error {
	rec, err := s.Records.GetByID(recordID)
	if err != nil {
		return err
	}
	if rec.UserID != completedBy.ID && completedBy.Role != model.RoleAdmin {
		return &appErrors.AuthzError{Message: "You can only complete your own attestation record"}
	}
	if rec.Status == model.RecordStatusCompleted {
		return &appErrors.InvalidTransitionError{Current: rec.Status, Requested: model.RecordStatusCompleted}
	}

	completedAt := s.now()
	if err := s.Records.UpdateStatus(recordID, model.RecordStatusCompleted, &completedAt); err != nil {
		return err
	}

	campaign, err := s.Campaigns.GetByID(rec.CampaignID)
	if err != nil {
		// Record is completed; the notification is best-effort on top.
		s.Log.Warnw("completed record but could not load campaign for notification", "record_id", recordID, "err", err)
		return nil
	}

	recipients := s.completionRecipients(campaign)
	if len(recipients) > 0 {
		result := s.Gateway.SendAdminCompletionNotice(recipients, completedBy.DisplayName(), completedBy.Email, campaign)
		if !result.Success {
			s.Log.Warnw("completion notice delivery failed", "record_id", recordID, "recipients", recipients, "err", result.Err)
		}
	}

	_ = s.Audit.Log(&model.AuditEntry{
		Actor:  completedBy.Email,
		Action: "attestation.complete",
		Entity: campaign.Name,
		Detail: fmt.Sprintf("record %d", recordID),
	})
	return nil
}

// completionRecipients resolves who hears about a completion: the campaign
// creator, or every admin when the creator has been deleted.
func (s *LifecycleService) completionRecipients(campaign *model.Campaign) []string {
	creator, err := s.Users.GetByID(campaign.CreatedBy)
	if err != nil {
		s.Log.Warnw("creator lookup failed", "campaign_id", campaign.ID, "err", err)
	}
	if creator != nil && creator.Email != "" {
		return []string{creator.Email}
	}

	admins, err := s.Users.GetByRole(model.RoleAdmin)
	if err != nil {
		s.Log.Warnw("admin lookup failed", "campaign_id", campaign.ID, "err", err)
		return nil
	}
	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			recipients = append(recipients, a.Email)
		}
	}
	return recipients
}

// AutoCloseExpired completes an active campaign whose end date has passed.
// Idempotent: anything not active (or without an end date in the past) is a
// no-op.
func (s *LifecycleService) AutoCloseExpired(campaign *model.Campaign, now time.Time) (bool, error) {
	if campaign.Status != model.CampaignStatusActive || !campaign.Expired(now) {
		return false, nil
	}
	if err := s.Campaigns.UpdateStatus(campaign.ID, model.CampaignStatusCompleted); err != nil {
		return false, err
	}
	campaign.Status = model.CampaignStatusCompleted
	s.Log.Infow("campaign auto-closed", "campaign_id", campaign.ID, "name", campaign.Name)
	return true, nil
}

// CreateInvite registers a campaign-scoped invite for a not-yet-registered
// employee. When the campaign is already active the invite email is queued
// immediately; for a draft campaign it goes out at start.
func (s *LifecycleService) CreateInvite(campaignID int, email, firstName, lastName string) (*model.PendingInvite, error) {
	if email == "" {
		return nil, appErrors.NewValidation("employee_email is required")
	}
	campaign, err := s.Campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == model.CampaignStatusCompleted || campaign.Status == model.CampaignStatusCancelled {
		return nil, appErrors.NewValidation("cannot invite into a %s campaign", campaign.Status)
	}

	inv := &model.PendingInvite{
		CampaignID:        campaignID,
		EmployeeEmail:     email,
		EmployeeFirstName: firstName,
		EmployeeLastName:  lastName,
		InviteToken:       uuid.NewString(),
	}
	if err := s.Invites.Create(inv); err != nil {
		return nil, err
	}

	if campaign.Status == model.CampaignStatusActive {
		if err := s.enqueueInvite(campaign, inv); err != nil {
			s.Log.Warnw("failed to enqueue invite", "invite_id", inv.ID, "err", err)
		}
	}
	return inv, nil
}

func (s *LifecycleService) enqueueInvite(campaign *model.Campaign, inv *model.PendingInvite) error {
	registrationURL := fmt.Sprintf("%s/register?invite=%s", s.FrontendURL, inv.InviteToken)
	subject, body := mailer.RenderInvite(inv.EmployeeFirstName, registrationURL, campaign)

	msg := &model.OutboundEmail{
		CampaignID: campaign.ID,
		Recipient:  inv.EmployeeEmail,
		Kind:       model.EmailKindInvite,
		Subject:    subject,
		Body:       body,
	}
	if err := s.Outbound.Create(msg); err != nil {
		return err
	}
	return s.Queue.Publish(queue.TopicInviteSends, msg.ID)
}
