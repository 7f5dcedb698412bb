// internal/service/attestation_scheduler.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

// AttestationScheduler runs the recurring reminder, escalation, and
// auto-close passes over active campaigns. A pass is re-entrant: the
// sent-at stamps make a second run over the same data a no-op, so running
// more or less often than the nominal 24h cadence is safe.
type AttestationScheduler struct {
	Campaigns repository.CampaignRepositoryInterface
	Records   repository.RecordRepositoryInterface
	Users     repository.UserRepositoryInterface
	Lifecycle *LifecycleService
	Gateway   mailer.Gateway

	FrontendURL string
	// Interval between passes; zero means the 24h default.
	Interval time.Duration
	Log      *zap.SugaredLogger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

// DefaultInterval is the nominal pass cadence.
const DefaultInterval = 24 * time.Hour

// PassResult reports one scheduler pass. Success is false only when a whole
// sub-pass failed; individual send failures just stay unstamped and retry on
// the next pass.
type PassResult struct {
	Success         bool
	Err             error
	RemindersSent   int
	EscalationsSent int
	CampaignsClosed int
}

func (s *AttestationScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// daysSince is floor((now - start) / 1 day).
func daysSince(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return -1
	}
	return int(d / (24 * time.Hour))
}

// RunPass executes the reminder pass, then the escalation pass, then the
// auto-close pass. The passes inspect disjoint fields so ordering does not
// affect correctness, but auto-close runs last so a campaign is not closed
// before its final-day reminders fire. Each sub-pass catches its own error;
// one failing does not stop the others.
func (s *AttestationScheduler) RunPass() PassResult {
	now := s.now()
	res := PassResult{Success: true}

	if err := s.processReminders(&res, now); err != nil {
		s.Log.Errorw("reminder pass failed", "err", err)
		res.Success = false
		res.Err = err
	}
	if err := s.processEscalations(&res, now); err != nil {
		s.Log.Errorw("escalation pass failed", "err", err)
		res.Success = false
		if res.Err == nil {
			res.Err = err
		}
	}
	if err := s.autoCloseExpired(&res, now); err != nil {
		s.Log.Errorw("auto-close pass failed", "err", err)
		res.Success = false
		if res.Err == nil {
			res.Err = err
		}
	}
	return res
}

// processReminders emails employees with pending, un-reminded records once
// reminder_days have elapsed since campaign start. The stamp is written only
// after a successful send, so failures retry on the next pass.
func (s *AttestationScheduler) processReminders(res *PassResult, now time.Time) error {
	campaigns, err := s.Campaigns.GetByStatus(model.CampaignStatusActive)
	if err != nil {
		return err
	}

	for _, campaign := range campaigns {
		if daysSince(campaign.StartDate, now) < campaign.ReminderDays {
			continue
		}

		records, err := s.Records.GetByCampaignID(campaign.ID)
		if err != nil {
			return err
		}

		for _, rec := range records {
			if rec.Status != model.RecordStatusPending || rec.ReminderSentAt != nil {
				continue
			}
			user, err := s.Users.GetByID(rec.UserID)
			if err != nil {
				return err
			}
			if user == nil || user.Email == "" {
				continue
			}

			attestationURL := fmt.Sprintf("%s/my-attestations", s.FrontendURL)
			result := s.Gateway.SendReminderEmail(user.Email, campaign, attestationURL)
			if !result.Success {
				continue // unstamped, retried next pass
			}
			if err := s.Records.StampReminderSent(rec.ID, now); err != nil {
				return err
			}
			res.RemindersSent++
			s.Log.Infow("reminder sent", "email", user.Email, "campaign", campaign.Name)
		}
	}
	return nil
}

// processEscalations is symmetric to processReminders but gated on
// escalation_days and addressed to the employee's manager. Records whose
// user has no manager email are skipped silently.
func (s *AttestationScheduler) processEscalations(res *PassResult, now time.Time) error {
	campaigns, err := s.Campaigns.GetByStatus(model.CampaignStatusActive)
	if err != nil {
		return err
	}

	for _, campaign := range campaigns {
		if daysSince(campaign.StartDate, now) < campaign.EscalationDays {
			continue
		}

		records, err := s.Records.GetByCampaignID(campaign.ID)
		if err != nil {
			return err
		}

		for _, rec := range records {
			if rec.Status != model.RecordStatusPending || rec.EscalationSentAt != nil {
				continue
			}
			user, err := s.Users.GetByID(rec.UserID)
			if err != nil {
				return err
			}
			if user == nil || user.Email == "" || user.ManagerEmail == "" {
				continue
			}

			result := s.Gateway.SendEscalationEmail(user.ManagerEmail, user.DisplayName(), user.Email, campaign)
			if !result.Success {
				continue
			}
			if err := s.Records.StampEscalationSent(rec.ID, now); err != nil {
				return err
			}
			res.EscalationsSent++
			s.Log.Infow("escalation sent", "manager", user.ManagerEmail, "employee", user.Email, "campaign", campaign.Name)
		}
	}
	return nil
}

func (s *AttestationScheduler) autoCloseExpired(res *PassResult, now time.Time) error {
	campaigns, err := s.Campaigns.GetByStatus(model.CampaignStatusActive)
	if err != nil {
		return err
	}
	for _, campaign := range campaigns {
		closed, err := s.Lifecycle.AutoCloseExpired(campaign, now)
		if err != nil {
			return err
		}
		if closed {
			res.CampaignsClosed++
		}
	}
	return nil
}

// Run executes passes until the context is cancelled. Each successor is
// scheduled only after the current pass fully resolves; two passes never
// overlap within one process. Single-instance deployment is assumed — a
// second concurrent scheduler could double-send notifications.
func (s *AttestationScheduler) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.Log.Infow("attestation scheduler started", "interval", interval)
	for {
		res := s.RunPass()
		if res.Success {
			s.Log.Infow("scheduler pass completed",
				"reminders", res.RemindersSent, "escalations", res.EscalationsSent, "closed", res.CampaignsClosed)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Log.Info("attestation scheduler stopped")
			return
		case <-timer.C:
		}
	}
}
