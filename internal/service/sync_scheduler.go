// internal/service/sync_scheduler.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/hubspot"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

// SyncFunc performs one external reconciliation run with the given
// credential. It may return a transport or auth error; partial per-item
// failures live inside the result instead.
type SyncFunc func(ctx context.Context, accessToken string, cursor *string) (*hubspot.SyncResult, error)

// SyncScheduler polls the sync settings and conditionally runs the external
// company sync, logging every real attempt. The shape is the same
// poll-settings/run/log/reschedule loop as the attestation scheduler, with
// "company sync" in place of "attestation records".
type SyncScheduler struct {
	Settings repository.SyncSettingsRepositoryInterface
	Logs     repository.SyncLogRepositoryInterface
	Sync     SyncFunc
	Log      *zap.SugaredLogger

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

// CycleResult reports one sync cycle. Skipped means the sync was disabled or
// unconfigured; no external call was made and no log row written.
type CycleResult struct {
	Success bool
	Skipped bool
	Err     error
	Result  *hubspot.SyncResult
}

// IntervalFor maps a sync interval name to a duration. Only "hourly" and
// "weekly" are recognized; everything else — "daily" included — is daily.
func IntervalFor(name string) time.Duration {
	switch name {
	case model.SyncIntervalHourly:
		return time.Hour
	case model.SyncIntervalWeekly:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

func (s *SyncScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RunSyncCycle reads the settings and, when sync is enabled with a
// configured credential, runs the external sync and records the outcome.
// A settings read failure is reported without a log row — there is no
// settings snapshot to attach one to.
func (s *SyncScheduler) RunSyncCycle(ctx context.Context) CycleResult {
	settings, err := s.Settings.Get()
	if err != nil {
		s.Log.Errorw("failed to read sync settings", "err", err)
		return CycleResult{Success: false, Err: err}
	}

	if !settings.Enabled || !settings.AutoSyncEnabled {
		s.Log.Debug("auto-sync is disabled, skipping")
		return CycleResult{Success: true, Skipped: true}
	}

	accessToken, err := s.Settings.GetAccessToken()
	if err != nil {
		s.Log.Errorw("failed to read access token", "err", err)
		return CycleResult{Success: false, Err: err}
	}
	if accessToken == "" {
		s.Log.Warn("access token is not configured, skipping auto-sync")
		return CycleResult{Success: true, Skipped: true}
	}

	s.Log.Info("starting scheduled sync")
	startedAt := s.now()

	result, syncErr := s.Sync(ctx, accessToken, nil)
	completedAt := s.now()

	if syncErr != nil {
		msg := syncErr.Error()
		if err := s.Logs.Insert(&model.SyncLog{
			StartedAt:    startedAt,
			CompletedAt:  completedAt,
			Status:       model.SyncStatusError,
			ErrorMessage: &msg,
		}); err != nil {
			s.Log.Errorw("failed to write sync log", "err", err)
			return CycleResult{Success: false, Err: err}
		}
		if err := s.Settings.UpdateSyncStatus(model.SyncStatusError, 0, completedAt); err != nil {
			s.Log.Errorw("failed to update sync status", "err", err)
			return CycleResult{Success: false, Err: err}
		}
		s.Log.Errorw("scheduled sync failed", "err", syncErr)
		return CycleResult{Success: false, Err: syncErr}
	}

	// Partial per-company errors ride along in the log row but do not flip
	// the cycle status.
	var errMsg *string
	if len(result.Errors) > 0 {
		if b, err := json.Marshal(result.Errors); err == nil {
			str := string(b)
			errMsg = &str
		}
	}

	if err := s.Logs.Insert(&model.SyncLog{
		StartedAt:        startedAt,
		CompletedAt:      completedAt,
		Status:           model.SyncStatusSuccess,
		CompaniesFound:   result.CompaniesFound,
		CompaniesCreated: result.CompaniesCreated,
		CompaniesUpdated: result.CompaniesUpdated,
		ErrorMessage:     errMsg,
	}); err != nil {
		s.Log.Errorw("failed to write sync log", "err", err)
		return CycleResult{Success: false, Err: err}
	}

	affected := result.CompaniesCreated + result.CompaniesUpdated
	if err := s.Settings.UpdateSyncStatus(model.SyncStatusSuccess, affected, completedAt); err != nil {
		s.Log.Errorw("failed to update sync status", "err", err)
		return CycleResult{Success: false, Err: err}
	}

	s.Log.Infow("scheduled sync completed",
		"found", result.CompaniesFound, "created", result.CompaniesCreated,
		"updated", result.CompaniesUpdated, "errors", len(result.Errors))
	return CycleResult{Success: true, Result: result}
}

// Run executes cycles until the context is cancelled. The settings are
// re-read after every cycle, so an interval change takes effect on the
// following iteration; a read failure falls back to a daily retry instead
// of halting the loop.
func (s *SyncScheduler) Run(ctx context.Context) {
	s.Log.Info("sync scheduler started")
	for {
		s.RunSyncCycle(ctx)

		interval := 24 * time.Hour
		if settings, err := s.Settings.Get(); err != nil {
			s.Log.Errorw("failed to read settings for scheduling, defaulting to daily", "err", err)
		} else {
			interval = IntervalFor(settings.SyncInterval)
			s.Log.Debugw("scheduling next sync", "interval", settings.SyncInterval, "duration", interval)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Log.Info("sync scheduler stopped")
			return
		case <-timer.C:
		}
	}
}
