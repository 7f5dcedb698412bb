package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/hubspot"
	"github.com/mkanyali/assetcomply-backend/internal/model"
)

type mockSyncSettingsRepo struct {
	settings   model.SyncSettings
	token      string
	getErr     error
	lastStatus string
	lastCount  int
}

func (m *mockSyncSettingsRepo) Get() (*model.SyncSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSyncSettingsRepo) Update(s *model.SyncSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSyncSettingsRepo) GetAccessToken() (string, error) { return m.token, nil }
func (m *mockSyncSettingsRepo) SetAccessToken(token string) error {
	m.token = token
	return nil
}

func (m *mockSyncSettingsRepo) UpdateSyncStatus(status string, count int, at time.Time) error {
	m.lastStatus = status
	m.lastCount = count
	return nil
}

type mockSyncLogRepo struct {
	logs []model.SyncLog
}

func (m *mockSyncLogRepo) Insert(l *model.SyncLog) error {
	l.ID = len(m.logs) + 1
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockSyncLogRepo) List(limit int) ([]model.SyncLog, error) { return m.logs, nil }

func newSyncScheduler(settings *mockSyncSettingsRepo, logs *mockSyncLogRepo, sync SyncFunc) *SyncScheduler {
	return &SyncScheduler{
		Settings: settings,
		Logs:     logs,
		Sync:     sync,
		Log:      zap.NewNop().Sugar(),
	}
}

func TestSyncCycleSkipsWhenDisabled(t *testing.T) {
	settings := &mockSyncSettingsRepo{
		settings: model.SyncSettings{Enabled: false, AutoSyncEnabled: true, SyncInterval: model.SyncIntervalDaily},
		token:    "tok",
	}
	logs := &mockSyncLogRepo{}
	called := false
	s := newSyncScheduler(settings, logs, func(ctx context.Context, token string, cursor *string) (*hubspot.SyncResult, error) {
		called = true
		return &hubspot.SyncResult{}, nil
	})

	res := s.RunSyncCycle(context.Background())
	if !res.Success || !res.Skipped {
		t.Fatalf("expected skipped cycle, got %+v", res)
	}
	if called {
		t.Fatal("sync must not run while disabled")
	}
	// A skipped cycle leaves no trace in the log.
	if len(logs.logs) != 0 {
		t.Fatalf("expected no log rows, got %d", len(logs.logs))
	}
}

func TestSyncCycleSkipsWithoutToken(t *testing.T) {
	settings := &mockSyncSettingsRepo{
		settings: model.SyncSettings{Enabled: true, AutoSyncEnabled: true, SyncInterval: model.SyncIntervalDaily},
	}
	logs := &mockSyncLogRepo{}
	s := newSyncScheduler(settings, logs, func(ctx context.Context, token string, cursor *string) (*hubspot.SyncResult, error) {
		t.Fatal("sync must not run without a token")
		return nil, nil
	})

	res := s.RunSyncCycle(context.Background())
	if !res.Skipped || len(logs.logs) != 0 {
		t.Fatalf("expected silent skip, got %+v with %d logs", res, len(logs.logs))
	}
}

func TestSyncCycleSuccessLogsCounts(t *testing.T) {
	settings := &mockSyncSettingsRepo{
		settings: model.SyncSettings{Enabled: true, AutoSyncEnabled: true, SyncInterval: model.SyncIntervalDaily},
		token:    "tok",
	}
	logs := &mockSyncLogRepo{}
	s := newSyncScheduler(settings, logs, func(ctx context.Context, token string, cursor *string) (*hubspot.SyncResult, error) {
		return &hubspot.SyncResult{
			CompaniesFound:   5,
			CompaniesCreated: 2,
			CompaniesUpdated: 1,
			Errors:           []string{"company 42: missing name"},
		}, nil
	})

	res := s.RunSyncCycle(context.Background())
	if !res.Success || res.Skipped {
		t.Fatalf("expected successful cycle, got %+v", res)
	}

	if len(logs.logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs.logs))
	}
	row := logs.logs[0]
	if row.Status != model.SyncStatusSuccess || row.CompaniesFound != 5 || row.CompaniesCreated != 2 || row.CompaniesUpdated != 1 {
		t.Fatalf("unexpected log row %+v", row)
	}
	// Partial errors ride along serialized, without flipping the status.
	if row.ErrorMessage == nil || !strings.Contains(*row.ErrorMessage, "missing name") {
		t.Fatalf("expected serialized partial errors, got %v", row.ErrorMessage)
	}
	if settings.lastStatus != model.SyncStatusSuccess || settings.lastCount != 3 {
		t.Fatalf("settings status = %q count = %d", settings.lastStatus, settings.lastCount)
	}
}

func TestSyncCycleErrorLogsFailure(t *testing.T) {
	settings := &mockSyncSettingsRepo{
		settings: model.SyncSettings{Enabled: true, AutoSyncEnabled: true, SyncInterval: model.SyncIntervalDaily},
		token:    "tok",
	}
	logs := &mockSyncLogRepo{}
	s := newSyncScheduler(settings, logs, func(ctx context.Context, token string, cursor *string) (*hubspot.SyncResult, error) {
		return nil, errors.New("authentication failed (401)")
	})

	res := s.RunSyncCycle(context.Background())
	if res.Success {
		t.Fatalf("expected failed cycle, got %+v", res)
	}
	if len(logs.logs) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(logs.logs))
	}
	row := logs.logs[0]
	if row.Status != model.SyncStatusError || row.ErrorMessage == nil {
		t.Fatalf("unexpected log row %+v", row)
	}
	if row.CompaniesFound != 0 || row.CompaniesCreated != 0 || row.CompaniesUpdated != 0 {
		t.Fatalf("failed cycle must log zero counts, got %+v", row)
	}
	if settings.lastStatus != model.SyncStatusError {
		t.Fatalf("settings status = %q", settings.lastStatus)
	}
}

func TestIntervalFor(t *testing.T) {
	cases := []struct {
		name string
		want time.Duration
	}{
		{model.SyncIntervalHourly, time.Hour},
		{model.SyncIntervalDaily, 24 * time.Hour},
		{model.SyncIntervalWeekly, 7 * 24 * time.Hour},
		{"fortnightly", 24 * time.Hour},
		{"", 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := IntervalFor(tc.name); got != tc.want {
			t.Errorf("IntervalFor(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
