// internal/controller/admin_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/hubspot"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
	"github.com/mkanyali/assetcomply-backend/internal/service"
)

// AdminController covers the admin settings surface: auth gates, sync
// configuration, sync logs, manual sync triggering and the audit trail.
type AdminController struct {
	AuthSettings repository.AuthSettingsRepositoryInterface
	SyncSettings repository.SyncSettingsRepositoryInterface
	SyncLogs     repository.SyncLogRepositoryInterface
	Audit        repository.AuditRepositoryInterface
	Assets       repository.AssetRepositoryInterface
	Companies    repository.CompanyRepositoryInterface
	HubSpot      *hubspot.Client
	Scheduler    *service.SyncScheduler
	Log          *zap.SugaredLogger
}

// GetAuthSettings handles GET /api/admin/auth-settings.
func (c *AdminController) GetAuthSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := c.AuthSettings.Get()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateAuthSettings handles PUT /api/admin/auth-settings.
func (c *AdminController) UpdateAuthSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.AuthSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := c.AuthSettings.Update(&settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &settings)
}

// GetSyncSettings handles GET /api/admin/hubspot-settings. The access token
// never leaves the server; only its presence is reported.
func (c *AdminController) GetSyncSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := c.SyncSettings.Get()
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := c.SyncSettings.GetAccessToken()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settings":         settings,
		"token_configured": token != "",
	})
}

// UpdateSyncSettings handles PUT /api/admin/hubspot-settings. A non-empty
// access_token in the body replaces the stored credential; an absent or
// empty one leaves it untouched.
func (c *AdminController) UpdateSyncSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled         bool    `json:"enabled"`
		AutoSyncEnabled bool    `json:"auto_sync_enabled"`
		SyncInterval    string  `json:"sync_interval"`
		AccessToken     *string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	switch body.SyncInterval {
	case model.SyncIntervalHourly, model.SyncIntervalDaily, model.SyncIntervalWeekly:
	default:
		writeError(w, appErrors.NewValidation("sync_interval must be hourly, daily or weekly"))
		return
	}

	settings := &model.SyncSettings{
		Enabled:         body.Enabled,
		AutoSyncEnabled: body.AutoSyncEnabled,
		SyncInterval:    body.SyncInterval,
	}
	if err := c.SyncSettings.Update(settings); err != nil {
		writeError(w, err)
		return
	}
	if body.AccessToken != nil && *body.AccessToken != "" {
		if err := c.SyncSettings.SetAccessToken(*body.AccessToken); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, settings)
}

// TestConnection handles POST /api/admin/hubspot-test. It checks the stored
// credential against the CRM without mutating anything.
func (c *AdminController) TestConnection(w http.ResponseWriter, r *http.Request) {
	token, err := c.SyncSettings.GetAccessToken()
	if err != nil {
		writeError(w, err)
		return
	}
	if token == "" {
		writeError(w, appErrors.NewValidation("no access token configured"))
		return
	}
	if err := c.HubSpot.TestConnection(r.Context(), token); err != nil {
		c.Log.Warnw("hubspot connection test failed", "err", err)
		writeJSON(w, http.StatusOK, map[string]any{"connected": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"connected": true})
}

// TriggerSync handles POST /api/admin/hubspot-sync: a manual run of the same
// cycle the scheduler executes, including its log row.
func (c *AdminController) TriggerSync(w http.ResponseWriter, r *http.Request) {
	cycle := c.Scheduler.RunSyncCycle(r.Context())
	if cycle.Err != nil {
		writeError(w, cycle.Err)
		return
	}
	if cycle.Skipped {
		writeError(w, appErrors.NewValidation("sync is disabled or no access token is configured"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"companies_found":   cycle.Result.CompaniesFound,
		"companies_created": cycle.Result.CompaniesCreated,
		"companies_updated": cycle.Result.CompaniesUpdated,
		"errors":            cycle.Result.Errors,
	})
}

// ListSyncLogs handles GET /api/admin/hubspot-sync-logs.
func (c *AdminController) ListSyncLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := c.SyncLogs.List(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": logs})
}

// ListAudit handles GET /api/admin/audit.
func (c *AdminController) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := c.Audit.List(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

// Stats handles GET /api/stats: headline counts for the dashboard.
func (c *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	assets, err := c.Assets.Count()
	if err != nil {
		writeError(w, err)
		return
	}
	companies, err := c.Companies.Count()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"assets":    assets,
		"companies": companies,
	})
}
