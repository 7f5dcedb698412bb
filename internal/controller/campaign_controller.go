// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/middleware"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
	"github.com/mkanyali/assetcomply-backend/internal/service"
)

type CampaignController struct {
	Campaigns repository.CampaignRepositoryInterface
	Lifecycle *service.LifecycleService
}

// CampaignDetails is a campaign plus its record-status stats.
type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

// Create handles POST /api/attestation/campaigns. New campaigns always begin
// in draft.
func (c *CampaignController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name           string  `json:"name"`
		Description    string  `json:"description"`
		StartDate      string  `json:"start_date"`
		EndDate        *string `json:"end_date"`
		ReminderDays   int     `json:"reminder_days"`
		EscalationDays int     `json:"escalation_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if body.Name == "" || body.StartDate == "" {
		writeError(w, appErrors.NewValidation("name and start_date are required"))
		return
	}

	startDate, err := time.Parse(time.RFC3339, body.StartDate)
	if err != nil {
		writeError(w, appErrors.NewValidation("start_date must be RFC3339"))
		return
	}
	var endDate *time.Time
	if body.EndDate != nil && *body.EndDate != "" {
		t, err := time.Parse(time.RFC3339, *body.EndDate)
		if err != nil {
			writeError(w, appErrors.NewValidation("end_date must be RFC3339"))
			return
		}
		endDate = &t
	}

	user := middleware.UserFromContext(r.Context())
	campaign := &model.Campaign{
		Name:           body.Name,
		Description:    body.Description,
		StartDate:      startDate,
		EndDate:        endDate,
		ReminderDays:   defaultDays(body.ReminderDays, 7),
		EscalationDays: defaultDays(body.EscalationDays, 14),
		Status:         model.CampaignStatusDraft,
		CreatedBy:      user.ID,
	}
	if err := c.Campaigns.Create(campaign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func defaultDays(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// List handles GET /api/attestation/campaigns with page/page_size/status.
func (c *CampaignController) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	campaigns, total, err := c.Campaigns.ListCampaigns((page-1)*pageSize, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := (total + pageSize - 1) / pageSize
	writeJSON(w, http.StatusOK, map[string]any{
		"data": campaigns,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": totalPages,
		},
	})
}

// Get handles GET /api/attestation/campaigns/{id}: campaign plus stats.
func (c *CampaignController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	campaign, err := c.Campaigns.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := c.Campaigns.GetRecordStats(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &CampaignDetails{Campaign: campaign, Stats: stats})
}

// Start handles POST /api/attestation/campaigns/{id}/start.
func (c *CampaignController) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	result, err := c.Lifecycle.Start(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Cancel handles POST /api/attestation/campaigns/{id}/cancel.
func (c *CampaignController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	if err := c.Lifecycle.Cancel(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Delete handles DELETE /api/attestation/campaigns/{id}. Records and
// pending invites cascade.
func (c *CampaignController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	if err := c.Campaigns.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// CreateInvite handles POST /api/attestation/campaigns/{id}/invites.
func (c *CampaignController) CreateInvite(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	var body struct {
		EmployeeEmail     string `json:"employee_email"`
		EmployeeFirstName string `json:"employee_first_name"`
		EmployeeLastName  string `json:"employee_last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	invite, err := c.Lifecycle.CreateInvite(id, body.EmployeeEmail, body.EmployeeFirstName, body.EmployeeLastName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invite)
}

func campaignID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid campaign id"})
		return 0, false
	}
	return id, true
}
