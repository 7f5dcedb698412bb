// internal/controller/record_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkanyali/assetcomply-backend/internal/middleware"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
	"github.com/mkanyali/assetcomply-backend/internal/service"
)

type RecordController struct {
	Records   repository.RecordRepositoryInterface
	Lifecycle *service.LifecycleService
}

// MyRecords handles GET /api/attestation/my-records.
func (c *RecordController) MyRecords(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	records, err := c.Records.GetByUserID(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

// Start handles POST /api/attestation/records/{id}/start.
func (c *RecordController) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())
	if err := c.Lifecycle.StartRecord(id, user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Complete handles POST /api/attestation/records/{id}/complete.
func (c *RecordController) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := recordID(w, r)
	if !ok {
		return
	}
	user := middleware.UserFromContext(r.Context())
	if err := c.Lifecycle.CompleteRecord(id, user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ByCampaign handles GET /api/attestation/campaigns/{id}/records.
func (c *RecordController) ByCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}
	records, err := c.Records.GetByCampaignID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

func recordID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid record id"})
		return 0, false
	}
	return id, true
}
