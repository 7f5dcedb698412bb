// internal/controller/asset_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/middleware"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

type AssetController struct {
	Assets    repository.AssetRepositoryInterface
	Companies repository.CompanyRepositoryInterface
}

// Create handles POST /api/assets. The employee fields default to the
// authenticated user when omitted, so an employee can register their own
// hardware without retyping their identity.
func (c *AssetController) Create(w http.ResponseWriter, r *http.Request) {
	var asset model.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if asset.AssetType == "" {
		writeError(w, appErrors.NewValidation("asset_type is required"))
		return
	}

	user := middleware.UserFromContext(r.Context())
	if asset.EmployeeEmail == "" {
		asset.EmployeeEmail = user.Email
		asset.EmployeeFirstName = user.FirstName
		asset.EmployeeLastName = user.LastName
	}

	if err := c.Assets.Create(&asset); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, &asset)
}

// List handles GET /api/assets.
func (c *AssetController) List(w http.ResponseWriter, r *http.Request) {
	assets, err := c.Assets.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": assets})
}

// Get handles GET /api/assets/{id}.
func (c *AssetController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset id"})
		return
	}
	asset, err := c.Assets.GetByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (c *AssetController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid asset id"})
		return
	}
	if err := c.Assets.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ListCompanies handles GET /api/companies.
func (c *AssetController) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := c.Companies.ListAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": companies})
}
