// internal/hubspot/client.go
package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appErrors "github.com/mkanyali/assetcomply-backend/internal/errors"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

const defaultBaseURL = "https://api.hubapi.com"

// pageSize is the CRM API maximum per request.
const pageSize = 100

// SyncResult reports one reconciliation run. Errors holds partial per-company
// failures; they do not fail the run.
type SyncResult struct {
	CompaniesFound   int
	CompaniesCreated int
	CompaniesUpdated int
	Errors           []string
}

// Client talks to the HubSpot CRM companies API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type companyPage struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"properties"`
	} `json:"results"`
	Paging *struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// TestConnection verifies the token by requesting a single company.
func (c *Client) TestConnection(ctx context.Context, accessToken string) error {
	_, _, err := c.fetchPage(ctx, accessToken, "", 1)
	return err
}

// Sync pulls all companies from the CRM and upserts them into the local
// store, keyed on the CRM id. A transport or auth failure aborts the run;
// a single bad company only lands in SyncResult.Errors.
func (c *Client) Sync(ctx context.Context, accessToken string, companies repository.CompanyRepositoryInterface, audit repository.AuditRepositoryInterface, cursor *string) (*SyncResult, error) {
	result := &SyncResult{Errors: []string{}}

	after := ""
	if cursor != nil {
		after = *cursor
	}

	for {
		page, next, err := c.fetchPage(ctx, accessToken, after, pageSize)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Results {
			result.CompaniesFound++
			hsID := item.ID
			name := item.Properties.Name
			if name == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("company %s: missing name", hsID))
				continue
			}

			existing, err := companies.GetByHubSpotID(hsID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("company %s: %v", hsID, err))
				continue
			}

			if existing == nil {
				company := &model.Company{Name: name, Description: item.Properties.Description, HubSpotID: &hsID}
				if err := companies.Create(company); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("company %s: %v", hsID, err))
					continue
				}
				result.CompaniesCreated++
				_ = audit.Log(&model.AuditEntry{
					Actor:  "hubspot-sync",
					Action: "company.create",
					Entity: name,
					Detail: "imported from HubSpot id " + hsID,
				})
				continue
			}

			if existing.Name != name || existing.Description != item.Properties.Description {
				existing.Name = name
				existing.Description = item.Properties.Description
				if err := companies.Update(existing); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("company %s: %v", hsID, err))
					continue
				}
				result.CompaniesUpdated++
			}
		}

		if next == "" {
			break
		}
		after = next
	}

	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, accessToken, after string, limit int) (*companyPage, string, error) {
	endpoint := fmt.Sprintf("%s/crm/v3/objects/companies?limit=%d&properties=name,description", c.BaseURL, limit)
	if after != "" {
		endpoint += "&after=" + url.QueryEscape(after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", &appErrors.UpstreamError{Op: "hubspot companies fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, "", &appErrors.UpstreamError{Op: "hubspot companies fetch", Err: fmt.Errorf("authentication failed (%d)", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", &appErrors.UpstreamError{Op: "hubspot companies fetch", Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)}
	}

	var page companyPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", &appErrors.UpstreamError{Op: "hubspot companies decode", Err: err}
	}

	next := ""
	if page.Paging != nil {
		next = page.Paging.Next.After
	}
	return &page, next, nil
}
