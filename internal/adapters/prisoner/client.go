package prisoner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"visitscheduler/internal/domain"
)

type prisonerHTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory returns a directory that calls the prisoner search API.
func NewHTTPDirectory(baseURL string, client *http.Client) domain.PrisonerDirectory {
	if client == nil {
		client = http.DefaultClient
	}
	return &prisonerHTTPDirectory{baseURL: baseURL, client: client}
}

type prisonerResponse struct {
	PrisonerID            string `json:"prisonerId"`
	PrisonCode            string `json:"prisonCode"`
	Category              string `json:"category"`
	IncentiveLevel        string `json:"incentiveLevel"`
	CellLocation          string `json:"cellLocation"`
	LastPermanentLocation string `json:"lastPermanentLocation"`
}

func (d *prisonerHTTPDirectory) GetPrisoner(ctx context.Context, prisonerID string) (*domain.PrisonerDetail, error) {
	url := fmt.Sprintf("%s/prisoners/%s", d.baseURL, prisonerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prisoner: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("prisoner %s: %w", prisonerID, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prisoner api returned status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var data prisonerResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode prisoner response: %w", err)
	}
	return &domain.PrisonerDetail{
		PrisonerID:            data.PrisonerID,
		PrisonCode:            data.PrisonCode,
		Category:              data.Category,
		IncentiveLevel:        data.IncentiveLevel,
		CellLocation:          data.CellLocation,
		LastPermanentLocation: data.LastPermanentLocation,
	}, nil
}
