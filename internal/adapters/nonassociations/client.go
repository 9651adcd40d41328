package nonassociations

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"visitscheduler/internal/domain"
)

type nonAssociationsHTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory returns a directory that calls the non-associations API.
func NewHTTPDirectory(baseURL string, client *http.Client) domain.NonAssociationDirectory {
	if client == nil {
		client = http.DefaultClient
	}
	return &nonAssociationsHTTPDirectory{baseURL: baseURL, client: client}
}

type nonAssociationResponse struct {
	NonAssociations []struct {
		OtherPrisonerID string `json:"otherPrisonerId"`
		EffectiveDate   string `json:"effectiveDate"`
		ExpiryDate      string `json:"expiryDate"`
	} `json:"nonAssociations"`
}

func (d *nonAssociationsHTTPDirectory) ListForPrisoner(ctx context.Context, prisonerID string) ([]*domain.NonAssociationLink, error) {
	url := fmt.Sprintf("%s/prisoner/%s/non-associations", d.baseURL, prisonerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch non-associations: %w", domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	// A prisoner without a record has no non-associations.
	if resp.StatusCode == http.StatusNotFound {
		return []*domain.NonAssociationLink{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-associations api returned status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	var data nonAssociationResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode non-associations response: %w", err)
	}
	links := make([]*domain.NonAssociationLink, 0, len(data.NonAssociations))
	for _, na := range data.NonAssociations {
		link := &domain.NonAssociationLink{
			PrisonerID:      prisonerID,
			OtherPrisonerID: na.OtherPrisonerID,
		}
		if na.EffectiveDate != "" {
			effective, err := time.Parse(domain.DateFormat, na.EffectiveDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse effective date %q: %w", na.EffectiveDate, err)
			}
			link.EffectiveFrom = effective
		}
		if na.ExpiryDate != "" {
			expiry, err := time.Parse(domain.DateFormat, na.ExpiryDate)
			if err != nil {
				return nil, fmt.Errorf("failed to parse expiry date %q: %w", na.ExpiryDate, err)
			}
			link.ExpiresOn = &expiry
		}
		links = append(links, link)
	}
	return links, nil
}
