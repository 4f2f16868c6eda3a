package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/models"
)

// FetchHierarchy loads the sector list (with jobs when the backend nests
// them). The body may be a bare array or wrapped in "data".
func FetchHierarchy(ctx context.Context, client Getter, path string) (models.Hierarchy, error) {
	resp, err := client.Get(ctx, path, nil)
	if err != nil {
		return models.Hierarchy{}, err
	}

	var sectors []models.Sector
	if err := decodeDataOrBare(resp.Body, &sectors); err != nil {
		return models.Hierarchy{}, apperrors.NewMalformedResponseError(resp.Status, err)
	}
	for i := range sectors {
		for j := range sectors[i].Jobs {
			if sectors[i].Jobs[j].SectorID == 0 {
				sectors[i].Jobs[j].SectorID = sectors[i].ID
			}
		}
	}
	return models.Hierarchy{Sectors: sectors}, nil
}

// FetchLastPayment returns the latest payment of an organization. A 404 means
// no payment on record and yields (nil, nil).
func FetchLastPayment(ctx context.Context, client Getter, pathPattern, organizationID string) (*models.Payment, error) {
	if organizationID == "" {
		return nil, apperrors.NewValidationError("organization", "organization id is required")
	}

	resp, err := client.Get(ctx, fmt.Sprintf(pathPattern, organizationID), nil)
	if apperrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := decodeDataOrBare(resp.Body, &payment); err != nil {
		return nil, apperrors.NewMalformedResponseError(resp.Status, err)
	}
	if payment.ID == 0 && payment.Status == "" {
		return nil, nil
	}
	return &payment, nil
}

// decodeDataOrBare decodes {"data": X} or X into out.
func decodeDataOrBare(body []byte, out interface{}) error {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
			return json.Unmarshal(wrapped.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}
