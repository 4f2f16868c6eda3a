package fetcher

import (
	"context"
	"strconv"

	apperrors "jobboard-listing/internal/common/errors"
	apphttp "jobboard-listing/internal/common/http"
	"jobboard-listing/internal/models"
)

// Poster is the subset of the HTTP client used to send item actions.
type Poster interface {
	Post(ctx context.Context, path string, payload interface{}) (*apphttp.Response, error)
}

// Apply submits the candidate's application to an offer.
func Apply(ctx context.Context, client Poster, path, candidateID string, offer models.ListingItem) error {
	if candidateID == "" {
		return apperrors.NewValidationError("candidate", "candidate id is required to apply")
	}
	_, err := client.Post(ctx, path, map[string]interface{}{
		"offre_id":    offer.ID,
		"sector_id":   offer.CategoryID,
		"job_id":      offer.SubCategoryID,
		"candidat_id": numericID(candidateID),
	})
	return err
}

// Consume spends one unit of the organization's plan on a published
// candidate. The backend knows the publication by its cv id; the item id
// stands in when the listing did not carry one.
func Consume(ctx context.Context, client Poster, path, organizationID string, candidate models.ListingItem) error {
	if organizationID == "" {
		return apperrors.NewValidationError("organization", "organization id is required to consume")
	}
	postulerID := candidate.ID
	if cv, err := strconv.ParseInt(candidate.Attr("cv_id"), 10, 64); err == nil && cv > 0 {
		postulerID = cv
	}
	_, err := client.Post(ctx, path, map[string]interface{}{
		"entreprise_id": numericID(organizationID),
		"postuler_id":   postulerID,
	})
	return err
}

// numericID sends ids the backend stores as integers as JSON numbers.
func numericID(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
