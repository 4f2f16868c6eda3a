// internal/models/listing.go
package models

import (
	"time"
)

// ListingItem is one card of a listing: a job offer or a published candidate,
// normalised at the fetch boundary. It is never mutated after decoding.
type ListingItem struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	OrganizationID   int64     `json:"organizationId,omitempty"`
	OrganizationName string    `json:"organizationName,omitempty"`
	CategoryID       int64     `json:"categoryId,omitempty"`
	CategoryName     string    `json:"categoryName,omitempty"`
	SubCategoryID    int64     `json:"subCategoryId,omitempty"`
	SubCategoryName  string    `json:"subCategoryName,omitempty"`
	Location         string    `json:"location,omitempty"`
	ContractType     string    `json:"contractType,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	// StatusFlag is the per-user flag (e.g. "already applied"); nil when the backend did not say.
	StatusFlag *bool `json:"statusFlag,omitempty"`
	// Attributes carries listing specific extras (video url, gender, experience...).
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attr returns an extra attribute or "".
func (i ListingItem) Attr(key string) string {
	if i.Attributes == nil {
		return ""
	}
	return i.Attributes[key]
}

// PaginationMeta describes where a page sits in the remote collection.
// Invariant: HasMore == (CurrentPage < LastPage).
type PaginationMeta struct {
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	TotalCount  int  `json:"totalCount"`
	PerPage     int  `json:"perPage,omitempty"`
	HasMore     bool `json:"hasMore"`
}

// DefaultPaginationMeta is used when the backend omits pagination.
func DefaultPaginationMeta() PaginationMeta {
	return PaginationMeta{CurrentPage: 1, LastPage: 1, TotalCount: 0}
}

// Normalize enforces 1-indexed pages, a non-negative total and the HasMore invariant.
func (m PaginationMeta) Normalize() PaginationMeta {
	if m.CurrentPage < 1 {
		m.CurrentPage = 1
	}
	if m.LastPage < 1 {
		m.LastPage = 1
	}
	if m.LastPage < m.CurrentPage {
		m.LastPage = m.CurrentPage
	}
	if m.TotalCount < 0 {
		m.TotalCount = 0
	}
	m.HasMore = m.CurrentPage < m.LastPage
	return m
}

// Page is one fetched page.
type Page struct {
	Items    []ListingItem  `json:"items"`
	Meta     PaginationMeta `json:"meta"`
	Rejected int            `json:"rejected,omitempty"`
}
