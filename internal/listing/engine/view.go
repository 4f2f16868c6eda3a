package engine

import (
	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/models"
)

// Status is what the main content area shows.
type Status int

const (
	// StatusLoading: the first page has not arrived yet.
	StatusLoading Status = iota
	StatusReady
	// StatusEmpty: loaded, but nothing passes the filters. Distinct from a failure.
	StatusEmpty
	// StatusFailed: the first load failed; there is nothing to show.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "loading"
	}
}

// View is an immutable snapshot of a listing for rendering.
type View struct {
	Listing string
	Kind    string
	Mode    string
	Status  Status

	// Items are the visible items, after local filtering (and local paging).
	Items   []models.ListingItem
	Loaded  int
	Visible int

	Meta        models.PaginationMeta
	Page        int
	PageNumbers []int
	From, To    int
	CanNext     bool
	CanPrev     bool
	HasMore     bool
	LoadingMore bool
	// Refreshing is set while a request runs with older items still shown.
	Refreshing bool

	Filters       models.FilterState
	SearchRaw     string
	SearchPending bool
	Sectors       []models.Sector
	JobOptions    []models.Job
	Cities        []string
	Organizations []models.Organization
	ContractTypes []string

	// Notice is the latest transient notification, nil when none.
	Notice  *apperrors.Notice
	Payment *models.Payment

	// Selected is the selected item when it is among Items.
	Selected *models.ListingItem
	Actions  ItemActions
}

// CanConsume reports whether per-item consume actions are available.
func (v View) CanConsume() bool {
	return v.Payment.CanConsume()
}
