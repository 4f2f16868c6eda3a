package engine

import (
	"jobboard-listing/internal/listing/accumulator"
	"jobboard-listing/internal/models"
)

// Event is a state change request handled by the dispatcher loop.
type Event interface {
	event()
}

// User events.
type (
	// SearchInput is a keystroke-level change of the search box.
	SearchInput struct{ Text string }

	// SelectSector selects a sector; 0 clears it. The job is always cleared.
	SelectSector struct{ ID int64 }

	// SelectJob selects a job of the current sector; 0 clears it.
	SelectJob struct{ ID int64 }

	SelectOrganization struct{ ID int64 }
	SelectCity         struct{ City string }
	SelectContractType struct{ ContractType string }
	SelectStatus       struct{ Status models.TriState }

	// SetServerFilter sets a filter only the backend understands
	// (gender, education_level, min_experience...). An empty value removes it.
	SetServerFilter struct{ Key, Value string }

	ClearFilters struct{}

	GoToPage struct{ Page int }
	NextPage struct{}
	PrevPage struct{}

	// Scroll reports the container position; near the bottom it loads more.
	Scroll struct{ Position accumulator.ScrollPosition }

	LoadMore struct{}

	// Retry repeats the request that failed last.
	Retry struct{}

	// Refresh drops cached pages and reloads from page 1.
	Refresh struct{}

	DismissNotice struct{}

	// SelectItem selects a loaded item for its detail and actions; 0 clears it.
	SelectItem struct{ ID int64 }

	// Apply and Consume run the item action on the given item, or on the
	// selected one when ID is 0.
	Apply   struct{ ID int64 }
	Consume struct{ ID int64 }
)

// Results posted back by background work.
type (
	searchSettled struct{ text string }

	pageLoaded struct {
		req  accumulator.Request
		page *models.Page
		err  error
	}

	hierarchyLoaded struct {
		hierarchy models.Hierarchy
		err       error
	}

	paymentLoaded struct {
		payment *models.Payment
		err     error
	}

	actionDone struct {
		action Action
		id     int64
		err    error
	}
)

func (SearchInput) event()        {}
func (SelectSector) event()       {}
func (SelectJob) event()          {}
func (SelectOrganization) event() {}
func (SelectCity) event()         {}
func (SelectContractType) event() {}
func (SelectStatus) event()       {}
func (SetServerFilter) event()    {}
func (ClearFilters) event()       {}
func (GoToPage) event()           {}
func (NextPage) event()           {}
func (PrevPage) event()           {}
func (Scroll) event()             {}
func (LoadMore) event()           {}
func (Retry) event()              {}
func (Refresh) event()            {}
func (DismissNotice) event()      {}
func (SelectItem) event()         {}
func (Apply) event()              {}
func (Consume) event()            {}
func (searchSettled) event()      {}
func (pageLoaded) event()         {}
func (hierarchyLoaded) event()    {}
func (paymentLoaded) event()      {}
func (actionDone) event()         {}
