package accumulator

import (
	"jobboard-listing/internal/models"
)

// Infinite appends successive server pages into one list (infinite scroll).
// At most one load-more request is in flight; Reset may supersede it.
type Infinite struct {
	perPage int
	items   []models.ListingItem
	meta    models.PaginationMeta
	state   State
	token   uint64
	replace bool
	loaded  bool
	err     error
}

func NewInfinite(perPage int) *Infinite {
	return &Infinite{
		perPage: perPage,
		meta:    models.DefaultPaginationMeta().Normalize(),
		state:   Idle,
	}
}

// Reset requests page 1 to replace the list, e.g. on first load or when the
// server filters changed. A pending load-more becomes stale.
func (a *Infinite) Reset() Request {
	a.token++
	a.replace = true
	a.state = LoadingMore
	return Request{Page: 1, PerPage: a.perPage, Token: a.token, Replace: true}
}

// Trigger requests the next page. It is refused while a request is in flight,
// before the first page arrived, and when the backend reported no more pages.
// After a failed Reset it repeats page 1 instead, so a new query never
// extends the previous query's list.
func (a *Infinite) Trigger() (Request, bool) {
	if a.state == LoadingMore {
		return Request{}, false
	}
	if a.ResetPending() {
		return a.Reset(), true
	}
	if !a.loaded || !a.meta.HasMore {
		return Request{}, false
	}
	a.token++
	a.replace = false
	a.state = LoadingMore
	return Request{Page: a.meta.CurrentPage + 1, PerPage: a.perPage, Token: a.token}, true
}

// Complete appends (or, after Reset, replaces with) the page and refreshes
// hasMore from its meta. Stale responses return false.
func (a *Infinite) Complete(token uint64, page *models.Page) bool {
	if token != a.token || a.state != LoadingMore {
		return false
	}
	if a.replace {
		a.items = copyItems(page.Items)
	} else {
		a.items = append(a.items, page.Items...)
	}
	a.meta = page.Meta.Normalize()
	a.state = Accumulated
	a.loaded = true
	a.replace = false
	a.err = nil
	return true
}

// Retry repeats the failed request. It is refused unless the last request
// failed.
func (a *Infinite) Retry() (Request, bool) {
	if a.state != ErrorMore {
		return Request{}, false
	}
	return a.Trigger()
}

// Fail moves to ErrorMore; the accumulated items stay as they are and the
// next Trigger retries the same page. A failed Reset stays pending.
func (a *Infinite) Fail(token uint64, err error) bool {
	if token != a.token || a.state != LoadingMore {
		return false
	}
	a.state = ErrorMore
	a.err = err
	return true
}

func (a *Infinite) Items() []models.ListingItem { return copyItems(a.items) }
func (a *Infinite) Meta() models.PaginationMeta { return a.meta }
func (a *Infinite) State() State                { return a.state }
func (a *Infinite) Err() error                  { return a.err }
func (a *Infinite) LoadingMore() bool           { return a.state == LoadingMore }
func (a *Infinite) HasMore() bool               { return a.meta.HasMore }

// ResetPending reports whether the last Reset failed and page 1 of the
// current query is still owed.
func (a *Infinite) ResetPending() bool {
	return a.state == ErrorMore && a.replace
}

// Loaded reports whether the first page has arrived.
func (a *Infinite) Loaded() bool { return a.loaded }

// Len is the number of accumulated items.
func (a *Infinite) Len() int { return len(a.items) }
