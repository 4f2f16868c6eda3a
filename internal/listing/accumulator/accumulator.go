// Package accumulator holds the loaded items of a listing and decides which
// page to request next. Both variants are plain state machines: they issue
// Requests and are fed the outcome, they never perform I/O themselves.
package accumulator

import (
	"jobboard-listing/internal/models"
)

// State of an accumulator.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Error
	LoadingMore
	Accumulated
	ErrorMore
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	case LoadingMore:
		return "loading-more"
	case Accumulated:
		return "accumulated"
	case ErrorMore:
		return "error-more"
	default:
		return "idle"
	}
}

// Request is one page fetch the owner must perform. Token identifies it when
// the outcome is reported; outcomes carrying an older token are discarded.
type Request struct {
	Page    int
	PerPage int
	Token   uint64
	// Replace is set when the response replaces the items instead of extending them.
	Replace bool
}

func copyItems(items []models.ListingItem) []models.ListingItem {
	out := make([]models.ListingItem, len(items))
	copy(out, items)
	return out
}
