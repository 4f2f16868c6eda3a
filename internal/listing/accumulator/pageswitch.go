package accumulator

import (
	"jobboard-listing/internal/models"
)

// PageSwitch shows exactly one server page at a time (numbered pagination).
type PageSwitch struct {
	perPage int
	items   []models.ListingItem
	meta    models.PaginationMeta
	state   State
	token   uint64
	pending int
	err     error
}

func NewPageSwitch(perPage int) *PageSwitch {
	return &PageSwitch{
		perPage: perPage,
		meta:    models.DefaultPaginationMeta().Normalize(),
		state:   Idle,
	}
}

// Reset requests page 1 regardless of the current range, e.g. after the
// server filters changed. Any in-flight request is superseded.
func (p *PageSwitch) Reset() Request {
	return p.issue(1)
}

// Request asks for page. Pages outside [1, lastPage] and the page already
// shown are refused without changing anything.
func (p *PageSwitch) Request(page int) (Request, bool) {
	if page < 1 || page > p.meta.LastPage {
		return Request{}, false
	}
	if page == p.target() && (p.state == Loaded || p.state == Loading) {
		return Request{}, false
	}
	return p.issue(page), true
}

// Next requests the page after the one shown (or being loaded).
func (p *PageSwitch) Next() (Request, bool) {
	return p.Request(p.target() + 1)
}

// Prev requests the page before the one shown (or being loaded).
func (p *PageSwitch) Prev() (Request, bool) {
	return p.Request(p.target() - 1)
}

// Retry repeats the last request after a failure.
func (p *PageSwitch) Retry() (Request, bool) {
	if p.state != Error {
		return Request{}, false
	}
	return p.issue(p.pending), true
}

func (p *PageSwitch) issue(page int) Request {
	p.token++
	p.pending = page
	p.state = Loading
	return Request{Page: page, PerPage: p.perPage, Token: p.token, Replace: true}
}

func (p *PageSwitch) target() int {
	if p.state == Loading {
		return p.pending
	}
	return p.meta.CurrentPage
}

// Complete replaces the shown items with page. It returns false when the
// response belongs to a superseded request.
func (p *PageSwitch) Complete(token uint64, page *models.Page) bool {
	if token != p.token || p.state != Loading {
		return false
	}
	p.items = copyItems(page.Items)
	p.meta = page.Meta.Normalize()
	p.state = Loaded
	p.err = nil
	return true
}

// Fail records a failed request; the shown items are kept.
func (p *PageSwitch) Fail(token uint64, err error) bool {
	if token != p.token || p.state != Loading {
		return false
	}
	p.state = Error
	p.err = err
	return true
}

func (p *PageSwitch) Items() []models.ListingItem { return copyItems(p.items) }
func (p *PageSwitch) Meta() models.PaginationMeta { return p.meta }
func (p *PageSwitch) State() State                { return p.state }
func (p *PageSwitch) Err() error                  { return p.err }
func (p *PageSwitch) Loading() bool               { return p.state == Loading }

// Current is the page whose items are shown.
func (p *PageSwitch) Current() int { return p.meta.CurrentPage }

// CanNext and CanPrev drive the enabled state of the navigation controls.
func (p *PageSwitch) CanNext() bool { return p.target() < p.meta.LastPage }
func (p *PageSwitch) CanPrev() bool { return p.target() > 1 }
