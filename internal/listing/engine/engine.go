// Package engine runs one listing: it owns the loaded items, the filter
// state and the pagination, and turns events into fetches and views.
//
// All state changes happen on the goroutine running Run. Fetches run in their
// own goroutines and post their outcome back as events, so a response is
// applied in the same place as a keystroke. Results that arrive after Run has
// returned are dropped.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"jobboard-listing/internal/common/config"
	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/common/logger"
	"jobboard-listing/internal/common/metrics"
	"jobboard-listing/internal/listing/accumulator"
	"jobboard-listing/internal/listing/debounce"
	"jobboard-listing/internal/listing/dependent"
	"jobboard-listing/internal/listing/fetcher"
	"jobboard-listing/internal/listing/filter"
	"jobboard-listing/internal/models"
)

const (
	eventBuffer     = 64
	maxPageButtons  = 5
	allItemsPerPage = 1000
)

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("engine already running")

// HierarchySource loads the sector/job tree.
type HierarchySource func(ctx context.Context) (models.Hierarchy, error)

// PaymentSource loads the organization's latest payment; (nil, nil) means none.
type PaymentSource func(ctx context.Context) (*models.Payment, error)

// Invalidator drops cached pages. fetcher.CachedFetcher implements it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Options wires an Engine.
type Options struct {
	Listing   string
	Config    config.ListingConfig
	Fetcher   fetcher.PageFetcher
	Hierarchy HierarchySource
	Payments  PaymentSource
	Actions   ActionFunc
	Cache     Invalidator
	Logger    logger.Logger
}

type Engine struct {
	listing     string
	cfg         config.ListingConfig
	fetcher     fetcher.PageFetcher
	hierarchyFn HierarchySource
	paymentsFn  PaymentSource
	actionFn    ActionFunc
	cache       Invalidator
	logger      logger.Logger
	errors      *apperrors.ErrorHandler
	serverKeys  []string

	events  chan Event
	done    chan struct{}
	running atomic.Bool
	wg      sync.WaitGroup
	runCtx  context.Context

	mu   sync.RWMutex
	view View
	subs []func(View)

	// owned by the dispatcher goroutine
	search     *debounce.Buffer
	filters    models.FilterState
	selection  dependent.Selection
	hierarchy  models.Hierarchy
	pages      *accumulator.PageSwitch
	infinite   *accumulator.Infinite
	localPage  int
	loadedOnce bool
	notice     *apperrors.Notice
	payment    *models.Payment
	selected   int64
	pending    map[int64]Action
	doneIDs    map[int64]bool
}

// New creates an engine for one listing. Nothing is fetched until Run.
func New(opts Options) (*Engine, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("listing %q: fetcher is required", opts.Listing)
	}
	if opts.Config.PerPage < 1 {
		return nil, fmt.Errorf("listing %q: per_page must be positive", opts.Listing)
	}
	mode := opts.Config.Mode
	if mode == "" {
		mode = config.ModePageSwitch
	}
	if mode != config.ModePageSwitch && mode != config.ModeInfinite {
		return nil, fmt.Errorf("listing %q: unknown mode %q", opts.Listing, mode)
	}
	opts.Config.Mode = mode
	if opts.Config.ScrollMargin <= 0 {
		opts.Config.ScrollMargin = accumulator.DefaultScrollMargin
	}

	log := logger.ForListing(opts.Logger, "listing-engine", opts.Listing)

	e := &Engine{
		listing:     opts.Listing,
		cfg:         opts.Config,
		fetcher:     opts.Fetcher,
		hierarchyFn: opts.Hierarchy,
		paymentsFn:  opts.Payments,
		actionFn:    opts.Actions,
		cache:       opts.Cache,
		logger:      log,
		errors:      apperrors.NewErrorHandler(log),
		serverKeys:  opts.Config.ServerFilters,
		events:      make(chan Event, eventBuffer),
		done:        make(chan struct{}),
		localPage:   1,
		pending:     make(map[int64]Action),
		doneIDs:     make(map[int64]bool),
	}
	if mode == config.ModeInfinite {
		e.infinite = accumulator.NewInfinite(opts.Config.PerPage)
	} else {
		e.pages = accumulator.NewPageSwitch(e.fetchPerPage())
	}
	e.search = debounce.New(opts.Config.GetDebounce(), func(text string) {
		e.post(searchSettled{text: text})
	})
	e.view = e.buildView()
	return e, nil
}

// Run processes events until ctx is done. It issues the initial load itself.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	e.runCtx = ctx
	defer func() {
		e.search.Stop()
		close(e.done)
		e.wg.Wait()
		e.logger.Debug("listing engine stopped", nil)
	}()

	e.logger.Info("listing engine started", map[string]interface{}{
		"mode":    e.cfg.Mode,
		"perPage": e.cfg.PerPage,
	})
	e.loadReferenceData()
	e.reload("initial")
	e.publish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-e.events:
			if e.handle(ev) {
				e.publish()
			}
		}
	}
}

// Dispatch queues ev for the dispatcher. It returns false once the engine
// has stopped.
func (e *Engine) Dispatch(ev Event) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case <-e.done:
		return false
	case e.events <- ev:
		return true
	}
}

// post is Dispatch for background work; results after shutdown are dropped.
func (e *Engine) post(ev Event) {
	if !e.Dispatch(ev) {
		e.logger.Debug("dropping late result", map[string]interface{}{"event": fmt.Sprintf("%T", ev)})
	}
}

// Subscribe registers fn to receive every new View. fn runs on the
// dispatcher goroutine and must not block.
func (e *Engine) Subscribe(fn func(View)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// Snapshot returns the latest View.
func (e *Engine) Snapshot() View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view
}

// Done is closed once Run stops accepting events.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) publish() {
	v := e.buildView()
	e.mu.Lock()
	e.view = v
	subs := append([]func(View){}, e.subs...)
	e.mu.Unlock()

	metrics.ItemsLoaded.WithLabelValues(e.listing).Set(float64(v.Loaded))
	metrics.ItemsVisible.WithLabelValues(e.listing).Set(float64(v.Visible))
	for _, fn := range subs {
		fn(v)
	}
}

// ==========================
// Event handling
// ==========================

// handle applies one event and reports whether the view may have changed.
func (e *Engine) handle(ev Event) bool {
	switch ev := ev.(type) {
	case SearchInput:
		e.search.SetRaw(ev.Text)
	case searchSettled:
		if ev.text != e.search.Settled() {
			// superseded by a Reset
			return false
		}
		e.updateFilters(func(f *models.FilterState) { f.Search = ev.text })

	case SelectSector:
		if !e.selection.SetPrimary(ev.ID) {
			return false
		}
		e.updateFilters(func(f *models.FilterState) {
			f.SectorID = e.selection.Primary
			f.JobID = e.selection.Secondary
		})
	case SelectJob:
		if err := e.selection.SetSecondary(ev.ID, e.currentHierarchy()); err != nil {
			e.logger.Debug("job selection refused", map[string]interface{}{"jobId": ev.ID, "error": err.Error()})
			return false
		}
		e.updateFilters(func(f *models.FilterState) { f.JobID = e.selection.Secondary })
	case SelectOrganization:
		e.updateFilters(func(f *models.FilterState) { f.OrganizationID = ev.ID })
	case SelectCity:
		e.updateFilters(func(f *models.FilterState) { f.City = ev.City })
	case SelectContractType:
		e.updateFilters(func(f *models.FilterState) { f.ContractType = ev.ContractType })
	case SelectStatus:
		e.updateFilters(func(f *models.FilterState) { f.Status = ev.Status })
	case SetServerFilter:
		e.updateFilters(func(f *models.FilterState) { *f = f.WithExtra(ev.Key, ev.Value) })
	case ClearFilters:
		e.search.Reset("")
		e.selection.Clear()
		e.updateFilters(func(f *models.FilterState) { *f = models.FilterState{} })

	case GoToPage:
		return e.goToPage(ev.Page)
	case NextPage:
		return e.goToPage(e.currentPage() + 1)
	case PrevPage:
		return e.goToPage(e.currentPage() - 1)
	case Scroll:
		if e.infinite == nil || !accumulator.NearBottom(ev.Position, e.cfg.ScrollMargin) {
			return false
		}
		return e.loadMore()
	case LoadMore:
		return e.loadMore()
	case Retry:
		return e.retry()
	case Refresh:
		e.refresh()
	case DismissNotice:
		if e.notice == nil {
			return false
		}
		e.notice = nil

	case SelectItem:
		return e.selectItem(ev.ID)
	case Apply:
		return e.startAction(ActionApply, ev.ID)
	case Consume:
		return e.startAction(ActionConsume, ev.ID)

	case pageLoaded:
		return e.applyPage(ev)
	case hierarchyLoaded:
		if ev.err != nil {
			e.logger.Warn("sectors unavailable, deriving them from loaded items", map[string]interface{}{
				"error": ev.err.Error(),
			})
			return false
		}
		e.hierarchy = ev.hierarchy
	case actionDone:
		e.finishAction(ev)
	case paymentLoaded:
		if ev.err != nil {
			e.logger.Warn("failed to load last payment", map[string]interface{}{"error": ev.err.Error()})
			return false
		}
		e.payment = ev.payment
	default:
		e.logger.Warn("unknown event", map[string]interface{}{"event": fmt.Sprintf("%T", ev)})
		return false
	}
	return true
}

// updateFilters applies mutate and reloads from page 1 when the server side
// part of the filters changed. Local-only changes just re-render.
func (e *Engine) updateFilters(mutate func(f *models.FilterState)) {
	before := e.serverQuery().Encode()
	mutate(&e.filters)
	e.localPage = 1
	if e.serverQuery().Encode() != before {
		e.reload("server filters changed")
	}
}

func (e *Engine) serverQuery() url.Values {
	_, q := e.filters.Split(e.serverKeys)
	return q
}

func (e *Engine) localFilters() models.FilterState {
	local, _ := e.filters.Split(e.serverKeys)
	return local
}

func (e *Engine) currentPage() int {
	if e.cfg.ClientPaging {
		return e.localPage
	}
	if e.pages != nil {
		return e.pages.Current()
	}
	return e.infinite.Meta().CurrentPage
}

func (e *Engine) goToPage(page int) bool {
	if e.pages == nil {
		return false
	}
	if e.cfg.ClientPaging {
		_, meta := accumulator.LocalPage(filter.Apply(e.pages.Items(), e.localFilters()), page, e.cfg.PerPage)
		if page < 1 || page > meta.LastPage || page == e.localPage {
			return false
		}
		e.localPage = page
		return true
	}
	req, ok := e.pages.Request(page)
	if !ok {
		return false
	}
	e.fetch(req)
	return true
}

func (e *Engine) loadMore() bool {
	if e.infinite == nil {
		return false
	}
	req, ok := e.infinite.Trigger()
	if !ok {
		return false
	}
	e.fetch(req)
	return true
}

func (e *Engine) retry() bool {
	if e.pages != nil {
		if req, ok := e.pages.Retry(); ok {
			e.fetch(req)
			return true
		}
		return false
	}
	if e.infinite.ResetPending() {
		req, ok := e.infinite.Retry()
		if !ok {
			return false
		}
		e.logger.Info("retrying first page", map[string]interface{}{"query": e.serverQuery().Encode()})
		e.fetch(req)
		return true
	}
	if !e.infinite.Loaded() {
		if e.infinite.LoadingMore() {
			return false
		}
		e.reload("retry initial load")
		return true
	}
	return e.loadMore()
}

func (e *Engine) refresh() {
	if e.cache != nil {
		if err := e.cache.Invalidate(e.runCtx); err != nil {
			e.logger.Warn("failed to invalidate page cache", map[string]interface{}{"error": err.Error()})
		}
	}
	e.notice = nil
	e.localPage = 1
	if e.hierarchy.Empty() {
		e.loadHierarchy()
	}
	e.reload("refresh")
}

// reload requests page 1 and supersedes whatever is in flight.
func (e *Engine) reload(reason string) {
	var req accumulator.Request
	if e.infinite != nil {
		req = e.infinite.Reset()
	} else {
		req = e.pages.Reset()
	}
	e.logger.Debug("reloading listing", map[string]interface{}{"reason": reason})
	e.fetch(req)
}

func (e *Engine) fetch(req accumulator.Request) {
	query := e.serverQuery()
	ctx := e.runCtx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		page, err := e.fetcher.FetchPage(ctx, req.Page, req.PerPage, query)
		e.post(pageLoaded{req: req, page: page, err: err})
	}()
}

func (e *Engine) applyPage(ev pageLoaded) bool {
	var applied bool
	if ev.err != nil {
		if e.infinite != nil {
			applied = e.infinite.Fail(ev.req.Token, ev.err)
		} else {
			applied = e.pages.Fail(ev.req.Token, ev.err)
		}
		if applied {
			notice := e.errors.Handle(e.listing, "fetch_page", ev.err)
			e.notice = &notice
		}
	} else {
		if e.infinite != nil {
			applied = e.infinite.Complete(ev.req.Token, ev.page)
		} else {
			applied = e.pages.Complete(ev.req.Token, ev.page)
		}
		if applied {
			e.loadedOnce = true
		}
	}

	if !applied {
		e.logger.Debug("discarding superseded response", map[string]interface{}{
			"page":  ev.req.Page,
			"token": ev.req.Token,
		})
	}
	return applied
}

func (e *Engine) loadReferenceData() {
	e.loadHierarchy()
	e.loadPayment()
}

func (e *Engine) loadPayment() {
	if e.paymentsFn == nil {
		return
	}
	fn, ctx := e.paymentsFn, e.runCtx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		p, err := fn(ctx)
		e.post(paymentLoaded{payment: p, err: err})
	}()
}

func (e *Engine) loadHierarchy() {
	if e.hierarchyFn == nil {
		return
	}
	fn, ctx := e.hierarchyFn, e.runCtx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		start := time.Now()
		h, err := fn(ctx)
		e.logger.Debug("sectors loaded", map[string]interface{}{
			"sectors":  len(h.Sectors),
			"duration": time.Since(start).String(),
		})
		e.post(hierarchyLoaded{hierarchy: h, err: err})
	}()
}

// currentHierarchy completes the backend sectors with what loaded items
// reveal, or derives everything from the items when the backend gave none.
func (e *Engine) currentHierarchy() models.Hierarchy {
	return dependent.Merge(e.hierarchy, e.loadedItems())
}

func (e *Engine) loadedItems() []models.ListingItem {
	if e.infinite != nil {
		return e.infinite.Items()
	}
	return e.pages.Items()
}

// fetchPerPage is the page size sent to the backend. A listing paged locally
// asks for everything at once.
func (e *Engine) fetchPerPage() int {
	if e.cfg.ClientPaging {
		return allItemsPerPage
	}
	return e.cfg.PerPage
}

// ==========================
// View
// ==========================

func (e *Engine) buildView() View {
	loaded := e.loadedItems()
	e.markDone(loaded)
	local := e.localFilters()
	visible := filter.Apply(loaded, local)
	hierarchy := e.currentHierarchy()

	v := View{
		Listing:       e.listing,
		Kind:          e.cfg.Kind,
		Mode:          e.cfg.Mode,
		Loaded:        len(loaded),
		Filters:       e.filters,
		SearchRaw:     e.search.Raw(),
		SearchPending: e.search.Pending(),
		Sectors:       hierarchy.Sectors,
		JobOptions:    dependent.ResolveSecondaryOptions(e.selection.Primary, hierarchy),
		Cities:        filter.Cities(loaded),
		Organizations: filter.Organizations(loaded),
		ContractTypes: filter.ContractTypes(loaded),
		Notice:        e.notice,
		Payment:       e.payment,
	}

	switch {
	case e.infinite != nil:
		v.Meta = e.infinite.Meta()
		v.Page = v.Meta.CurrentPage
		v.HasMore = v.Meta.HasMore
		v.LoadingMore = e.infinite.LoadingMore() && e.loadedOnce
		v.Items = visible
	case e.cfg.ClientPaging:
		items, meta := accumulator.LocalPage(visible, e.localPage, e.cfg.PerPage)
		v.Items = items
		v.Meta = meta
		v.Page = meta.CurrentPage
		v.CanPrev = meta.CurrentPage > 1
		v.CanNext = meta.HasMore
		v.Refreshing = e.pages.Loading() && e.loadedOnce
	default:
		v.Meta = e.pages.Meta()
		v.Page = e.pages.Current()
		v.CanNext = e.pages.CanNext()
		v.CanPrev = e.pages.CanPrev()
		v.Refreshing = e.pages.Loading() && e.loadedOnce
		v.Items = visible
	}
	v.Visible = len(v.Items)
	for i := range v.Items {
		if v.Items[i].ID == e.selected {
			selected := v.Items[i]
			v.Selected = &selected
			v.Actions = e.actionsFor(selected)
			break
		}
	}
	v.PageNumbers = accumulator.PageNumbers(v.Page, v.Meta.LastPage, maxPageButtons)
	if e.infinite == nil {
		v.From, v.To = accumulator.Range(v.Meta, e.cfg.PerPage, len(v.Items))
	}

	switch {
	case !e.loadedOnce && e.failed():
		v.Status = StatusFailed
		v.Items = nil
		v.Visible = 0
	case !e.loadedOnce:
		v.Status = StatusLoading
	case len(v.Items) == 0:
		v.Status = StatusEmpty
	default:
		v.Status = StatusReady
	}
	return v
}

func (e *Engine) failed() bool {
	if e.infinite != nil {
		return e.infinite.State() == accumulator.ErrorMore
	}
	return e.pages.State() == accumulator.Error
}
