package browser

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-listing/internal/common/config"
	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/listing/engine"
	"jobboard-listing/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recorder) Dispatch(ev engine.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) last() engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fakeSource struct {
	subs []func(engine.View)
	done chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{done: make(chan struct{})}
}

func (f *fakeSource) Subscribe(fn func(engine.View)) { f.subs = append(f.subs, fn) }
func (f *fakeSource) Done() <-chan struct{}          { return f.done }

func (f *fakeSource) publish(v engine.View) {
	for _, fn := range f.subs {
		fn(v)
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func pagedView() engine.View {
	return engine.View{
		Listing: "offers",
		Kind:    models.KindOffers,
		Mode:    config.ModePageSwitch,
		Status:  engine.StatusReady,
		Items:   []models.ListingItem{{ID: 1, Title: "Marketing Manager"}},
		Loaded:  1,
		Visible: 1,
		Sectors: []models.Sector{{ID: 1, Name: "IT"}, {ID: 2, Name: "Marketing"}},
		Cities:  []string{"Sfax", "Tunis"},
		Meta:    models.PaginationMeta{CurrentPage: 1, LastPage: 3, PerPage: 10, HasMore: true},
		Page:    1,
	}
}

func TestFeed_KeepsLatestView(t *testing.T) {
	src := newFakeSource()
	ch := Feed(src)

	src.publish(engine.View{Loaded: 1})
	src.publish(engine.View{Loaded: 2})
	src.publish(engine.View{Loaded: 3})

	v := <-ch
	assert.Equal(t, 3, v.Loaded)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued view %+v", extra)
	default:
	}
}

func TestFeed_ClosesWhenSourceStops(t *testing.T) {
	src := newFakeSource()
	ch := Feed(src)
	close(src.done)

	msg := waitForView(ch)()
	assert.Equal(t, engineStopped{}, msg)
}

func TestModel_ViewMessageUpdatesState(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, engine.View{})

	m = update(t, m, viewMsg(pagedView()))

	assert.Equal(t, 1, m.Current().Visible)
	assert.Contains(t, m.View(), "Marketing Manager")
}

func TestModel_CycleFilters(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())

	m = update(t, m, keyRune('s'))
	assert.Equal(t, engine.SelectSector{ID: 1}, rec.last())

	v := pagedView()
	v.Filters.SectorID = 2
	m = update(t, m, viewMsg(v))
	m = update(t, m, keyRune('s'))
	assert.Equal(t, engine.SelectSector{ID: 0}, rec.last(), "cycling past the last sector clears it")

	m = update(t, m, keyRune('l'))
	assert.Equal(t, engine.SelectCity{City: "Sfax"}, rec.last())

	m = update(t, m, keyRune('a'))
	assert.Equal(t, engine.SelectStatus{Status: models.Yes}, rec.last())

	update(t, m, keyRune('c'))
	assert.Equal(t, engine.ClearFilters{}, rec.last())
}

func TestModel_JobRequiresOptions(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())

	m = update(t, m, keyRune('j'))
	assert.Zero(t, rec.count())

	v := pagedView()
	v.Filters.SectorID = 2
	v.JobOptions = []models.Job{{ID: 21, Name: "Brand Manager", SectorID: 2}}
	m = update(t, m, viewMsg(v))
	update(t, m, keyRune('j'))
	assert.Equal(t, engine.SelectJob{ID: 21}, rec.last())
}

func TestModel_Paging(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, engine.NextPage{}, rec.last())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, engine.PrevPage{}, rec.last())

	update(t, m, keyRune('3'))
	assert.Equal(t, engine.GoToPage{Page: 3}, rec.last())
}

func TestModel_SearchTyping(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())

	m = update(t, m, keyRune('/'))
	require.True(t, m.Searching())

	m = update(t, m, keyRune('m'))
	m = update(t, m, keyRune('a'))
	assert.Equal(t, engine.SearchInput{Text: "ma"}, rec.last())
	assert.Equal(t, 2, rec.count(), "typed keys go to the search box, not the key bindings")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Searching())
}

func TestModel_ScrollLoadsMoreInInfiniteMode(t *testing.T) {
	rec := &recorder{}
	v := pagedView()
	v.Mode = config.ModeInfinite
	m := New(rec, nil, v)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	ev, ok := rec.last().(engine.Scroll)
	require.True(t, ok)
	assert.Equal(t, 38, ev.Position.ClientHeight)
}

func TestModel_ScrollInPageModeDoesNotDispatch(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Zero(t, rec.count())
}

func TestModel_RetryOrRefresh(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, pagedView())

	m = update(t, m, keyRune('r'))
	assert.Equal(t, engine.Refresh{}, rec.last())

	v := pagedView()
	v.Notice = &apperrors.Notice{Level: apperrors.NoticeWarning, Message: "timeout", Retryable: true, At: time.Now()}
	m = update(t, m, viewMsg(v))
	update(t, m, keyRune('r'))
	assert.Equal(t, engine.Retry{}, rec.last())
}

func TestModel_NoticeExpires(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil, engine.View{}).WithNoticeTTL(time.Millisecond)

	v := pagedView()
	v.Notice = &apperrors.Notice{Level: apperrors.NoticeError, Message: "boom", At: time.Unix(100, 0)}
	m = update(t, m, viewMsg(v))

	m = update(t, m, noticeExpired{key: time.Unix(50, 0).UnixNano()})
	assert.Zero(t, rec.count(), "a stale timer does not dismiss a newer notice")

	update(t, m, noticeExpired{key: time.Unix(100, 0).UnixNano()})
	assert.Equal(t, engine.DismissNotice{}, rec.last())
}

func TestModel_Quit(t *testing.T) {
	m := New(&recorder{}, nil, engine.View{})

	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(engineStopped{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_SelectAndDetail(t *testing.T) {
	rec := &recorder{}
	v := pagedView()
	v.Items = append(v.Items, models.ListingItem{ID: 2, Title: "Sales Lead"})
	m := New(rec, nil, v)

	m = update(t, m, keyRune(']'))
	assert.Equal(t, engine.SelectItem{ID: 1}, rec.last())

	selected := v.Items[0]
	v.Selected = &selected
	m = update(t, m, viewMsg(v))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, engine.SelectItem{ID: 2}, rec.last())
	m = update(t, m, keyRune('['))
	assert.Equal(t, engine.SelectItem{ID: 2}, rec.last(), "wraps to the last item")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Detail())
	assert.Contains(t, m.View(), "esc: back to list")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Detail())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	v.Selected = nil
	m = update(t, m, viewMsg(v))
	assert.False(t, m.Detail(), "the detail closes when the selection is gone")
}

func TestModel_ItemActions(t *testing.T) {
	rec := &recorder{}
	v := pagedView()
	selected := v.Items[0]
	v.Selected = &selected
	m := New(rec, nil, v)

	m = update(t, m, keyRune('p'))
	m = update(t, m, keyRune('u'))
	assert.Zero(t, rec.count(), "disabled actions are not sent")

	v.Actions = engine.ItemActions{Apply: true}
	m = update(t, m, viewMsg(v))
	assert.Contains(t, m.View(), "apply")
	m = update(t, m, keyRune('p'))
	assert.Equal(t, engine.Apply{ID: 1}, rec.last())

	v.Kind = models.KindCandidates
	v.Actions = engine.ItemActions{Consume: true}
	m = update(t, m, viewMsg(v))
	update(t, m, keyRune('u'))
	assert.Equal(t, engine.Consume{ID: 1}, rec.last())
}

func TestNextItem(t *testing.T) {
	items := []models.ListingItem{{ID: 4}, {ID: 7}, {ID: 9}}
	assert.Equal(t, int64(4), nextItem(items, nil, 1))
	assert.Equal(t, int64(9), nextItem(items, nil, -1))
	assert.Equal(t, int64(9), nextItem(items, &items[1], 1))
	assert.Equal(t, int64(4), nextItem(items, &items[2], 1))
	assert.Equal(t, int64(9), nextItem(items, &items[0], -1))
	assert.Equal(t, int64(4), nextItem(items, &models.ListingItem{ID: 42}, 1), "selection no longer shown")
	assert.Zero(t, nextItem(nil, nil, 1))
}

func TestNextID(t *testing.T) {
	ids := []int64{4, 7, 9}
	assert.Equal(t, int64(4), nextID(ids, 0))
	assert.Equal(t, int64(9), nextID(ids, 7))
	assert.Equal(t, int64(0), nextID(ids, 9))
	assert.Equal(t, int64(0), nextID(ids, 42))
	assert.Equal(t, int64(0), nextID(nil, 0))
}
