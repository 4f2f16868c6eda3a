// Package browser is the interactive terminal front-end of a listing.
//
// The model never touches listing state directly: key presses become
// engine events and the engine's views come back through Feed.
package browser

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobboard-listing/internal/common/config"
	"jobboard-listing/internal/listing/accumulator"
	"jobboard-listing/internal/listing/engine"
	"jobboard-listing/internal/models"
	"jobboard-listing/internal/view"
)

// DefaultNoticeTTL is how long a notice stays before it is dismissed.
const DefaultNoticeTTL = 6 * time.Second

// Dispatcher accepts engine events. *engine.Engine implements it.
type Dispatcher interface {
	Dispatch(ev engine.Event) bool
}

var (
	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1)
)

// Model is the root Bubble Tea model of the listing browser.
type Model struct {
	engine  Dispatcher
	updates <-chan engine.View

	view      engine.View
	search    textinput.Model
	spinner   spinner.Model
	searching bool
	detail    bool

	width  int
	height int
	offset int
	lines  int

	noticeTTL time.Duration
	noticeKey int64
}

// New creates the browser model. initial is shown until the first update.
func New(d Dispatcher, updates <-chan engine.View, initial engine.View) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/ "
	ti.PromptStyle = keyStyle
	ti.CharLimit = 80
	ti.SetValue(initial.SearchRaw)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))

	return Model{
		engine:    d,
		updates:   updates,
		view:      initial,
		search:    ti,
		spinner:   s,
		noticeTTL: DefaultNoticeTTL,
	}
}

// WithNoticeTTL overrides DefaultNoticeTTL.
func (m Model) WithNoticeTTL(d time.Duration) Model {
	m.noticeTTL = d
	return m
}

// Init starts the spinner and the view feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForView(m.updates))
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.measure()
		return m, nil

	case viewMsg:
		return m.applyView(engine.View(msg))

	case engineStopped:
		return m, tea.Quit

	case noticeExpired:
		if m.view.Notice != nil && msg.key == m.noticeKey {
			m.engine.Dispatch(engine.DismissNotice{})
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyView(v engine.View) (tea.Model, tea.Cmd) {
	m.view = v
	if v.Selected == nil {
		m.detail = false
	}
	if !m.searching && m.search.Value() != v.SearchRaw {
		m.search.SetValue(v.SearchRaw)
	}
	m.measure()

	cmds := []tea.Cmd{waitForView(m.updates)}
	if v.Notice != nil {
		if key := v.Notice.At.UnixNano(); key != m.noticeKey {
			m.noticeKey = key
			cmds = append(cmds, tea.Tick(m.noticeTTL, func(time.Time) tea.Msg {
				return noticeExpired{key: key}
			}))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.engine.Dispatch(engine.SearchInput{Text: after})
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.view
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "enter":
		if v.Selected != nil {
			m.detail = !m.detail
			m.offset = 0
			m.measure()
		}
		return m, nil
	case "esc":
		if m.detail {
			m.detail = false
			m.measure()
		}
		return m, nil
	case "tab", "]":
		m.engine.Dispatch(engine.SelectItem{ID: nextItem(v.Items, v.Selected, 1)})
	case "shift+tab", "[":
		m.engine.Dispatch(engine.SelectItem{ID: nextItem(v.Items, v.Selected, -1)})
	case "p":
		if v.Selected != nil && v.Actions.Apply {
			m.engine.Dispatch(engine.Apply{ID: v.Selected.ID})
		}
	case "u":
		if v.Selected != nil && v.Actions.Consume {
			m.engine.Dispatch(engine.Consume{ID: v.Selected.ID})
		}

	case "/":
		m.searching = true
		return m, m.search.Focus()

	case "s":
		m.engine.Dispatch(engine.SelectSector{ID: nextSector(v.Sectors, v.Filters.SectorID)})
	case "j":
		if len(v.JobOptions) > 0 {
			m.engine.Dispatch(engine.SelectJob{ID: nextJob(v.JobOptions, v.Filters.JobID)})
		}
	case "l":
		m.engine.Dispatch(engine.SelectCity{City: nextString(v.Cities, v.Filters.City)})
	case "t":
		m.engine.Dispatch(engine.SelectContractType{ContractType: nextString(v.ContractTypes, v.Filters.ContractType)})
	case "a":
		m.engine.Dispatch(engine.SelectStatus{Status: (v.Filters.Status + 1) % 3})
	case "c":
		m.search.SetValue("")
		m.engine.Dispatch(engine.ClearFilters{})

	case "left", "h":
		m.engine.Dispatch(engine.PrevPage{})
	case "right", "n":
		m.engine.Dispatch(engine.NextPage{})
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		page, _ := strconv.Atoi(key)
		m.engine.Dispatch(engine.GoToPage{Page: page})

	case "down":
		m.scroll(1)
	case "pgdown", " ":
		m.scroll(m.bodyHeight())
	case "up":
		m.scroll(-1)
	case "pgup":
		m.scroll(-m.bodyHeight())
	case "m":
		m.engine.Dispatch(engine.LoadMore{})

	case "r":
		if v.Notice != nil && v.Notice.Retryable {
			m.engine.Dispatch(engine.Retry{})
		} else {
			m.engine.Dispatch(engine.Refresh{})
		}
	case "R":
		m.engine.Dispatch(engine.Refresh{})
	case "x":
		m.engine.Dispatch(engine.DismissNotice{})
	}
	return m, nil
}

// scroll moves the window and reports the position to the engine, which
// loads more near the bottom of an infinite listing.
func (m *Model) scroll(delta int) {
	m.offset += delta
	m.clampOffset()
	if m.view.Mode != config.ModeInfinite || delta <= 0 || m.detail {
		return
	}
	m.engine.Dispatch(engine.Scroll{Position: accumulator.ScrollPosition{
		ScrollTop:    m.offset,
		ClientHeight: m.bodyHeight(),
		ScrollHeight: m.lines,
	}})
}

func (m *Model) measure() {
	m.lines = len(strings.Split(m.render(), "\n"))
	m.clampOffset()
}

func (m *Model) clampOffset() {
	if limit := m.lines - m.bodyHeight(); m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// bodyHeight is the number of lines available above the search and key bars.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) render() string {
	opts := view.Options{Width: m.width, Spinner: m.spinner.View()}
	if m.detail {
		return view.RenderDetail(m.view, opts)
	}
	return view.Render(m.view, opts)
}

// View renders the UI.
func (m Model) View() string {
	content := m.render()
	if m.height > 0 {
		lines := strings.Split(content, "\n")
		end := m.offset + m.bodyHeight()
		if end > len(lines) {
			end = len(lines)
		}
		start := m.offset
		if start > end {
			start = end
		}
		content = strings.Join(lines[start:end], "\n")
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.keyBar())
	}
	return b.String()
}

func (m Model) keyBar() string {
	hints := [][2]string{
		{"/", "search"},
		{"s/j", "sector/job"},
		{"l", "city"},
		{"t", "contract"},
		{"c", "clear"},
	}
	if m.view.Mode == config.ModeInfinite {
		hints = append(hints, [2]string{"↓/m", "more"})
	} else {
		hints = append(hints, [2]string{"←/→", "page"})
	}
	hints = append(hints, [2]string{"[/]", "select"})
	if m.view.Selected != nil {
		hints = append(hints, [2]string{"enter", "detail"})
	}
	if m.view.Actions.Apply {
		hints = append(hints, [2]string{"p", "apply"})
	}
	if m.view.Actions.Consume {
		hints = append(hints, [2]string{"u", "unlock"})
	}
	hints = append(hints, [2]string{"r", "refresh"}, [2]string{"q", "quit"})

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, keyStyle.Render(h[0])+hintStyle.Render(":"+h[1]))
	}
	return barStyle.Render(strings.Join(parts, " "))
}

// Current returns the latest engine view (for testing).
func (m Model) Current() engine.View {
	return m.view
}

// Detail reports whether the selected item's detail is shown.
func (m Model) Detail() bool {
	return m.detail
}

// Searching reports whether the search box has focus.
func (m Model) Searching() bool {
	return m.searching
}

func nextSector(sectors []models.Sector, current int64) int64 {
	ids := make([]int64, len(sectors))
	for i, s := range sectors {
		ids[i] = s.ID
	}
	return nextID(ids, current)
}

func nextJob(jobs []models.Job, current int64) int64 {
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return nextID(ids, current)
}

// nextID cycles through ids and back to 0 (no selection) after the last.
func nextID(ids []int64, current int64) int64 {
	if current == 0 {
		if len(ids) == 0 {
			return 0
		}
		return ids[0]
	}
	for i, id := range ids {
		if id == current && i+1 < len(ids) {
			return ids[i+1]
		}
	}
	return 0
}

func nextString(values []string, current string) string {
	if current == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	for i, v := range values {
		if v == current && i+1 < len(values) {
			return values[i+1]
		}
	}
	return ""
}

// nextItem moves the selection by step through items, wrapping around.
// Without a visible selection it starts at the first (or last) item.
func nextItem(items []models.ListingItem, selected *models.ListingItem, step int) int64 {
	if len(items) == 0 {
		return 0
	}
	current := -1
	if selected != nil {
		for i, it := range items {
			if it.ID == selected.ID {
				current = i
				break
			}
		}
	}
	if current < 0 {
		if step < 0 {
			return items[len(items)-1].ID
		}
		return items[0].ID
	}
	next := (current + step + len(items)) % len(items)
	return items[next].ID
}
