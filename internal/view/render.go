// Package view renders listing views as text for the terminal.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobboard-listing/internal/common/config"
	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/common/textutil"
	"jobboard-listing/internal/listing/accumulator"
	"jobboard-listing/internal/listing/engine"
	"jobboard-listing/internal/models"
)

const (
	descriptionLength = 160
	defaultWidth      = 80
	dateLayout        = "Jan 2, 2006"
)

// Options tunes Render.
type Options struct {
	Width int
	// Spinner is the current spinner frame, shown while loading.
	Spinner string
}

// Render lays out a whole listing screen: header, filters, content, pager
// and notice toast.
func Render(v engine.View, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	parts := []string{
		RenderHeader(v, width),
		RenderFilters(v, width),
		RenderBody(v, width, opts.Spinner),
	}
	if footer := RenderFooter(v); footer != "" {
		parts = append(parts, footer)
	}
	if toast := RenderNotice(v.Notice, width); toast != "" {
		parts = append(parts, toast)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderHeader renders the title bar with the loaded/visible counters.
func RenderHeader(v engine.View, width int) string {
	title := strings.ToUpper(v.Listing)
	counts := fmt.Sprintf("%d shown / %d loaded", v.Visible, v.Loaded)
	if v.Meta.TotalCount > 0 {
		counts += fmt.Sprintf(" / %d total", v.Meta.TotalCount)
	}
	padding := width - lipgloss.Width(title) - lipgloss.Width(counts) - 2
	if padding < 1 {
		padding = 1
	}
	return Header.Width(width).Render(title + strings.Repeat(" ", padding) + counts)
}

// RenderFilters renders the active filters. The raw search text is shown
// with a marker while it has not settled yet.
func RenderFilters(v engine.View, width int) string {
	var fields []string
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, FilterLabel.Render(label+":")+" "+value)
		}
	}

	search := v.SearchRaw
	if v.SearchPending {
		search += " …"
	}
	add("search", search)
	if v.Filters.SectorID != 0 {
		add("sector", sectorName(v.Sectors, v.Filters.SectorID))
	}
	if v.Filters.JobID != 0 {
		add("job", jobName(v.JobOptions, v.Filters.JobID))
	}
	if v.Filters.OrganizationID != 0 {
		add("company", organizationName(v.Organizations, v.Filters.OrganizationID))
	}
	add("city", v.Filters.City)
	add("contract", v.Filters.ContractType)
	if v.Filters.Status != models.Any {
		add("status", v.Filters.Status.String())
	}
	for _, key := range sortedKeys(v.Filters.Extra) {
		add(key, v.Filters.Extra[key])
	}

	if len(fields) == 0 {
		return FilterBar.Width(width).Render("no filters")
	}
	return FilterBar.Width(width).Render(strings.Join(fields, "  "))
}

// RenderBody renders the cards, or the panel matching the view status.
func RenderBody(v engine.View, width int, spinner string) string {
	switch v.Status {
	case engine.StatusLoading:
		return Panel.Render(strings.TrimSpace(spinner + " Loading " + noun(v.Kind) + "..."))
	case engine.StatusFailed:
		msg := "Could not load " + noun(v.Kind) + "."
		if v.Notice != nil && v.Notice.Message != "" {
			msg += " " + v.Notice.Message
		}
		return PanelError.Render(msg + "\nPress r to try again.")
	case engine.StatusEmpty:
		msg := "No " + noun(v.Kind) + " found."
		if !v.Filters.IsEmpty() {
			msg += "\nTry changing or clearing the filters."
		}
		return Panel.Render(msg)
	}

	cards := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		selected := v.Selected != nil && v.Selected.ID == item.ID
		cards = append(cards, renderCard(item, v.Kind, width, selected))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if v.Refreshing {
		body = Footer.Render(strings.TrimSpace(spinner+" Updating...")) + "\n" + body
	}
	return body
}

// RenderCard renders one item.
func RenderCard(item models.ListingItem, kind string, width int) string {
	return renderCard(item, kind, width, false)
}

func renderCard(item models.ListingItem, kind string, width int, selected bool) string {
	style, title := Card, item.Title
	if selected {
		style, title = CardSelected, "› "+title
	}
	lines := []string{CardTitle.Render(title)}
	if meta := cardMeta(item); meta != "" {
		lines = append(lines, CardMeta.Render(meta))
	}
	if badges := renderBadges(item, kind); badges != "" {
		lines = append(lines, badges)
	}
	if desc := textutil.Truncate(textutil.StripHTML(item.Description), descriptionLength); desc != "" {
		lines = append(lines, CardBody.Render(desc))
	}
	return style.Width(boxWidth(width)).Render(strings.Join(lines, "\n"))
}

func cardMeta(item models.ListingItem) string {
	var meta []string
	for _, s := range []string{item.OrganizationName, item.Location} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if path := categoryPath(item); path != "" {
		meta = append(meta, path)
	}
	if !item.CreatedAt.IsZero() {
		meta = append(meta, item.CreatedAt.Format(dateLayout))
	}
	return strings.Join(meta, " · ")
}

// boxWidth is the width of a bordered box inside the screen.
func boxWidth(width int) int {
	if width-2 < 20 {
		return 20
	}
	return width - 2
}

func renderBadges(item models.ListingItem, kind string) string {
	var badges []string
	if item.ContractType != "" {
		badges = append(badges, Badge.Render(item.ContractType))
	}
	if kind == models.KindCandidates {
		if years := item.Attr("years_of_experience"); years != "" && years != "0" {
			badges = append(badges, Badge.Render(years+" yrs exp"))
		}
		if level := item.Attr("education_level"); level != "" {
			badges = append(badges, Badge.Render(level))
		}
	} else if salary := item.Attr("salary"); salary != "" {
		badges = append(badges, Badge.Render(salary))
	}
	if item.StatusFlag != nil && *item.StatusFlag {
		label := "applied"
		if kind == models.KindCandidates {
			label = "unlocked"
		}
		badges = append(badges, BadgeSuccess.Render(label))
	}
	return strings.Join(badges, "")
}

// RenderFooter renders the pager for page-switch listings and the
// load-more status for infinite ones. It is empty until something loaded.
func RenderFooter(v engine.View) string {
	if v.Status == engine.StatusLoading || v.Status == engine.StatusFailed {
		return ""
	}
	if v.Mode == config.ModeInfinite {
		return Footer.Render(loadMoreStatus(v))
	}
	if v.Status == engine.StatusEmpty {
		return ""
	}

	rangeText := fmt.Sprintf("Showing %d–%d of %d", v.From, v.To, total(v))
	return lipgloss.JoinVertical(lipgloss.Left, RenderPager(v), Footer.Render(rangeText))
}

// RenderPager renders the previous/next arrows and the page buttons.
func RenderPager(v engine.View) string {
	var b strings.Builder
	if v.CanPrev {
		b.WriteString(PageOther.Render("‹"))
	} else {
		b.WriteString(PageDisabled.Render("‹"))
	}
	for _, n := range v.PageNumbers {
		switch {
		case n == accumulator.Ellipsis:
			b.WriteString(PageDisabled.Render("…"))
		case n == v.Page:
			b.WriteString(PageCurrent.Render(strconv.Itoa(n)))
		default:
			b.WriteString(PageOther.Render(strconv.Itoa(n)))
		}
	}
	if v.CanNext {
		b.WriteString(PageOther.Render("›"))
	} else {
		b.WriteString(PageDisabled.Render("›"))
	}
	return b.String()
}

func loadMoreStatus(v engine.View) string {
	switch {
	case v.LoadingMore:
		return fmt.Sprintf("%d loaded · loading more...", v.Loaded)
	case v.HasMore:
		return fmt.Sprintf("%d loaded · scroll for more", v.Loaded)
	default:
		return fmt.Sprintf("%d loaded · end of results", v.Loaded)
	}
}

// RenderNotice renders the toast for n, or "" when there is none.
func RenderNotice(n *apperrors.Notice, width int) string {
	if n == nil {
		return ""
	}
	msg := n.Message
	if n.Retryable {
		msg += "  (r: retry · x: dismiss)"
	} else {
		msg += "  (x: dismiss)"
	}
	style := ToastInfo
	switch n.Level {
	case apperrors.NoticeError:
		style = ToastError
	case apperrors.NoticeWarning:
		style = ToastWarning
	}
	return style.Width(width).Render(msg)
}

func total(v engine.View) int {
	if v.Meta.TotalCount > 0 {
		return v.Meta.TotalCount
	}
	return v.Visible
}

func noun(kind string) string {
	if kind == models.KindCandidates {
		return "candidates"
	}
	return "offers"
}

func categoryPath(item models.ListingItem) string {
	switch {
	case item.CategoryName != "" && item.SubCategoryName != "":
		return item.CategoryName + " / " + item.SubCategoryName
	case item.CategoryName != "":
		return item.CategoryName
	default:
		return item.SubCategoryName
	}
}

func sectorName(sectors []models.Sector, id int64) string {
	for _, s := range sectors {
		if s.ID == id {
			return s.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func jobName(jobs []models.Job, id int64) string {
	for _, j := range jobs {
		if j.ID == id {
			return j.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func organizationName(orgs []models.Organization, id int64) string {
	for _, o := range orgs {
		if o.ID == id {
			return o.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
