package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobboard-listing/internal/common/textutil"
	"jobboard-listing/internal/listing/engine"
	"jobboard-listing/internal/models"
)

// attributes shown in the detail, in order, with their labels.
var detailAttributes = []struct{ key, label string }{
	{"salary", "Salary"},
	{"years_of_experience", "Experience (years)"},
	{"education_level", "Education"},
	{"gender", "Gender"},
	{"video", "CV video"},
}

// RenderDetail lays out the selected item with its full description and
// the actions it offers. It falls back to Render when nothing is selected.
func RenderDetail(v engine.View, opts Options) string {
	if v.Selected == nil {
		return Render(v, opts)
	}
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	item := *v.Selected

	lines := []string{CardTitle.Render(item.Title)}
	if meta := cardMeta(item); meta != "" {
		lines = append(lines, CardMeta.Render(meta))
	}
	if badges := renderBadges(item, v.Kind); badges != "" {
		lines = append(lines, badges)
	}
	if desc := textutil.StripHTML(item.Description); desc != "" {
		lines = append(lines, "", CardBody.Width(boxWidth(width)-4).Render(desc))
	}

	var attrs []string
	for _, a := range detailAttributes {
		if value := item.Attr(a.key); value != "" {
			attrs = append(attrs, FilterLabel.Render(a.label+":")+" "+value)
		}
	}
	if len(attrs) > 0 {
		lines = append(lines, "", strings.Join(attrs, "\n"))
	}

	parts := []string{
		RenderHeader(v, width),
		Card.Width(boxWidth(width)).Render(strings.Join(lines, "\n")),
		RenderActions(v),
	}
	if toast := RenderNotice(v.Notice, width); toast != "" {
		parts = append(parts, toast)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// RenderActions renders the action line of the selected item: the key of
// each enabled action, or why it is not available.
func RenderActions(v engine.View) string {
	if v.Selected == nil {
		return ""
	}
	a := v.Actions

	var line string
	switch {
	case a.Pending:
		line = "Sending..."
	case v.Kind == models.KindCandidates:
		line = consumeStatus(v)
	case a.Done:
		line = BadgeSuccess.Render("applied") + " You already applied to this offer."
	case a.Apply:
		line = "p: apply to this offer"
	default:
		line = "Sign in as a candidate to apply."
	}
	return Footer.Render(line + "  ·  esc: back to list")
}

func consumeStatus(v engine.View) string {
	a := v.Actions
	switch {
	case a.Done:
		return BadgeSuccess.Render("unlocked") + " Contact details unlocked."
	case a.Consume:
		return fmt.Sprintf("u: unlock contact details (%d left on your plan)", v.Payment.CVVideoRemaining)
	case v.Payment == nil:
		return "No active plan. Subscribe to unlock candidates."
	case v.Payment.Status == models.PaymentPending:
		return "Your payment is pending. Unlocking is available once it completes."
	case !v.CanConsume():
		return "Your plan has no unlocks left. Upgrade to continue."
	default:
		return "Unlocking is not available for this listing."
	}
}
