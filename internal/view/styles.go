package view

import "github.com/charmbracelet/lipgloss"

// Colors used by the listing screens.
var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorMuted     = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212") // pink
	colorSuccess   = lipgloss.Color("78")
	colorWarning   = lipgloss.Color("214")
	colorError     = lipgloss.Color("196")
)

// Header style for the listing title bar.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// FilterBar style for the active filters line.
var FilterBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// FilterLabel style for filter names ("sector:", "city:").
var FilterLabel = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// Card style wraps one listing item.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// CardSelected marks the selected item.
var CardSelected = Card.BorderForeground(colorHighlight)

var CardTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

var CardMeta = lipgloss.NewStyle().
	Foreground(colorSecondary)

var CardBody = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250"))

// Badge style for contract types and status flags.
var Badge = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginRight(1)

var BadgeSuccess = Badge.Foreground(colorSuccess)

// Panel style for the loading, empty and failed states.
var Panel = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(1, 2)

var PanelError = Panel.Foreground(colorError)

// PageCurrent style for the current page button.
var PageCurrent = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var PageOther = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

var PageDisabled = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// Footer style for range and load-more status.
var Footer = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// Toast styles per notice level.
var (
	ToastError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(colorError).
			Bold(true).
			Padding(0, 1)

	ToastWarning = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorWarning).
			Padding(0, 1)

	ToastInfo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(colorPrimary).
			Padding(0, 1)
)
