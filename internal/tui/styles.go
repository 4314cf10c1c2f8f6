package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the repository list and the preview pane.
var (
	accentColor  = lipgloss.Color("#7C3AED")
	okColor      = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	mutedColor   = lipgloss.Color("#6B7280")
	failColor    = lipgloss.Color("#EF4444")
)

var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 1)

	// Repository rows: the cursor row is highlighted, the rest are plain.
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 0, 0, 0)

	// Deploy state badges: done, unchanged or dry run, failed.
	successBadge = lipgloss.NewStyle().
			Foreground(okColor).
			Bold(true)

	warningBadge = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	errorBadge = lipgloss.NewStyle().
			Foreground(failColor).
			Bold(true)

	// commit, push and dry-run switches in the options line
	optionOnStyle = lipgloss.NewStyle().
			Foreground(okColor)

	optionOffStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Lines the deploy would add to or remove from the target file.
	addedStyle   = lipgloss.NewStyle().Foreground(okColor)
	deletedStyle = lipgloss.NewStyle().Foreground(failColor)
)
