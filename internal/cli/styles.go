// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// AccentColor is the main theme color.
	AccentColor = lipgloss.Color("#7AA2F7")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#9ECE6A")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#F7768E")
	// SubtleColor indicates less prominent output.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles and banners.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// AssistantStyle formats replies spoken back to the user.
	AssistantStyle = lipgloss.NewStyle().
			Foreground(AccentColor)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats hints and secondary text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// TableHeaderStyle is used for table header rows.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(SubtleColor)
)

// FormatAssistant formats a reply line from the ledger.
func FormatAssistant(message string) string {
	return AssistantStyle.Render("ledgervox: " + message)
}

// FormatSuccess formats a success message.
func FormatSuccess(message string) string {
	return SuccessStyle.Render("✓ " + message)
}

// FormatError formats an error message.
func FormatError(message string) string {
	return ErrorStyle.Render("✗ " + message)
}

// FormatHint formats a secondary hint line.
func FormatHint(message string) string {
	return SubtleStyle.Render(message)
}

// FormatTitle formats a banner title.
func FormatTitle(title string) string {
	return TitleStyle.Render(title)
}
