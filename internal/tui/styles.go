package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the entry prompt
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - focused cell, title
	SuccessColor = lipgloss.Color("#43BF6D") // Green - verified
	ErrorColor   = lipgloss.Color("#FF5555") // Red - failed verification
	WarningColor = lipgloss.Color("#FFA500") // Orange - locked
	MutedColor   = lipgloss.Color("#626262") // Gray - empty cells, hints
	TextColor    = lipgloss.Color("#FFFFFF") // White - digits
)

// Layout constants
const (
	MinTerminalWidth = 40 // Minimum supported terminal width
	MaxContentWidth  = 80 // Maximum content width before capping
)

// Cell rendering styles. A cell is a small bordered box holding one digit.
var (
	// CellStyle is the resting style for an unfocused cell
	CellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Foreground(TextColor).
			Padding(0, 1).
			Bold(true)

	// FocusedCellStyle highlights the cell that receives input
	FocusedCellStyle = CellStyle.
				BorderForeground(PrimaryColor).
				Foreground(PrimaryColor)

	// ErrorCellStyle is applied to every cell while the error state shows
	ErrorCellStyle = CellStyle.
			BorderForeground(ErrorColor).
			Foreground(ErrorColor)

	// SuccessCellStyle is applied to every cell once the code verifies
	SuccessCellStyle = CellStyle.
				BorderForeground(SuccessColor).
				Foreground(SuccessColor)

	// TitleStyle is for the prompt title line
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// HintStyle is for secondary instruction text
	HintStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// StatusVerifyingStyle is for the "verifying" status line
	StatusVerifyingStyle = lipgloss.NewStyle().
				Foreground(WarningColor)

	// StatusSuccessStyle is for the success message
	StatusSuccessStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// StatusErrorStyle is for the failure message
	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true)

	// StatusLockedStyle is for the attempt-limit message
	StatusLockedStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	// SpinnerStyle is for the verification spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
