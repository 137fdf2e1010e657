package tui

import "github.com/balkashynov/taskpilot/internal/models"

// Color constants for the taskpilot theme
const (
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240"

	// Accents
	ColorAccentMain   = "#7C3AED" // Logo, active borders
	ColorAccentBright = "#A78BFA" // Highlights, assistant label

	// State
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

// statusColor picks the board color for a status
func statusColor(s models.Status) string {
	switch s {
	case models.StatusInProgress:
		return ColorAccentBright
	case models.StatusCompleted:
		return ColorSuccess
	case models.StatusArchived:
		return ColorDisabledText
	default:
		return ColorSecondaryText
	}
}

func priorityColor(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return ColorError
	case models.PriorityMedium:
		return ColorWarning
	default:
		return ColorSecondaryText
	}
}
