package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Primary colors
	ColorPrimary = lipgloss.Color("#DB2777") // Pink

	// Status colors
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorInfo    = lipgloss.Color("#3B82F6") // Blue

	// UI colors
	ColorBorder      = lipgloss.Color("#6B7280") // Gray
	ColorBorderLight = lipgloss.Color("#9CA3AF") // Light gray
	ColorBackground  = lipgloss.Color("#1F2937") // Dark gray
	ColorText        = lipgloss.Color("#F9FAFB") // Almost white
	ColorTextMuted   = lipgloss.Color("#9CA3AF") // Gray
	ColorHighlight   = lipgloss.Color("#F472B6") // Light pink
)

type Theme struct {
	PanelBorder lipgloss.Border

	HeaderStyle     lipgloss.Style
	NormalTextStyle lipgloss.Style
	MutedTextStyle  lipgloss.Style
	HighlightStyle  lipgloss.Style

	SelectedItemStyle lipgloss.Style
	ErrorStyle        lipgloss.Style
	SuccessStyle      lipgloss.Style
	WarningStyle      lipgloss.Style

	FieldValueStyle lipgloss.Style
	EditingStyle    lipgloss.Style

	CardStyle         lipgloss.Style
	SelectedCardStyle lipgloss.Style
}

func DefaultTheme() *Theme {
	return &Theme{
		PanelBorder: lipgloss.RoundedBorder(),

		HeaderStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1),

		NormalTextStyle: lipgloss.NewStyle().
			Foreground(ColorText),

		MutedTextStyle: lipgloss.NewStyle().
			Foreground(ColorTextMuted),

		HighlightStyle: lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true),

		SelectedItemStyle: lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Background(lipgloss.Color("#500724")), // Dark pink

		ErrorStyle: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		SuccessStyle: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		WarningStyle: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		FieldValueStyle: lipgloss.NewStyle().
			Foreground(ColorText),

		EditingStyle: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Background(lipgloss.Color("#064E3B")). // Dark green
			Bold(true),

		CardStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Width(previewCardWidth-2).
			Padding(0, 1),

		SelectedCardStyle: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(ColorPrimary).
			Width(previewCardWidth-2).
			Padding(0, 1),
	}
}

const (
	IconFile       = "📄"
	IconFolder     = "📁"
	IconImage      = "🖼"
	IconCheck      = "✓"
	IconCross      = "✗"
	IconArrowRight = "▶"
	IconHourglass  = "⏳"
)

func RenderProgressBar(current, total int, width int, theme *Theme) string {
	if total == 0 || width < 3 {
		return ""
	}

	filled := (width - 2) * current / total
	bar := "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-2-filled) + "]"
	return theme.HighlightStyle.Render(bar)
}

func StatusBadge(text string, statusType string, theme *Theme) string {
	var style lipgloss.Style

	switch statusType {
	case "success":
		style = theme.SuccessStyle.Copy().Background(lipgloss.Color("#065F46"))
	case "error":
		style = theme.ErrorStyle.Copy().Background(lipgloss.Color("#7F1D1D"))
	case "warning":
		style = theme.WarningStyle.Copy().Background(lipgloss.Color("#78350F"))
	case "info":
		style = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Background(lipgloss.Color("#1E3A8A")).
			Bold(true)
	default:
		style = theme.NormalTextStyle
	}

	return style.Padding(0, 1).Render(text)
}

func KeyHelp(key, description string, theme *Theme) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1).
		Background(ColorBackground)

	return keyStyle.Render(key) + " " + theme.MutedTextStyle.Render(description)
}

func Separator(width int, char string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(char, max(width, 1)))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit < 4 || len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
