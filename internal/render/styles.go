// Package render turns view models into terminal text. Every function is
// stateless and knows nothing about the network or the lifecycle; it draws
// exactly what it is handed.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/truthlens/internal/analysis"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Amber
	colorDanger    = lipgloss.Color("196") // Red
)

// Card frames one section.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

// CardTitle style for section headings.
var CardTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// Label style for metric names.
var Label = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Value style for metric values.
var Value = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// SubHeading style for list headings inside a card.
var SubHeading = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// Muted style for notes and hints.
var Muted = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true)

// ErrorStyle for the failure view heading.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true)

// ErrorCard frames the failure view.
var ErrorCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorDanger).
	Padding(0, 1)

// TableHeader style for the history table heading row.
var TableHeader = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// SelectedRow style for the highlighted history row.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// StatBox style for the dashboard figures.
var StatBox = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	BorderForeground(colorSecondary).
	Padding(0, 2).
	MarginRight(1)

func severityColor(s analysis.Severity) lipgloss.Color {
	switch s {
	case analysis.SeverityLow:
		return colorSuccess
	case analysis.SeverityMedium:
		return colorWarning
	}
	return colorDanger
}

func bandColor(b analysis.Band) lipgloss.Color {
	switch b {
	case analysis.BandHigh:
		return colorSuccess
	case analysis.BandMedium:
		return colorWarning
	}
	return colorDanger
}

// BadgeStyle returns the style for a badge of the given severity.
func BadgeStyle(s analysis.Severity) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("16")).
		Background(severityColor(s)).
		Padding(0, 1)
}

// IconGlyph is the symbol drawn for a grade icon.
func IconGlyph(i analysis.Icon) string {
	switch i {
	case analysis.IconPositive:
		return "✓"
	case analysis.IconWarning:
		return "⚠"
	}
	return "✗"
}
