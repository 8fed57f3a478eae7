package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/abelbrown/truthlens/internal/analysis"
)

// ScoreCard renders the overall trust score with its gauge, grade icon,
// recommendation and optional breakdown.
func ScoreCard(c analysis.ScoreCard, width int) string {
	w := inner(width)
	color := bandColor(c.Band)

	score := lipgloss.NewStyle().Bold(true).Foreground(color).
		Render(analysis.FormatScore(c.Score) + "/100")
	grade := lipgloss.NewStyle().Bold(true).Foreground(color).
		Render(fmt.Sprintf("%s Grade %s", IconGlyph(c.Icon), c.Grade))

	gauge := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithoutPercentage(),
		progress.WithWidth(w),
	)

	lines := []string{
		CardTitle.Render("Overall Trust Score"),
		"",
		score + "   " + grade,
		gauge.ViewAs(c.Score / 100),
	}
	if c.Recommendation != "" {
		lines = append(lines, "", wordwrap.String(c.Recommendation, w))
	}
	if len(c.Breakdown) > 0 {
		lines = append(lines, "", SubHeading.Render("Score breakdown"))
		for _, b := range c.Breakdown {
			lines = append(lines, meter(b.Label, b.Value/100, w, severityForScore(b.Value)))
		}
	}

	return Card.BorderForeground(color).
		Width(w + Card.GetHorizontalPadding()).
		Render(strings.Join(lines, "\n"))
}

// severityForScore colors a 0-100 sub-score the way the overall band does.
func severityForScore(v float64) analysis.Severity {
	switch analysis.ScoreBand(v) {
	case analysis.BandHigh:
		return analysis.SeverityLow
	case analysis.BandMedium:
		return analysis.SeverityMedium
	}
	return analysis.SeverityHigh
}

// NoSections is shown when only the score card applies to the input.
const NoSections = "No detailed sections apply to this input."

// Result renders the score card followed by every displayable section.
func Result(vm analysis.ViewModel, width int) string {
	parts := []string{ScoreCard(vm.Score, width)}
	if vm.Empty() {
		parts = append(parts, Muted.Render(NoSections))
	}
	for _, s := range vm.Sections {
		parts = append(parts, Section(s, width))
	}
	return strings.Join(parts, "\n")
}

// Failure renders the error view.
func Failure(message string, width int) string {
	w := inner(width)
	body := ErrorStyle.Render("✗ Analysis failed") + "\n\n" + wordwrap.String(message, w)
	return ErrorCard.Width(w + ErrorCard.GetHorizontalPadding()).Render(body)
}
