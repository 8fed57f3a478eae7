package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/history"
)

// Stats renders the dashboard figures side by side.
func Stats(s history.Stats) string {
	box := func(label, value string) string {
		return StatBox.Render(Label.Render(label) + "\n" + Value.Bold(true).Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		box("Total Analyses", fmt.Sprint(s.Total)),
		box("This Month", fmt.Sprint(s.ThisMonth)),
		box("Avg Score", analysis.FormatScore(s.Average)),
	)
}

const (
	colDate  = 16
	colType  = 6
	colScore = 6
	colGrade = 5
	colID    = 8
)

// HistoryTable renders entries as a fixed-width table. selected highlights
// one row; pass -1 for none.
func HistoryTable(entries []history.Entry, width, selected int) string {
	if len(entries) == 0 {
		return Muted.Render("No analyses yet.")
	}

	width = clampWidth(width)
	preview := width - colDate - colType - colScore - colGrade - colID - 5
	if preview < 10 {
		preview = 10
	}

	row := func(date, typ, score, grade, prev, id string) string {
		return strings.Join([]string{
			runewidth.FillRight(runewidth.Truncate(date, colDate, ""), colDate),
			runewidth.FillRight(typ, colType),
			runewidth.FillLeft(score, colScore),
			runewidth.FillRight(" "+grade, colGrade),
			runewidth.FillRight(runewidth.Truncate(oneLine(prev), preview, "…"), preview),
			runewidth.Truncate(id, colID, ""),
		}, " ")
	}

	lines := []string{TableHeader.Render(row("Date", "Type", "Score", "Grade", "Content", "ID"))}
	for i, e := range entries {
		score := "-"
		if e.TrustScore != nil {
			score = analysis.FormatScore(*e.TrustScore)
		}
		date := "-"
		if !e.CreatedAt.IsZero() {
			date = e.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		line := row(date, e.ContentType, score, e.Grade, e.Preview, e.ID)
		switch {
		case i == selected:
			line = SelectedRow.Render(line)
		case e.TrustScore != nil:
			grade := lipgloss.NewStyle().Foreground(bandColor(analysis.ScoreBand(*e.TrustScore)))
			line = grade.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
