package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/abelbrown/truthlens/internal/analysis"
)

const minWidth = 40

func clampWidth(width int) int {
	if width < minWidth {
		return minWidth
	}
	return width
}

// inner is the usable text width inside a card of the given outer width.
func inner(width int) int {
	return clampWidth(width) - Card.GetHorizontalFrameSize()
}

// card draws a titled, badged box around body lines.
func card(title string, badge analysis.Badge, width int, body []string) string {
	w := inner(width)
	head := CardTitle.Render(title)
	if badge.Text != "" {
		b := BadgeStyle(badge.Severity).Render(badge.Text)
		gap := w - lipgloss.Width(head) - lipgloss.Width(b)
		if gap < 1 {
			gap = 1
		}
		head += strings.Repeat(" ", gap) + b
	}
	lines := append([]string{head, ""}, body...)
	return Card.Width(w + Card.GetHorizontalPadding()).Render(strings.Join(lines, "\n"))
}

func metric(label, value string) string {
	return Label.Render(label+": ") + Value.Render(value)
}

// meter is a labelled 0-1 bar.
func meter(label string, v float64, width int, sev analysis.Severity) string {
	// label column, two spaces, and room for "100.0%"
	barWidth := min(width-20-2-6, 30)
	if barWidth < 6 {
		barWidth = 6
	}
	bar := progress.New(
		progress.WithSolidFill(string(severityColor(sev))),
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth),
	)
	return fmt.Sprintf("%s %s %s", Label.Render(fmt.Sprintf("%-20s", label)), bar.ViewAs(v), Value.Render(analysis.Percent(v, 1)))
}

// list renders a heading and wrapped bullet items.
func list(heading string, items []string, width int) []string {
	out := []string{"", SubHeading.Render(heading)}
	for _, it := range items {
		wrapped := wordwrap.String(it, width-2)
		out = append(out, "• "+strings.ReplaceAll(wrapped, "\n", "\n  "))
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "✓ yes"
	}
	return "✗ no"
}

// FakeNews renders the fake-news card.
func FakeNews(d analysis.FakeNews, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		metric("Confidence", analysis.Percent(d.Confidence, 1)),
		metric("Risk level", d.RiskLevel),
		"",
		meter("Fake probability", d.Probabilities.Fake, w, analysis.SeverityHigh),
		meter("Real probability", d.Probabilities.Real, w, analysis.SeverityLow),
	}
	return card(analysis.KindFakeNews.Title(), p.Badge, width, body)
}

// Source renders the source credibility card.
func Source(d analysis.SourceValidation, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		metric("Domain", d.Domain),
		meter("Credibility", d.CredibilityScore, w, p.Badge.Severity),
		metric("HTTPS", yesNo(bool(d.HTTPSEnabled))),
		metric("NewsAPI verified", yesNo(bool(d.NewsAPIVerified))),
	}
	if p.Show.Warnings {
		body = append(body, list("Warnings", d.Warnings, w)...)
	}
	return card(analysis.KindSource.Title(), p.Badge, width, body)
}

// Sentiment renders the emotional manipulation card.
func Sentiment(d analysis.Sentiment, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		meter("Manipulation", d.ManipulationScore.Score, w, p.Badge.Severity),
		meter("Emotional intensity", d.EmotionalIntensity, w, analysis.SeverityMedium),
		meter("Subjectivity", d.Subjectivity, w, analysis.SeverityMedium),
	}
	if p.Show.Tactics {
		body = append(body, list("Detected tactics", d.ManipulationScore.DetectedTactics, w)...)
	}
	if p.Show.RedFlags {
		body = append(body, list("Red flags", d.RedFlags, w)...)
	}
	return card(analysis.KindSentiment.Title(), p.Badge, width, body)
}

// Bias renders the bias card.
func Bias(d analysis.Bias, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		meter("Overall bias", d.OverallBiasScore, w, p.Badge.Severity),
		meter("Source diversity", d.SourceDiversity, w, analysis.SeverityLow),
		meter("Attribution", d.AttributionScore, w, analysis.SeverityLow),
	}
	if p.Show.BiasedWords {
		body = append(body, "", SubHeading.Render("Biased words"),
			wordwrap.String(strings.Join(d.BiasedWordsFound, ", "), w))
	}
	return card(analysis.KindBias.Title(), p.Badge, width, body)
}

// FactCheck renders the fact-check card.
func FactCheck(d analysis.FactCheck, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		metric("Claims found", fmt.Sprint(d.ClaimsFound)),
		meter("Verification", d.OverallVerification.Score, w, p.Badge.Severity),
	}
	if p.Show.Claims {
		items := make([]string, 0, len(d.VerifiedClaims))
		for _, c := range d.VerifiedClaims {
			verdict := c.Rating
			if c.Source != "" {
				verdict += " · " + c.Source
			}
			items = append(items, fmt.Sprintf("%q\n%s", c.Claim, verdict))
		}
		body = append(body, list("Verified claims", items, w)...)
	}
	return card(analysis.KindFactCheck.Title(), p.Badge, width, body)
}

// Image renders the image verification card.
func Image(d analysis.ImageVerification, p analysis.Presentation, width int) string {
	w := inner(width)
	body := []string{
		meter("Image trust", d.OverallTrustScore, w, p.Badge.Severity),
	}
	if p.Show.Manipulation {
		md := d.ManipulationDetection
		line := metric("Likely manipulated", yesNo(bool(md.LikelyManipulated)))
		if md.Confidence != "" {
			line += Label.Render(fmt.Sprintf(" (confidence %s)", md.Confidence))
		}
		body = append(body, line)
	}
	if p.Show.ReverseSearch {
		body = append(body, metric("Similar images found", fmt.Sprint(d.ReverseSearch.SimilarImagesFound)))
		if p.Show.TopSources {
			body = append(body, list("Top sources", d.ReverseSearch.TopSources, w)...)
		}
	}
	if p.Show.Warnings {
		body = append(body, list("Warnings", d.Warnings, w)...)
	}
	return card(analysis.KindImage.Title(), p.Badge, width, body)
}

// Section dispatches on the section kind.
func Section(s analysis.SectionView, width int) string {
	switch {
	case s.FakeNews != nil:
		return FakeNews(*s.FakeNews, s.Presentation, width)
	case s.Source != nil:
		return Source(*s.Source, s.Presentation, width)
	case s.Sentiment != nil:
		return Sentiment(*s.Sentiment, s.Presentation, width)
	case s.Bias != nil:
		return Bias(*s.Bias, s.Presentation, width)
	case s.FactCheck != nil:
		return FactCheck(*s.FactCheck, s.Presentation, width)
	case s.Image != nil:
		return Image(*s.Image, s.Presentation, width)
	}
	return ""
}
