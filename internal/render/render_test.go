package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/history"
)

func build(t *testing.T, body string) analysis.ViewModel {
	t.Helper()
	raw, err := analysis.DecodeResponse([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	return analysis.BuildViewModel(raw)
}

func TestResultScoreOnly(t *testing.T) {
	vm := build(t, `{"overall_trust_score": {"score": 50, "grade": "D", "recommendation": "Questionable"}}`)
	out := Result(vm, 80)

	for _, want := range []string{"Overall Trust Score", "50/100", "Grade D", "Questionable", NoSections} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResultRendersEverySection(t *testing.T) {
	vm := build(t, `{
		"overall_trust_score": {"score": 72.5, "grade": "B", "recommendation": "Generally reliable",
			"breakdown": {"fake_news_score": 80, "fact_check_score": 60}},
		"fake_news_detection": {"label": "REAL", "confidence": 0.9, "risk_level": "LOW",
			"probabilities": {"FAKE": 0.1, "REAL": 0.9}},
		"source_validation": {"domain": "reuters.com", "credibility_score": 0.95, "tier": "high",
			"https_enabled": true, "newsapi_verified": true, "warnings": []},
		"sentiment_analysis": {"manipulation_score": {"score": 0.2, "detected_tactics": ["urgency"]},
			"emotional_intensity": 0.3, "subjectivity": 0.4, "red_flags": []},
		"bias_detection": {"overall_bias_score": 0.1, "bias_level": "LOW", "source_diversity": 0.7,
			"attribution_score": 0.9, "biased_words_found": []},
		"fact_checking": {"claims_found": 1, "overall_verification": {"status": "MOSTLY_TRUE", "score": 0.8},
			"verified_claims": [{"claim": "Water is wet", "fact_check": {"rating": "True", "source": "PolitiFact"}}]},
		"image_verification": {"overall_trust_score": 0.8,
			"manipulation_detection": {"likely_manipulated": false, "confidence": 0.12},
			"reverse_search": {"status": "error"}, "warnings": []}
	}`)
	out := Result(vm, 90)

	for _, kind := range analysis.Kinds {
		if !strings.Contains(out, kind.Title()) {
			t.Errorf("output missing %q card", kind.Title())
		}
	}
	for _, want := range []string{"72.5/100", "Score breakdown", "Fake News Check", "reuters.com",
		"Detected tactics", "urgency", "Water is wet", "PolitiFact", "TRUSTWORTHY", "confidence 0.12"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	for _, hidden := range []string{"Red flags", "Biased words", "Similar images", "Warnings", NoSections} {
		if strings.Contains(out, hidden) {
			t.Errorf("output should not contain %q", hidden)
		}
	}
}

func TestSourceBadgeAndWarnings(t *testing.T) {
	d := analysis.SourceValidation{Domain: "example.biz", Tier: "low", Warnings: []string{"Domain not recognized"}}
	p := analysis.Presentation{Badge: analysis.SourceBadge(d), Show: analysis.Visibility{Warnings: true}}
	out := Source(d, p, 60)

	if !strings.Contains(out, "LOW") || !strings.Contains(out, "Domain not recognized") {
		t.Errorf("unexpected card:\n%s", out)
	}
}

func TestRenderersRespectWidth(t *testing.T) {
	long := strings.Repeat("word ", 60)
	d := analysis.Sentiment{RedFlags: []string{long}}
	p := analysis.Presentation{Badge: analysis.SentimentBadge(d), Show: analysis.Visibility{RedFlags: true}}

	for _, width := range []int{20, 60, 100} {
		out := Sentiment(d, p, width)
		want := clampWidth(width)
		for _, line := range strings.Split(out, "\n") {
			if w := lipgloss.Width(line); w > want {
				t.Errorf("width %d: line is %d cells wide: %q", width, w, line)
			}
		}
	}
}

func TestSectionDispatchEmpty(t *testing.T) {
	if got := Section(analysis.SectionView{}, 80); got != "" {
		t.Errorf("empty section view rendered %q", got)
	}
}

func TestFailure(t *testing.T) {
	out := Failure("Could not reach the analysis service.", 60)
	if !strings.Contains(out, "Analysis failed") || !strings.Contains(out, "Could not reach") {
		t.Errorf("unexpected failure view:\n%s", out)
	}
}

func TestHistoryTable(t *testing.T) {
	score := 88.0
	entries := []history.Entry{
		{ID: "123456789abc", ContentType: "url", Preview: "https://bbc.com/news\nsecond line", TrustScore: &score, Grade: "A",
			CreatedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)},
		{ID: "7", ContentType: "text", Preview: strings.Repeat("界", 100), Grade: ""},
	}

	out := HistoryTable(entries, 80, -1)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "12345678") || strings.Contains(lines[1], "9abc") {
		t.Errorf("id column not truncated: %q", lines[1])
	}
	if strings.Contains(lines[1], "\nsecond") {
		t.Error("preview must be a single line")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 80 {
			t.Errorf("row %d is %d cells wide", i, w)
		}
	}
	if !strings.Contains(lines[2], " -") {
		t.Errorf("missing score should render as '-': %q", lines[2])
	}

	if got := HistoryTable(nil, 80, -1); !strings.Contains(got, "No analyses") {
		t.Errorf("empty table = %q", got)
	}
}

func TestStats(t *testing.T) {
	out := Stats(history.Stats{Total: 12, ThisMonth: 3, Average: 71})
	for _, want := range []string{"Total Analyses", "12", "This Month", "3", "Avg Score", "71"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}
