package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// Band is the color band of the overall score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// ScoreBand maps a 0-100 score onto its color band.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	}
	return BandLow
}

// Icon is the symbolic icon shown next to the grade.
type Icon string

const (
	IconPositive Icon = "positive"
	IconWarning  Icon = "warning"
	IconAlert    Icon = "alert"
)

// GradeIcon maps a letter grade onto its icon. Unknown grades get the alert icon.
func GradeIcon(grade string) Icon {
	switch strings.ToUpper(strings.TrimSpace(grade)) {
	case "A", "B":
		return IconPositive
	case "C", "D":
		return IconWarning
	}
	return IconAlert
}

// Severity is the alarm level of a badge. It is independent of how the
// underlying field names its levels: a "low" credibility tier is a high
// severity badge.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Badge is the label shown in a section card header.
type Badge struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// Visibility records which optional sub-blocks of a card have content.
type Visibility struct {
	Warnings      bool `json:"warnings"`
	Tactics       bool `json:"tactics"`
	RedFlags      bool `json:"red_flags"`
	BiasedWords   bool `json:"biased_words"`
	Claims        bool `json:"claims"`
	Manipulation  bool `json:"manipulation"`
	ReverseSearch bool `json:"reverse_search"`
	TopSources    bool `json:"top_sources"`
}

// Presentation is everything a renderer needs besides the section data.
type Presentation struct {
	Badge Badge      `json:"badge"`
	Show  Visibility `json:"show"`
}

// FakeNewsBadge derives the fake-news badge.
func FakeNewsBadge(d FakeNews) Badge {
	sev := SeverityLow
	if d.Label == LabelFake {
		sev = SeverityHigh
	}
	return Badge{Text: d.Label, Severity: sev}
}

// SourceBadge derives the source badge. Tier and severity are inverted.
func SourceBadge(d SourceValidation) Badge {
	tier := strings.ToLower(d.Tier)
	var sev Severity
	switch tier {
	case "high":
		sev = SeverityLow
	case "medium":
		sev = SeverityMedium
	default:
		sev = SeverityHigh
	}
	return Badge{Text: strings.ToUpper(tier), Severity: sev}
}

// SentimentBadge derives the manipulation badge. Both thresholds are exclusive.
func SentimentBadge(d Sentiment) Badge {
	score := d.ManipulationScore.Score
	switch {
	case score > 0.5:
		return Badge{Text: "HIGH", Severity: SeverityHigh}
	case score > 0.3:
		return Badge{Text: "MODERATE", Severity: SeverityMedium}
	}
	return Badge{Text: "LOW", Severity: SeverityLow}
}

// BiasBadge derives the bias badge.
func BiasBadge(d Bias) Badge {
	level := strings.ToUpper(d.BiasLevel)
	switch level {
	case "HIGH":
		return Badge{Text: level, Severity: SeverityHigh}
	case "MODERATE":
		return Badge{Text: level, Severity: SeverityMedium}
	}
	return Badge{Text: level, Severity: SeverityLow}
}

// FactCheckBadge derives the fact-check badge.
func FactCheckBadge(d FactCheck) Badge {
	status := d.OverallVerification.Status
	switch status {
	case "MOSTLY_TRUE":
		return Badge{Text: status, Severity: SeverityLow}
	case "MOSTLY_FALSE":
		return Badge{Text: status, Severity: SeverityHigh}
	}
	return Badge{Text: status, Severity: SeverityMedium}
}

// ImageBadge derives the image badge.
func ImageBadge(d ImageVerification) Badge {
	score := d.OverallTrustScore
	switch {
	case score > 0.7:
		return Badge{Text: "TRUSTWORTHY", Severity: SeverityLow}
	case score > 0.5:
		return Badge{Text: "MODERATE", Severity: SeverityMedium}
	}
	return Badge{Text: "SUSPICIOUS", Severity: SeverityHigh}
}

// SectionBadge derives the badge for any section kind. The data argument must
// be the value type matching kind.
func SectionBadge(kind Kind, data any) (Badge, error) {
	switch d := data.(type) {
	case FakeNews:
		if kind == KindFakeNews {
			return FakeNewsBadge(d), nil
		}
	case SourceValidation:
		if kind == KindSource {
			return SourceBadge(d), nil
		}
	case Sentiment:
		if kind == KindSentiment {
			return SentimentBadge(d), nil
		}
	case Bias:
		if kind == KindBias {
			return BiasBadge(d), nil
		}
	case FactCheck:
		if kind == KindFactCheck {
			return FactCheckBadge(d), nil
		}
	case ImageVerification:
		if kind == KindImage {
			return ImageBadge(d), nil
		}
	}
	return Badge{}, fmt.Errorf("no badge rule for %s with %T", kind, data)
}

// ManipulationVisible reports whether the manipulation verdict can be shown.
func ManipulationVisible(d ImageVerification) bool {
	return d.ManipulationDetection != nil && d.ManipulationDetection.Error == ""
}

// ReverseSearchVisible reports whether reverse search results can be shown.
func ReverseSearchVisible(d ImageVerification) bool {
	return d.ReverseSearch != nil && d.ReverseSearch.Status == "success"
}

// FormatScore prints a 0-100 score without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Percent formats a 0-1 value as a percentage with the given decimals.
func Percent(v float64, decimals int) string {
	return strconv.FormatFloat(v*100, 'f', decimals, 64) + "%"
}
