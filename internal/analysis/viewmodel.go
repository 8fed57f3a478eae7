package analysis

import "fmt"

// ScoreCard is the derived main score display.
type ScoreCard struct {
	Score          float64         `json:"score"`
	Grade          string          `json:"grade"`
	Recommendation string          `json:"recommendation"`
	Band           Band            `json:"band"`
	Icon           Icon            `json:"icon"`
	Breakdown      []BreakdownItem `json:"breakdown,omitempty"`
}

// BreakdownItem is one present entry of the score breakdown.
type BreakdownItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ShareText is the summary handed to the clipboard or share sheet.
func (c ScoreCard) ShareText() string {
	return ShareText(c.Recommendation, c.Score, c.Grade)
}

// ShareText formats the share summary.
func ShareText(recommendation string, score float64, grade string) string {
	return fmt.Sprintf("%s\n\nTrust Score: %s/100 (Grade %s)", recommendation, FormatScore(score), grade)
}

// SectionView is one displayable section. Exactly one of the data pointers,
// the one matching Kind, is set.
type SectionView struct {
	Kind         Kind         `json:"kind"`
	Presentation Presentation `json:"presentation"`

	FakeNews  *FakeNews          `json:"fake_news,omitempty"`
	Source    *SourceValidation  `json:"source,omitempty"`
	Sentiment *Sentiment         `json:"sentiment,omitempty"`
	Bias      *Bias              `json:"bias,omitempty"`
	FactCheck *FactCheck         `json:"fact_check,omitempty"`
	Image     *ImageVerification `json:"image,omitempty"`
}

// Skipped records a section that was present but suppressed.
type Skipped struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

// ViewModel is the presentation-ready state of one analysis. It is rebuilt
// from scratch for every response and never patched.
type ViewModel struct {
	Score    ScoreCard     `json:"score"`
	Sections []SectionView `json:"sections"`
	Skipped  []Skipped     `json:"skipped,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// State reports how a section kind ended up in the view model.
func (vm ViewModel) State(kind Kind) SectionState {
	for _, s := range vm.Sections {
		if s.Kind == kind {
			return Ok
		}
	}
	for _, s := range vm.Skipped {
		if s.Kind == kind {
			return Errored
		}
	}
	return NotApplicable
}

// Section returns the section of the given kind, if displayed.
func (vm ViewModel) Section(kind Kind) (SectionView, bool) {
	for _, s := range vm.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return SectionView{}, false
}

// Empty reports whether only the score card will be shown.
func (vm ViewModel) Empty() bool {
	return len(vm.Sections) == 0
}

// BuildViewModel derives the view model from a raw response. It clamps
// out-of-range numbers (recording them in Warnings), drops absent sections and
// records errored ones in Skipped. It does not mutate raw and is idempotent.
func BuildViewModel(raw Response) ViewModel {
	clean, warnings := Sanitize(raw)
	vm := ViewModel{Warnings: warnings}

	if ts := clean.OverallTrustScore; ts != nil {
		vm.Score = ScoreCard{
			Score:          ts.Score,
			Grade:          ts.Grade,
			Recommendation: ts.Recommendation,
			Band:           ScoreBand(ts.Score),
			Icon:           GradeIcon(ts.Grade),
			Breakdown:      breakdownItems(ts.Breakdown),
		}
	} else {
		vm.Score = ScoreCard{Band: ScoreBand(0), Icon: GradeIcon("")}
	}

	for _, kind := range Kinds {
		view, skipped, ok := buildSection(kind, clean)
		if skipped != nil {
			vm.Skipped = append(vm.Skipped, *skipped)
		}
		if ok {
			vm.Sections = append(vm.Sections, view)
		}
	}
	return vm
}

func buildSection(kind Kind, r Response) (SectionView, *Skipped, bool) {
	view := SectionView{Kind: kind}
	var state SectionState
	var reason string

	switch kind {
	case KindFakeNews:
		sec := FakeNewsSection(r.FakeNewsDetection)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.FakeNews = &d
			view.Presentation = Presentation{Badge: FakeNewsBadge(d)}
		}
	case KindSource:
		sec := SourceSection(r.SourceValidation)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.Source = &d
			view.Presentation = Presentation{
				Badge: SourceBadge(d),
				Show:  Visibility{Warnings: len(d.Warnings) > 0},
			}
		}
	case KindSentiment:
		sec := SentimentSection(r.SentimentAnalysis)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.Sentiment = &d
			view.Presentation = Presentation{
				Badge: SentimentBadge(d),
				Show: Visibility{
					Tactics:  len(d.ManipulationScore.DetectedTactics) > 0,
					RedFlags: len(d.RedFlags) > 0,
				},
			}
		}
	case KindBias:
		sec := BiasSection(r.BiasDetection)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.Bias = &d
			view.Presentation = Presentation{
				Badge: BiasBadge(d),
				Show:  Visibility{BiasedWords: len(d.BiasedWordsFound) > 0},
			}
		}
	case KindFactCheck:
		sec := FactCheckSection(r.FactChecking)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.FactCheck = &d
			view.Presentation = Presentation{
				Badge: FactCheckBadge(d),
				Show:  Visibility{Claims: len(d.VerifiedClaims) > 0},
			}
		}
	case KindImage:
		sec := ImageSection(r.ImageVerification)
		state, reason = sec.State, sec.Reason
		if state == Ok {
			d := sec.Data
			view.Image = &d
			reverse := ReverseSearchVisible(d)
			view.Presentation = Presentation{
				Badge: ImageBadge(d),
				Show: Visibility{
					Warnings:      len(d.Warnings) > 0,
					Manipulation:  ManipulationVisible(d),
					ReverseSearch: reverse,
					TopSources:    reverse && len(d.ReverseSearch.TopSources) > 0,
				},
			}
		}
	}

	switch state {
	case Ok:
		return view, nil, true
	case Errored:
		return SectionView{}, &Skipped{Kind: kind, Reason: reason}, false
	}
	return SectionView{}, nil, false
}

func breakdownItems(b *Breakdown) []BreakdownItem {
	if b == nil {
		return nil
	}
	var items []BreakdownItem
	add := func(label string, v *float64) {
		if v != nil {
			items = append(items, BreakdownItem{Label: label, Value: *v})
		}
	}
	add("Fake News Check", b.FakeNewsScore)
	add("Source Quality", b.SourceScore)
	add("Fact Check", b.FactCheckScore)
	return items
}

// Sanitize returns a copy of raw with every numeric field clamped into its
// documented range, plus one warning per value that had to be clamped.
func Sanitize(raw Response) (Response, []string) {
	out := raw.Clone()
	var c clamper

	if ts := out.OverallTrustScore; ts != nil {
		ts.Score = c.span("overall_trust_score.score", ts.Score, 0, 100)
		if b := ts.Breakdown; b != nil {
			c.spanPtr("overall_trust_score.breakdown.fake_news_score", b.FakeNewsScore, 0, 100)
			c.spanPtr("overall_trust_score.breakdown.source_score", b.SourceScore, 0, 100)
			c.spanPtr("overall_trust_score.breakdown.fact_check_score", b.FactCheckScore, 0, 100)
		}
	}
	if fn := out.FakeNewsDetection; fn != nil {
		fn.Confidence = c.unit("fake_news_detection.confidence", fn.Confidence)
		fn.Probabilities.Fake = c.unit("fake_news_detection.probabilities.FAKE", fn.Probabilities.Fake)
		fn.Probabilities.Real = c.unit("fake_news_detection.probabilities.REAL", fn.Probabilities.Real)
	}
	if sv := out.SourceValidation; sv != nil {
		sv.CredibilityScore = c.unit("source_validation.credibility_score", sv.CredibilityScore)
	}
	if sa := out.SentimentAnalysis; sa != nil {
		sa.ManipulationScore.Score = c.unit("sentiment_analysis.manipulation_score.score", sa.ManipulationScore.Score)
		sa.EmotionalIntensity = c.unit("sentiment_analysis.emotional_intensity", sa.EmotionalIntensity)
		sa.Subjectivity = c.unit("sentiment_analysis.subjectivity", sa.Subjectivity)
	}
	if bd := out.BiasDetection; bd != nil {
		bd.OverallBiasScore = c.unit("bias_detection.overall_bias_score", bd.OverallBiasScore)
		bd.SourceDiversity = c.unit("bias_detection.source_diversity", bd.SourceDiversity)
		bd.AttributionScore = c.unit("bias_detection.attribution_score", bd.AttributionScore)
	}
	if fc := out.FactChecking; fc != nil {
		fc.OverallVerification.Score = c.unit("fact_checking.overall_verification.score", fc.OverallVerification.Score)
		if fc.ClaimsFound < 0 {
			c.note("fact_checking.claims_found", float64(fc.ClaimsFound), 0, -1)
			fc.ClaimsFound = 0
		}
	}
	if iv := out.ImageVerification; iv != nil {
		iv.OverallTrustScore = c.unit("image_verification.overall_trust_score", iv.OverallTrustScore)
		if rs := iv.ReverseSearch; rs != nil && rs.SimilarImagesFound < 0 {
			c.note("image_verification.reverse_search.similar_images_found", float64(rs.SimilarImagesFound), 0, -1)
			rs.SimilarImagesFound = 0
		}
	}
	return out, c.warnings
}

type clamper struct {
	warnings []string
}

func (c *clamper) unit(field string, v float64) float64 {
	return c.span(field, v, 0, 1)
}

func (c *clamper) span(field string, v, lo, hi float64) float64 {
	switch {
	case v < lo:
		c.note(field, v, lo, hi)
		return lo
	case v > hi:
		c.note(field, v, lo, hi)
		return hi
	}
	return v
}

func (c *clamper) spanPtr(field string, v *float64, lo, hi float64) {
	if v != nil {
		*v = c.span(field, *v, lo, hi)
	}
}

// note records a clamped value. hi < lo means "no upper bound".
func (c *clamper) note(field string, v, lo, hi float64) {
	if hi < lo {
		c.warnings = append(c.warnings, fmt.Sprintf("%s=%g below %g", field, v, lo))
		return
	}
	c.warnings = append(c.warnings, fmt.Sprintf("%s=%g outside [%g,%g]", field, v, lo, hi))
}
