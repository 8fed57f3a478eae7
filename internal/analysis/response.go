package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrMissingTrustScore is returned by Response.Complete when the mandatory
// overall score is absent.
var ErrMissingTrustScore = errors.New("response has no overall_trust_score")

// Fake-news labels. Error and InsufficientData are disclaimers from the model.
const (
	LabelReal             = "REAL"
	LabelFake             = "FAKE"
	LabelError            = "ERROR"
	LabelInsufficientData = "INSUFFICIENT_DATA"
)

// Response is the analysis payload as received. Every section is optional;
// nil means "not applicable to this input".
type Response struct {
	OverallTrustScore *TrustScore        `json:"overall_trust_score"`
	FakeNewsDetection *FakeNews          `json:"fake_news_detection"`
	SourceValidation  *SourceValidation  `json:"source_validation"`
	SentimentAnalysis *Sentiment         `json:"sentiment_analysis"`
	BiasDetection     *Bias              `json:"bias_detection"`
	FactChecking      *FactCheck         `json:"fact_checking"`
	ImageVerification *ImageVerification `json:"image_verification"`
}

// TrustScore is the composite 0-100 score.
type TrustScore struct {
	Score          float64    `json:"score"`
	Grade          string     `json:"grade"`
	Recommendation string     `json:"recommendation"`
	Breakdown      *Breakdown `json:"breakdown,omitempty"`
}

// Breakdown holds optional per-analysis contributions to the score.
type Breakdown struct {
	FakeNewsScore  *float64 `json:"fake_news_score,omitempty"`
	SourceScore    *float64 `json:"source_score,omitempty"`
	FactCheckScore *float64 `json:"fact_check_score,omitempty"`
}

// FakeNews is the classifier output.
type FakeNews struct {
	Label         string        `json:"label"`
	Confidence    float64       `json:"confidence"`
	RiskLevel     string        `json:"risk_level"`
	Probabilities Probabilities `json:"probabilities"`
	Error         string        `json:"error,omitempty"`
}

// Probabilities are the per-class classifier outputs.
type Probabilities struct {
	Fake float64 `json:"FAKE"`
	Real float64 `json:"REAL"`
}

// SourceValidation is the domain credibility lookup.
type SourceValidation struct {
	Domain           string   `json:"domain"`
	CredibilityScore float64  `json:"credibility_score"`
	Tier             string   `json:"tier"`
	HTTPSEnabled     Flag     `json:"https_enabled"`
	NewsAPIVerified  Flag     `json:"newsapi_verified"`
	Warnings         []string `json:"warnings"`
	Error            string   `json:"error,omitempty"`
}

// Sentiment is the emotional-manipulation analysis.
type Sentiment struct {
	ManipulationScore  Manipulation `json:"manipulation_score"`
	EmotionalIntensity float64      `json:"emotional_intensity"`
	Subjectivity       float64      `json:"subjectivity"`
	RedFlags           []string     `json:"red_flags"`
	Error              string       `json:"error,omitempty"`
}

// Manipulation is the manipulation sub-score and the tactics behind it.
type Manipulation struct {
	Score           float64  `json:"score"`
	DetectedTactics []string `json:"detected_tactics"`
}

// Bias is the bias-detection output.
type Bias struct {
	OverallBiasScore float64  `json:"overall_bias_score"`
	BiasLevel        string   `json:"bias_level"`
	SourceDiversity  float64  `json:"source_diversity"`
	AttributionScore float64  `json:"attribution_score"`
	BiasedWordsFound []string `json:"biased_words_found"`
	Error            string   `json:"error,omitempty"`
}

// FactCheck is the claim cross-referencing output.
type FactCheck struct {
	ClaimsFound         int             `json:"claims_found"`
	OverallVerification Verification    `json:"overall_verification"`
	VerifiedClaims      []VerifiedClaim `json:"verified_claims"`
	Error               string          `json:"error,omitempty"`
}

// Verification is the aggregate fact-check verdict.
type Verification struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

// VerifiedClaim is one claim matched against a fact-check publisher. The
// service nests rating and source under "fact_check"; flat keys are also
// accepted.
type VerifiedClaim struct {
	Claim  string
	Rating string
	Source string
}

type claimReview struct {
	Rating string `json:"rating"`
	Source string `json:"source"`
}

type wireClaim struct {
	Claim     string       `json:"claim"`
	Rating    string       `json:"rating,omitempty"`
	Source    string       `json:"source,omitempty"`
	FactCheck *claimReview `json:"fact_check,omitempty"`
}

func (c *VerifiedClaim) UnmarshalJSON(data []byte) error {
	var w wireClaim
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Claim, c.Rating, c.Source = w.Claim, w.Rating, w.Source
	if w.FactCheck != nil {
		if c.Rating == "" {
			c.Rating = w.FactCheck.Rating
		}
		if c.Source == "" {
			c.Source = w.FactCheck.Source
		}
	}
	return nil
}

func (c VerifiedClaim) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireClaim{
		Claim:     c.Claim,
		FactCheck: &claimReview{Rating: c.Rating, Source: c.Source},
	})
}

// ImageVerification is the image manipulation and reverse-search output.
type ImageVerification struct {
	OverallTrustScore     float64                `json:"overall_trust_score"`
	ManipulationDetection *ManipulationDetection `json:"manipulation_detection,omitempty"`
	ReverseSearch         *ReverseSearch         `json:"reverse_search,omitempty"`
	Warnings              []string               `json:"warnings"`
	Error                 string                 `json:"error,omitempty"`
}

// ManipulationDetection is either a verdict or an {error} object.
type ManipulationDetection struct {
	LikelyManipulated Flag   `json:"likely_manipulated"`
	Confidence        Text   `json:"confidence"`
	Error             string `json:"error,omitempty"`
}

// ReverseSearch is the reverse image search summary.
type ReverseSearch struct {
	Status             string   `json:"status"`
	SimilarImagesFound Count    `json:"similar_images_found,omitempty"`
	TopSources         []string `json:"top_sources,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Flag is a boolean that also accepts 0/1 and "true"/"false" on the wire.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b, perr := strconv.ParseBool(strings.TrimSpace(s))
		if perr != nil {
			return fmt.Errorf("flag: %q is not a boolean", s)
		}
		*f = Flag(b)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: %s is not a boolean", data)
	}
	*f = n != 0
	return nil
}

// Count is a number that treats placeholder strings such as "N/A" as absent.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			n = 0
		}
		*c = Count(n)
		return nil
	}
	if string(data) == "null" {
		*c = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("count: %s is not a number", data)
	}
	*c = Count(n)
	return nil
}

// Text is a string that also accepts numbers and booleans on the wire.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Text(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("text: unsupported value %s", data)
}

// DecodeResponse parses a response body. Malformed JSON or an unreadable
// overall score is an error; a missing overall score is not (see Complete).
func DecodeResponse(data []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(data, &r); err != nil {
		return Response{}, fmt.Errorf("decode analysis response: %w", err)
	}
	return r, nil
}

type wireResponse struct {
	OverallTrustScore json.RawMessage `json:"overall_trust_score"`
	FakeNewsDetection json.RawMessage `json:"fake_news_detection"`
	SourceValidation  json.RawMessage `json:"source_validation"`
	SentimentAnalysis json.RawMessage `json:"sentiment_analysis"`
	BiasDetection     json.RawMessage `json:"bias_detection"`
	FactCheck         json.RawMessage `json:"fact_checking"`
	ImageVerification json.RawMessage `json:"image_verification"`
}

// UnmarshalJSON decodes each section on its own. A section whose payload has
// the wrong shape is kept as an {error} section instead of failing the whole
// response.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Response{}
	if present(w.OverallTrustScore) {
		var ts TrustScore
		if err := json.Unmarshal(w.OverallTrustScore, &ts); err != nil {
			return fmt.Errorf("overall_trust_score: %w", err)
		}
		out.OverallTrustScore = &ts
	}
	out.FakeNewsDetection = decodeSection(w.FakeNewsDetection, func(reason string) *FakeNews {
		return &FakeNews{Error: reason}
	})
	out.SourceValidation = decodeSection(w.SourceValidation, func(reason string) *SourceValidation {
		return &SourceValidation{Error: reason}
	})
	out.SentimentAnalysis = decodeSection(w.SentimentAnalysis, func(reason string) *Sentiment {
		return &Sentiment{Error: reason}
	})
	out.BiasDetection = decodeSection(w.BiasDetection, func(reason string) *Bias {
		return &Bias{Error: reason}
	})
	out.FactChecking = decodeSection(w.FactCheck, func(reason string) *FactCheck {
		return &FactCheck{Error: reason}
	})
	out.ImageVerification = decodeSection(w.ImageVerification, func(reason string) *ImageVerification {
		return &ImageVerification{Error: reason}
	})
	*r = out
	return nil
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && string(raw) != "null"
}

// decodeSection returns nil for an absent section and failed(reason) for one
// that does not decode.
func decodeSection[T any](raw json.RawMessage, failed func(reason string) *T) *T {
	if !present(raw) {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return failed("malformed payload: " + err.Error())
	}
	return v
}

// Complete reports whether the mandatory parts of the response are present.
func (r Response) Complete() error {
	if r.OverallTrustScore == nil {
		return ErrMissingTrustScore
	}
	return nil
}

// Clone returns a deep copy of r.
func (r Response) Clone() Response {
	out := Response{}
	if r.OverallTrustScore != nil {
		ts := *r.OverallTrustScore
		if ts.Breakdown != nil {
			b := Breakdown{
				FakeNewsScore:  clonePtr(ts.Breakdown.FakeNewsScore),
				SourceScore:    clonePtr(ts.Breakdown.SourceScore),
				FactCheckScore: clonePtr(ts.Breakdown.FactCheckScore),
			}
			ts.Breakdown = &b
		}
		out.OverallTrustScore = &ts
	}
	if r.FakeNewsDetection != nil {
		fn := *r.FakeNewsDetection
		out.FakeNewsDetection = &fn
	}
	if r.SourceValidation != nil {
		sv := *r.SourceValidation
		sv.Warnings = slices.Clone(sv.Warnings)
		out.SourceValidation = &sv
	}
	if r.SentimentAnalysis != nil {
		sa := *r.SentimentAnalysis
		sa.ManipulationScore.DetectedTactics = slices.Clone(sa.ManipulationScore.DetectedTactics)
		sa.RedFlags = slices.Clone(sa.RedFlags)
		out.SentimentAnalysis = &sa
	}
	if r.BiasDetection != nil {
		bd := *r.BiasDetection
		bd.BiasedWordsFound = slices.Clone(bd.BiasedWordsFound)
		out.BiasDetection = &bd
	}
	if r.FactChecking != nil {
		fc := *r.FactChecking
		fc.VerifiedClaims = slices.Clone(fc.VerifiedClaims)
		out.FactChecking = &fc
	}
	if r.ImageVerification != nil {
		iv := *r.ImageVerification
		if iv.ManipulationDetection != nil {
			md := *iv.ManipulationDetection
			iv.ManipulationDetection = &md
		}
		if iv.ReverseSearch != nil {
			rs := *iv.ReverseSearch
			rs.TopSources = slices.Clone(rs.TopSources)
			iv.ReverseSearch = &rs
		}
		iv.Warnings = slices.Clone(iv.Warnings)
		out.ImageVerification = &iv
	}
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
