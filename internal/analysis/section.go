package analysis

// Kind identifies one of the six sub-analyses.
type Kind string

const (
	KindFakeNews  Kind = "fake_news"
	KindSource    Kind = "source"
	KindSentiment Kind = "sentiment"
	KindBias      Kind = "bias"
	KindFactCheck Kind = "fact_check"
	KindImage     Kind = "image"
)

// Kinds lists the sections in display order.
var Kinds = []Kind{KindFakeNews, KindSource, KindSentiment, KindBias, KindFactCheck, KindImage}

// Title is the card heading for the section.
func (k Kind) Title() string {
	switch k {
	case KindFakeNews:
		return "Fake News Detection"
	case KindSource:
		return "Source Credibility"
	case KindSentiment:
		return "Emotional Manipulation"
	case KindBias:
		return "Bias Analysis"
	case KindFactCheck:
		return "Fact Check"
	case KindImage:
		return "Image Verification"
	}
	return string(k)
}

// SectionState tags a section as usable, explicitly failed, or not applicable.
type SectionState int

const (
	NotApplicable SectionState = iota
	Ok
	Errored
)

func (s SectionState) String() string {
	switch s {
	case Ok:
		return "ok"
	case Errored:
		return "error"
	}
	return "not_applicable"
}

// Section is a tagged section value: Data is meaningful only when State is Ok,
// Reason only when State is Errored.
type Section[T any] struct {
	State  SectionState
	Data   T
	Reason string
}

func okSection[T any](v T) Section[T] {
	return Section[T]{State: Ok, Data: v}
}

func erroredSection[T any](reason string) Section[T] {
	return Section[T]{State: Errored, Reason: reason}
}

// FakeNewsSection classifies the fake-news payload. A label the model itself
// disclaims (ERROR, INSUFFICIENT_DATA) is an Errored section.
func FakeNewsSection(p *FakeNews) Section[FakeNews] {
	switch {
	case p == nil:
		return Section[FakeNews]{}
	case p.Error != "":
		return erroredSection[FakeNews](p.Error)
	case p.Label == LabelError || p.Label == LabelInsufficientData:
		return erroredSection[FakeNews]("label " + p.Label)
	}
	return okSection(*p)
}

// SourceSection classifies the source-validation payload.
func SourceSection(p *SourceValidation) Section[SourceValidation] {
	switch {
	case p == nil:
		return Section[SourceValidation]{}
	case p.Error != "":
		return erroredSection[SourceValidation](p.Error)
	}
	return okSection(*p)
}

// SentimentSection classifies the sentiment payload.
func SentimentSection(p *Sentiment) Section[Sentiment] {
	switch {
	case p == nil:
		return Section[Sentiment]{}
	case p.Error != "":
		return erroredSection[Sentiment](p.Error)
	}
	return okSection(*p)
}

// BiasSection classifies the bias payload.
func BiasSection(p *Bias) Section[Bias] {
	switch {
	case p == nil:
		return Section[Bias]{}
	case p.Error != "":
		return erroredSection[Bias](p.Error)
	}
	return okSection(*p)
}

// FactCheckSection classifies the fact-check payload.
func FactCheckSection(p *FactCheck) Section[FactCheck] {
	switch {
	case p == nil:
		return Section[FactCheck]{}
	case p.Error != "":
		return erroredSection[FactCheck](p.Error)
	}
	return okSection(*p)
}

// ImageSection classifies the image payload. An error inside a sub-object
// (manipulation detection, reverse search) does not fail the section.
func ImageSection(p *ImageVerification) Section[ImageVerification] {
	switch {
	case p == nil:
		return Section[ImageVerification]{}
	case p.Error != "":
		return erroredSection[ImageVerification](p.Error)
	}
	return okSection(*p)
}
