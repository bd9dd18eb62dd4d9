package enrich

import "cucatalog-backend/lib/telemetry"

var tracer = telemetry.Tracer("cucatalog.services.enrich")

// Label is the relevance decision for one external candidate.
type Label int

const (
	LabelIrrelevant Label = iota
	LabelPossiblyRelevant
	LabelRelevant
)

func (l Label) String() string {
	switch l {
	case LabelRelevant:
		return "relevant"
	case LabelPossiblyRelevant:
		return "possibly_relevant"
	default:
		return "irrelevant"
	}
}

// Scores holds the per-label confidences from the first-stage search
// classifier.
type Scores struct {
	Irrelevant       float64
	PossiblyRelevant float64
	Relevant         float64
}

// SearchSample is one search-result snippet paired with the
// instructor it was searched for.
type SearchSample struct {
	Name        string
	Departments string
	Title       string
	Snippet     string
}

// ArticleSample is a full candidate article fetched for a deferred
// search result.
type ArticleSample struct {
	Name  string
	Title string
	Text  string
}

// SearchClassifier scores one search-result snippet. The model lives
// outside this package; only the contract is consumed here.
type SearchClassifier interface {
	Predict(sample SearchSample) (Scores, error)
}

// ArticleClassifier confirms or rejects a deferred candidate from the
// full article text.
type ArticleClassifier interface {
	Predict(sample ArticleSample) (Label, error)
}

// SearchPolicy turns first-stage scores into a decision. The snippet
// signal is cheap but weak, so the thresholds favor a false "possibly"
// over a false accept: a wrong accept corrupts an instructor profile
// permanently, a wrong defer only costs an extra article fetch.
func SearchPolicy(s Scores) Label {
	if s.Relevant > 0.75 {
		return LabelRelevant
	}
	if s.PossiblyRelevant > 0.3 {
		return LabelPossiblyRelevant
	}
	if s.Relevant > 0.47 {
		return LabelPossiblyRelevant
	}
	return LabelIrrelevant
}
