// Package strength scores password guessability and generates high-entropy
// replacement passwords.
//
// The raw 0–4 class comes from a pattern-based classifier (dictionary,
// sequence, keyboard and entropy heuristics) behind the Classifier interface.
// The evaluator maps it onto the fixed 0–100 scale used everywhere else in
// the system.
package strength

// Category buckets the 0–100 score.
type Category string

const (
	Weak       Category = "Weak"
	Medium     Category = "Medium"
	Strong     Category = "Strong"
	VeryStrong Category = "Very Strong"
)

// scoreByClass maps the classifier's raw class onto the 0-100 scale.
// The mapping is fixed, not configurable.
var scoreByClass = [5]int{25, 45, 65, 85, 100}

// feedbackThreshold: feedback is only reported for passwords that are not
// already Strong.
const feedbackThreshold = 60

// Feedback explains a low score and suggests improvements.
type Feedback struct {
	Warning     string   `json:"warning"`
	Suggestions []string `json:"suggestions"`
}

// Result is the outcome of a single evaluation.
type Result struct {
	RawClass          int
	Score             int
	Category          Category
	Feedback          *Feedback
	CrackTimesSeconds map[string]float64
	CrackTimesDisplay map[string]string
}

// Evaluator classifies plaintext passwords. Stateless and safe for
// concurrent use.
type Evaluator struct {
	classifier Classifier
}

func NewEvaluator(c Classifier) *Evaluator {
	return &Evaluator{classifier: c}
}

// Evaluate scores the given plaintext. It never persists or logs the input.
func (e *Evaluator) Evaluate(password string) Result {
	c := e.classifier.Classify(password)

	score := scoreByClass[c.RawClass]

	r := Result{
		RawClass:          c.RawClass,
		Score:             score,
		Category:          CategoryForScore(score),
		CrackTimesSeconds: c.CrackTimesSeconds,
		CrackTimesDisplay: c.CrackTimesDisplay,
	}

	if score < feedbackThreshold {
		r.Feedback = buildFeedback(password)
	}

	return r
}

// CategoryForScore buckets a 0–100 score: <40 Weak, [40,60) Medium,
// [60,80) Strong, >=80 Very Strong.
func CategoryForScore(score int) Category {
	switch {
	case score >= 80:
		return VeryStrong
	case score >= 60:
		return Strong
	case score >= 40:
		return Medium
	default:
		return Weak
	}
}
