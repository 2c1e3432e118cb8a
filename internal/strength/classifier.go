package strength

import (
	"fmt"
	"math"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// Classification is the classifier's raw verdict on a password.
type Classification struct {
	RawClass          int // 0 (worst) .. 4 (best)
	CrackTimesSeconds map[string]float64
	CrackTimesDisplay map[string]string
}

// Classifier produces a raw 0–4 strength class for a plaintext password.
// Treated as an external collaborator so tests can pin the class.
type Classifier interface {
	Classify(password string) Classification
}

// ZxcvbnClassifier adapts the zxcvbn pattern matcher (dictionary words,
// sequences, keyboard walks, repeats, entropy) to the Classifier interface.
type ZxcvbnClassifier struct{}

func NewZxcvbnClassifier() *ZxcvbnClassifier {
	return &ZxcvbnClassifier{}
}

// Attack rates for the reported crack-time scenarios, guesses per second.
var attackRates = map[string]float64{
	"online_throttling_100_per_hour":       100.0 / 3600.0,
	"online_no_throttling_10_per_second":   10,
	"offline_slow_hashing_1e4_per_second":  1e4,
	"offline_fast_hashing_1e10_per_second": 1e10,
}

func (z *ZxcvbnClassifier) Classify(password string) Classification {
	m := zxcvbn.PasswordStrength(password, nil)

	// Average number of guesses before a hit.
	guesses := 0.5 * math.Pow(2, m.Entropy)

	seconds := make(map[string]float64, len(attackRates))
	display := make(map[string]string, len(attackRates))
	for scenario, rate := range attackRates {
		s := guesses / rate
		seconds[scenario] = s
		display[scenario] = displayTime(s)
	}

	return Classification{
		RawClass:          m.Score,
		CrackTimesSeconds: seconds,
		CrackTimesDisplay: display,
	}
}

const (
	minute  = 60.0
	hour    = 60 * minute
	day     = 24 * hour
	month   = 31 * day
	year    = 365 * day
	century = 100 * year
)

func displayTime(seconds float64) string {
	switch {
	case seconds < 1:
		return "less than a second"
	case seconds < minute:
		return fmt.Sprintf("%d seconds", int(seconds))
	case seconds < hour:
		return fmt.Sprintf("%d minutes", int(seconds/minute))
	case seconds < day:
		return fmt.Sprintf("%d hours", int(seconds/hour))
	case seconds < month:
		return fmt.Sprintf("%d days", int(seconds/day))
	case seconds < year:
		return fmt.Sprintf("%d months", int(seconds/month))
	case seconds < century:
		return fmt.Sprintf("%d years", int(seconds/year))
	default:
		return "centuries"
	}
}
