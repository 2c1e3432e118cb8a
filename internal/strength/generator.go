package strength

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/sethvargo/go-retry"
)

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()-_=+[]{}|;:,.<>?"

	generatedLength = 16

	// minRecommendedScore gates the retry loop: a recommendation below
	// Very Strong is regenerated.
	minRecommendedScore = 80
	maxGenerateRetries  = 4
)

// Recommendation is a generated replacement password together with its own
// evaluation.
type Recommendation struct {
	Value    string   `json:"value"`
	Score    int      `json:"score"`
	Category Category `json:"category"`
}

// Generator produces 16-character passwords guaranteed to contain at least
// one character from each of the four classes, then verifies them with the
// evaluator.
type Generator struct {
	evaluator *Evaluator
}

func NewGenerator(e *Evaluator) *Generator {
	return &Generator{evaluator: e}
}

// Generate returns a recommendation scoring at least minRecommendedScore,
// retrying a bounded number of times on a pathological draw. Exhausting the
// retries indicates the character-class construction itself is broken and is
// reported as an internal error.
func (g *Generator) Generate(ctx context.Context) (*Recommendation, error) {
	var rec *Recommendation

	backoff := retry.WithMaxRetries(maxGenerateRetries, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		value, err := g.build()
		if err != nil {
			return err
		}

		result := g.evaluator.Evaluate(value)
		if result.Score < minRecommendedScore {
			return retry.RetryableError(fmt.Errorf("generated password scored %d", result.Score))
		}

		rec = &Recommendation{Value: value, Score: result.Score, Category: result.Category}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: password generation failed: %v", common.ErrInternal, err)
	}

	return rec, nil
}

// build assembles the raw password: one character per class in the first
// four positions, the rest drawn from the union, then a Fisher–Yates shuffle
// to remove positional predictability.
func (g *Generator) build() (string, error) {
	classes := []string{upperChars, lowerChars, digitChars, specialChars}
	all := upperChars + lowerChars + digitChars + specialChars

	chars := make([]byte, 0, generatedLength)

	for _, class := range classes {
		c, err := randChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	for len(chars) < generatedLength {
		c, err := randChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	for i := len(chars) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func randChar(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
