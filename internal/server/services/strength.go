package services

import (
	"context"

	"github.com/dsmelov/securekey/internal/strength"
)

// StrengthReport is the full answer to a strength check: the score and
// category of the submitted password, the evaluator's feedback when it falls
// short, a generated replacement, and the classifier details.
type StrengthReport struct {
	Score               int
	Category            strength.Category
	Recommendation      *strength.Feedback
	RecommendedPassword *strength.Recommendation
	Details             strength.Result
}

// StrengthService answers ad-hoc strength checks. Stateless; nothing is
// stored or logged.
type StrengthService struct {
	evaluator *strength.Evaluator
	generator *strength.Generator
}

func NewStrengthService(e *strength.Evaluator, g *strength.Generator) *StrengthService {
	return &StrengthService{evaluator: e, generator: g}
}

// Check evaluates the password and always generates a replacement, so the
// client can offer it regardless of the verdict. Recommendation carries the
// evaluator's warning and suggestions, and is nil for passwords at or above
// Strong.
func (s *StrengthService) Check(ctx context.Context, password string) (*StrengthReport, error) {
	result := s.evaluator.Evaluate(password)

	recommended, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}

	return &StrengthReport{
		Score:               result.Score,
		Category:            result.Category,
		Recommendation:      result.Feedback,
		RecommendedPassword: recommended,
		Details:             result,
	}, nil
}
