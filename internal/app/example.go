package app

import (
	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/scoring"
)

// ExampleSet documents the question pipeline with a fixed seven-question
// payload scored best-case. Weights and the feature vector are populated
// only in demo mode; the regular API never exposes them.
type ExampleSet struct {
	Description string                `json:"description"`
	Date        string                `json:"date"`
	Total       int                   `json:"total_questions"`
	Questions   []domain.QuestionView `json:"question_set"`
	Scores      domain.CategoryScores `json:"category_scores"`
	Composite   float64               `json:"composite_score"`

	// Demo-only fields, populated solely when the server runs with the
	// demo flag.
	DemoWeights  map[string]float64 `json:"scoring_weights_demo,omitempty"`
	DemoFeatures map[string]int     `json:"ml_features_demo,omitempty"`
}

// Example returns the documented example set. demo exposes scoring weights
// and the extracted feature vector for API documentation purposes.
func (s *CheckinService) Example(demo bool) ExampleSet {
	example := s.bank.First(7)

	answers := make(map[string]int, len(example))
	for _, q := range example {
		answers[q.ID] = q.MaxOptionValue()
	}
	breakdown := scoring.Score(example, answers)

	views := make([]domain.QuestionView, 0, len(example))
	for _, q := range example {
		views = append(views, q.View())
	}

	out := ExampleSet{
		Description: "Example daily question set scored with best-case answers",
		Date:        s.now().UTC().Format(dateLayout),
		Total:       len(example),
		Questions:   views,
		Scores:      breakdown.Categories,
		Composite:   breakdown.Composite,
	}
	if demo {
		weights := make(map[string]float64, len(example))
		for _, q := range example {
			weights[q.ID] = q.Weight
		}
		out.DemoWeights = weights
		out.DemoFeatures = breakdown.Features
	}
	return out
}
