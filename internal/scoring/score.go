package scoring

import (
	"math"

	"health-checkin-service/internal/domain"
)

// Composite weights per category. Location contributes features only and
// carries zero composite weight.
const (
	compositeSleep    = 2.5
	compositeDiet     = 2.5
	compositeActivity = 3.0
	compositeMental   = 2.0
	compositeLocation = 0.0
)

// neutralScore is used for categories with no answered questions so a
// partially answered set never drags a category to zero.
const neutralScore = 5.0

const maxComposite = 100.0

// Score computes per-category 0-10 scores, the 0-100 composite, and the raw
// ML feature vector from resolved numeric answers. Pure; answers missing
// from the map count as unanswered.
func Score(questions []domain.Question, answers map[string]int) domain.ScoreBreakdown {
	type accumulator struct {
		weightedSum float64
		weightTotal float64
	}
	totals := make(map[domain.Category]*accumulator)
	features := make(map[string]int)

	for _, q := range questions {
		raw, ok := answers[q.ID]
		if !ok {
			continue
		}

		normalized := 0.0
		if max := q.MaxOptionValue(); max > 0 {
			normalized = float64(raw) / float64(max)
		}
		features[q.FeatureKey] = raw

		acc := totals[q.Category]
		if acc == nil {
			acc = &accumulator{}
			totals[q.Category] = acc
		}
		acc.weightedSum += normalized * q.Weight
		acc.weightTotal += q.Weight
	}

	categoryScore := func(cat domain.Category) float64 {
		acc := totals[cat]
		if acc == nil || acc.weightTotal == 0 {
			return neutralScore
		}
		return round1(acc.weightedSum / acc.weightTotal * 10)
	}

	scores := domain.CategoryScores{
		Sleep:    categoryScore(domain.CategorySleep),
		Diet:     categoryScore(domain.CategoryDiet),
		Activity: categoryScore(domain.CategoryActivity),
		Mental:   categoryScore(domain.CategoryMental),
		Location: categoryScore(domain.CategoryLocation),
	}

	composite := round1(
		scores.Sleep*compositeSleep +
			scores.Diet*compositeDiet +
			scores.Activity*compositeActivity +
			scores.Mental*compositeMental +
			scores.Location*compositeLocation,
	)
	if composite > maxComposite {
		composite = maxComposite
	}

	return domain.ScoreBreakdown{
		Categories: scores,
		Composite:  composite,
		Features:   features,
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
