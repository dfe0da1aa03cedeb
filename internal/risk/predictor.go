// Package risk scores condition risk from a static health profile plus the
// latest daily-checkin feature vector. The heuristics here stand in for the
// trained classifiers served out-of-process; training is out of scope.
package risk

import (
	"fmt"
	"math"
	"strings"

	"health-checkin-service/internal/domain"
)

const (
	TypeHypertension = "hypertension"
	TypeMalaria      = "malaria"
)

const maxProbability = 0.95

// Predictor computes risk assessments. Stateless and safe for concurrent use.
type Predictor struct{}

func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict returns the risk percentage (0-100) and tier for a prediction
// type. features is the latest submission's feature vector and may be empty.
func (p *Predictor) Predict(kind string, profile domain.HealthProfile, features map[string]int) (domain.RiskAssessment, error) {
	var prob float64
	switch kind {
	case TypeHypertension:
		prob = p.hypertension(profile, features)
	case TypeMalaria:
		prob = p.malaria(profile, features)
	default:
		return domain.RiskAssessment{}, fmt.Errorf("unknown prediction type %q", kind)
	}

	pct := round1(prob * 100)
	level := "high"
	switch {
	case pct < 30:
		level = "low"
	case pct < 65:
		level = "medium"
	}
	return domain.RiskAssessment{Type: kind, Percentage: pct, Level: level}, nil
}

func (p *Predictor) hypertension(profile domain.HealthProfile, features map[string]int) float64 {
	score := 0.0

	age := profile.Age
	if age == 0 {
		age = 30
	}
	score += min(float64(age)/100, 0.4)

	if profile.FamilyHistory[TypeHypertension] {
		score += 0.2
	}
	if hasCondition(profile, "diabetes") {
		score += 0.15
	}
	if bmi(profile) > 30 {
		score += 0.15
	}

	// Recent behavior nudges the heuristic: sustained poor sleep and high
	// stress are both reported on a 0-3 scale, 0 worst.
	if v, ok := features["sleep_hours"]; ok && v <= 1 {
		score += 0.05
	}
	if v, ok := features["stress_level"]; ok && v == 0 {
		score += 0.05
	}

	return min(score, maxProbability)
}

func (p *Predictor) malaria(profile domain.HealthProfile, features map[string]int) float64 {
	score := 0.15

	location := strings.ToLower(profile.Location)
	for _, keyword := range []string{"lagos", "abuja", "kano", "rural", "nigeria", "ghana", "kenya"} {
		if strings.Contains(location, keyword) {
			score += 0.35
			break
		}
	}
	if strings.ToUpper(profile.Genotype) == "SS" {
		score += 0.2
	}
	if hasCondition(profile, "malaria") {
		score += 0.15
	}
	// No mosquito protection on the latest check-in.
	if v, ok := features["mosquito_protection"]; ok && v == 0 {
		score += 0.1
	}

	return min(score, maxProbability)
}

func bmi(profile domain.HealthProfile) float64 {
	h := profile.HeightCM
	if h == 0 {
		h = 170
	}
	w := profile.WeightKG
	if w == 0 {
		w = 70
	}
	meters := h / 100
	return w / (meters * meters)
}

func hasCondition(profile domain.HealthProfile, name string) bool {
	for _, c := range profile.Conditions {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
