package risk

import (
	"testing"

	"health-checkin-service/internal/domain"
)

func TestPredictRejectsUnknownType(t *testing.T) {
	p := NewPredictor()
	if _, err := p.Predict("cholera", domain.HealthProfile{}, nil); err == nil {
		t.Fatal("expected error for unknown prediction type")
	}
}

func TestPredictHypertensionLevels(t *testing.T) {
	p := NewPredictor()

	low, err := p.Predict(TypeHypertension, domain.HealthProfile{Age: 22}, nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if low.Level != "low" {
		t.Fatalf("young healthy profile should be low risk, got %s (%.1f%%)", low.Level, low.Percentage)
	}

	high, err := p.Predict(TypeHypertension, domain.HealthProfile{
		Age:           70,
		HeightCM:      165,
		WeightKG:      95,
		FamilyHistory: map[string]bool{"hypertension": true},
		Conditions:    []string{"Diabetes"},
	}, map[string]int{"sleep_hours": 0, "stress_level": 0})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if high.Level != "high" {
		t.Fatalf("loaded profile should be high risk, got %s (%.1f%%)", high.Level, high.Percentage)
	}
	if high.Percentage > 95.0 {
		t.Fatalf("risk must be capped at 95%%, got %.1f", high.Percentage)
	}
}

func TestPredictRoundsPercentageToOneDecimal(t *testing.T) {
	p := NewPredictor()

	// 0.15 base + 0.35 location accumulates float error; the percentage
	// must still come out as exactly 50.0.
	got, err := p.Predict(TypeMalaria, domain.HealthProfile{Location: "rural"}, nil)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if got.Percentage != 50.0 {
		t.Fatalf("expected exactly 50.0, got %v", got.Percentage)
	}
}

func TestPredictMalariaUsesLocationAndProtection(t *testing.T) {
	p := NewPredictor()

	base, _ := p.Predict(TypeMalaria, domain.HealthProfile{Location: "Oslo"}, nil)
	tropical, _ := p.Predict(TypeMalaria, domain.HealthProfile{Location: "Lagos, Nigeria"}, map[string]int{"mosquito_protection": 0})
	if tropical.Percentage <= base.Percentage {
		t.Fatalf("tropical unprotected profile should outrank baseline: %.1f vs %.1f", tropical.Percentage, base.Percentage)
	}
	if tropical.Level == "low" {
		t.Fatalf("expected elevated malaria risk, got %s", tropical.Level)
	}
}
