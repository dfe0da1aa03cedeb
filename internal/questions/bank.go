package questions

import (
	"fmt"

	"health-checkin-service/internal/domain"
)

// Bank is the static catalog of candidate daily questions, partitioned by
// category. Read-only after New.
type Bank struct {
	all        []domain.Question
	byCategory map[domain.Category][]domain.Question
}

// New builds the default catalog and validates its invariants.
func New() (*Bank, error) {
	return NewWithCatalog(catalog)
}

// NewWithCatalog builds a bank from an explicit question list (tests).
func NewWithCatalog(qs []domain.Question) (*Bank, error) {
	b := &Bank{
		all:        qs,
		byCategory: make(map[domain.Category][]domain.Question),
	}
	for _, q := range qs {
		b.byCategory[q.Category] = append(b.byCategory[q.Category], q)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// ByCategory returns the catalog partitioned by category.
func (b *Bank) ByCategory() map[domain.Category][]domain.Question {
	return b.byCategory
}

// First returns the first n questions in catalog order, used by the
// documented example endpoint.
func (b *Bank) First(n int) []domain.Question {
	if n > len(b.all) {
		n = len(b.all)
	}
	return b.all[:n]
}

// validate enforces the catalog invariants at startup: every category
// populated, unique labels per question, option values non-decreasing.
func (b *Bank) validate() error {
	for _, cat := range domain.Categories {
		if len(b.byCategory[cat]) == 0 {
			return fmt.Errorf("question bank: category %q is empty", cat)
		}
	}
	seen := make(map[string]bool)
	for _, q := range b.all {
		if seen[q.ID] {
			return fmt.Errorf("question bank: duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			return fmt.Errorf("question bank: question %q has no options", q.ID)
		}
		if q.Weight <= 0 {
			return fmt.Errorf("question bank: question %q has non-positive weight", q.ID)
		}
		labels := make(map[string]bool)
		prev := q.Options[0].Value
		for _, opt := range q.Options {
			if labels[opt.Label] {
				return fmt.Errorf("question bank: question %q repeats label %q", q.ID, opt.Label)
			}
			labels[opt.Label] = true
			if opt.Value < prev {
				return fmt.Errorf("question bank: question %q options not ordered worst to best", q.ID)
			}
			prev = opt.Value
		}
	}
	return nil
}

// catalog rotates by date hash; order within the slice matters only for the
// example endpoint, which takes the first seven entries.
var catalog = []domain.Question{
	// diet
	{
		ID: "d001", Category: domain.CategoryDiet,
		Text:       "🥗 How many servings of vegetables did you eat today?",
		FeatureKey: "veg_servings", Weight: 0.20,
		Options: []domain.Option{
			{Label: "None at all 😬", Value: 0},
			{Label: "1 serving", Value: 1},
			{Label: "2–3 servings", Value: 2},
			{Label: "4 or more! 🥦", Value: 3},
		},
	},
	{
		ID: "d002", Category: domain.CategoryDiet,
		Text:       "🧃 How many sugary drinks did you have today?",
		FeatureKey: "sugary_drinks", Weight: 0.15,
		Options: []domain.Option{
			{Label: "4 or more 🥤", Value: 0},
			{Label: "2–3 drinks", Value: 1},
			{Label: "1 drink", Value: 2},
			{Label: "None — water only 💧", Value: 3},
		},
	},
	{
		ID: "d003", Category: domain.CategoryDiet,
		Text:       "🧂 How salty was your food today?",
		FeatureKey: "salt_intake", Weight: 0.15,
		Options: []domain.Option{
			{Label: "Very salty 😬", Value: 0},
			{Label: "Moderately salty", Value: 1},
			{Label: "Lightly salted", Value: 2},
			{Label: "No added salt 👍", Value: 3},
		},
	},
	{
		ID: "d004", Category: domain.CategoryDiet,
		Text:       "🍎 Did you eat any fruits today?",
		FeatureKey: "fruit_intake", Weight: 0.15,
		Options: []domain.Option{
			{Label: "No fruits today", Value: 0},
			{Label: "1 piece of fruit", Value: 1},
			{Label: "2–3 pieces 🍊", Value: 2},
			{Label: "More than 3 pieces!", Value: 3},
		},
	},
	{
		ID: "d005", Category: domain.CategoryDiet,
		Text:       "💧 How much water did you drink today?",
		FeatureKey: "water_intake", Weight: 0.20,
		Options: []domain.Option{
			{Label: "Less than 1 litre 😬", Value: 0},
			{Label: "1–2 litres", Value: 1},
			{Label: "2–3 litres 👍", Value: 2},
			{Label: "More than 3 litres 💪", Value: 3},
		},
	},
	{
		ID: "d006", Category: domain.CategoryDiet,
		Text:       "🫘 Did you eat iron-rich foods today? (beans, spinach, liver)",
		FeatureKey: "iron_rich_foods", Weight: 0.15,
		Options: []domain.Option{
			{Label: "No", Value: 0},
			{Label: "A small amount", Value: 1},
			{Label: "Yes, a good portion 💪", Value: 2},
		},
	},
	// sleep
	{
		ID: "s001", Category: domain.CategorySleep,
		Text:       "🌙 How many hours did you sleep last night?",
		FeatureKey: "sleep_hours", Weight: 0.35,
		Options: []domain.Option{
			{Label: "Less than 4 hours 😴", Value: 0},
			{Label: "4–5 hours", Value: 1},
			{Label: "6–7 hours", Value: 2},
			{Label: "7–9 hours 🌟", Value: 3},
		},
	},
	{
		ID: "s002", Category: domain.CategorySleep,
		Text:       "😴 How restful was your sleep?",
		FeatureKey: "sleep_quality", Weight: 0.35,
		Options: []domain.Option{
			{Label: "Very poor — woke up many times", Value: 0},
			{Label: "Average — some disruptions", Value: 1},
			{Label: "Good — mostly uninterrupted", Value: 2},
			{Label: "Excellent — felt fully rested ✨", Value: 3},
		},
	},
	{
		ID: "s003", Category: domain.CategorySleep,
		Text:       "📵 Did you use your phone in bed before sleeping?",
		FeatureKey: "phone_before_sleep", Weight: 0.15,
		Options: []domain.Option{
			{Label: "Yes, for 1+ hour", Value: 0},
			{Label: "Yes, 30–60 minutes", Value: 1},
			{Label: "Yes, under 30 minutes", Value: 2},
			{Label: "No screens at all 🌙", Value: 3},
		},
	},
	// activity
	{
		ID: "a001", Category: domain.CategoryActivity,
		Text:       "🏃 How much physical activity did you do today?",
		FeatureKey: "exercise_level", Weight: 0.40,
		Options: []domain.Option{
			{Label: "None at all 🛋️", Value: 0},
			{Label: "Light — short walk/stretch", Value: 1},
			{Label: "Moderate — 30 min exercise", Value: 2},
			{Label: "Intense — 1hr+ workout 💪", Value: 3},
		},
	},
	{
		ID: "a002", Category: domain.CategoryActivity,
		Text:       "🪑 How many hours did you sit/stay sedentary today?",
		FeatureKey: "sedentary_hours", Weight: 0.30,
		Options: []domain.Option{
			{Label: "More than 10 hours 😬", Value: 0},
			{Label: "7–10 hours", Value: 1},
			{Label: "4–6 hours", Value: 2},
			{Label: "Less than 4 hours 🏆", Value: 3},
		},
	},
	{
		ID: "a003", Category: domain.CategoryActivity,
		Text:       "🚶 Did you take the stairs or walk instead of using transport today?",
		FeatureKey: "incidental_activity", Weight: 0.30,
		Options: []domain.Option{
			{Label: "No, not at all", Value: 0},
			{Label: "Once or twice", Value: 1},
			{Label: "Several times", Value: 2},
			{Label: "Yes, I walked most places 🎯", Value: 3},
		},
	},
	// mental
	{
		ID: "m001", Category: domain.CategoryMental,
		Text:       "🧠 How would you rate your stress level today?",
		FeatureKey: "stress_level", Weight: 0.35,
		Options: []domain.Option{
			{Label: "Extremely stressed 😰", Value: 0},
			{Label: "Quite stressed", Value: 1},
			{Label: "Mild stress", Value: 2},
			{Label: "Calm and relaxed 😌", Value: 3},
		},
	},
	{
		ID: "m002", Category: domain.CategoryMental,
		Text:       "😊 Overall, how was your mood today?",
		FeatureKey: "mood_level", Weight: 0.35,
		Options: []domain.Option{
			{Label: "Very low / sad", Value: 0},
			{Label: "Low / flat", Value: 1},
			{Label: "Okay / neutral", Value: 2},
			{Label: "Good / positive 🌟", Value: 3},
		},
	},
	{
		ID: "m003", Category: domain.CategoryMental,
		Text:       "🤝 Did you connect with friends, family, or loved ones today?",
		FeatureKey: "social_connection", Weight: 0.30,
		Options: []domain.Option{
			{Label: "No social interaction", Value: 0},
			{Label: "Brief interaction", Value: 1},
			{Label: "Some quality time", Value: 2},
			{Label: "Great social connection 💙", Value: 3},
		},
	},
	// location / environment
	{
		ID: "l001", Category: domain.CategoryLocation,
		Text:       "🌿 How was the air quality around you today?",
		FeatureKey: "air_quality", Weight: 0.40,
		Options: []domain.Option{
			{Label: "Very polluted / smoky 😷", Value: 0},
			{Label: "Some pollution", Value: 1},
			{Label: "Average air quality", Value: 2},
			{Label: "Clean / fresh air 🌬️", Value: 3},
		},
	},
	{
		ID: "l002", Category: domain.CategoryLocation,
		Text:       "🦟 Did you sleep under a mosquito net or use repellent last night?",
		FeatureKey: "mosquito_protection", Weight: 0.35,
		Options: []domain.Option{
			{Label: "No protection at all", Value: 0},
			{Label: "Partial protection", Value: 1},
			{Label: "Yes, used repellent", Value: 2},
			{Label: "Yes, mosquito net + repellent 💪", Value: 3},
		},
	},
	{
		ID: "l003", Category: domain.CategoryLocation,
		Text:       "🚿 How was your access to clean water today?",
		FeatureKey: "clean_water_access", Weight: 0.25,
		Options: []domain.Option{
			{Label: "No clean water access", Value: 0},
			{Label: "Limited access", Value: 1},
			{Label: "Good access", Value: 2},
			{Label: "Full clean water access 💧", Value: 3},
		},
	},
}
