package scoring

// badgeTier maps a composite-score floor to its badge and encouragement
// message. Thresholds are inclusive lower bounds.
type badgeTier struct {
	floor   float64
	badge   string
	message string
}

var tiers = []badgeTier{
	{85, "🏆 Health Champion", "Outstanding! You're crushing your health goals today!"},
	{70, "🌟 Wellness Star", "Great job! You're building excellent health habits."},
	{55, "💪 Making Progress", "Good effort! Small improvements add up over time."},
	{40, "🌱 Getting Started", "You've made a start — tomorrow is another chance to improve!"},
	{0, "❤️ Keep Going", "Every day is a new opportunity. You've got this! 💙"},
}

// Badge returns the badge label and message for a composite score.
func Badge(composite float64) (string, string) {
	for _, tier := range tiers {
		if composite >= tier.floor {
			return tier.badge, tier.message
		}
	}
	last := tiers[len(tiers)-1]
	return last.badge, last.message
}
