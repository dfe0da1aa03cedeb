package domain

import "time"

// Category is one of the five fixed health question categories.
type Category string

const (
	CategorySleep    Category = "sleep"
	CategoryDiet     Category = "diet"
	CategoryActivity Category = "activity"
	CategoryMental   Category = "mental"
	CategoryLocation Category = "location"
)

// Categories lists all categories in the order daily sets are assembled.
var Categories = []Category{
	CategorySleep,
	CategoryDiet,
	CategoryActivity,
	CategoryMental,
	CategoryLocation,
}

// Option is one answer choice. Value is the hidden score contribution and
// must never be serialized to clients.
type Option struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Question models one multiple-choice health question. Options are ordered
// worst to best. Weight is category-local and hidden from clients.
type Question struct {
	ID         string   `json:"question_id"`
	Category   Category `json:"category"`
	Text       string   `json:"question_text"`
	FeatureKey string   `json:"feature_key"`
	Weight     float64  `json:"scoring_weight"`
	Options    []Option `json:"options"`
}

// MaxOptionValue returns the largest option value, used for normalization.
func (q Question) MaxOptionValue() int {
	max := 0
	for _, opt := range q.Options {
		if opt.Value > max {
			max = opt.Value
		}
	}
	return max
}

// OptionView is the client-visible projection of an option: label only.
type OptionView struct {
	Label string `json:"label"`
}

// QuestionView is the client-visible projection of a question. It carries no
// option values and no scoring weight.
type QuestionView struct {
	ID         string       `json:"question_id"`
	Category   Category     `json:"category"`
	Text       string       `json:"question_text"`
	FeatureKey string       `json:"feature_key"`
	Options    []OptionView `json:"options"`
}

// View strips hidden scoring fields from a question.
func (q Question) View() QuestionView {
	opts := make([]OptionView, 0, len(q.Options))
	for _, opt := range q.Options {
		opts = append(opts, OptionView{Label: opt.Label})
	}
	return QuestionView{
		ID:         q.ID,
		Category:   q.Category,
		Text:       q.Text,
		FeatureKey: q.FeatureKey,
		Options:    opts,
	}
}

// DailyQuestionSet is the shared, date-keyed question set served to all
// users on a given day. Immutable once created.
type DailyQuestionSet struct {
	Date      string // YYYY-MM-DD
	Questions []Question
	CreatedAt time.Time
}

// DailySetView is what the today endpoint returns to a client.
type DailySetView struct {
	Date             string         `json:"date"`
	AlreadyCompleted bool           `json:"already_completed"`
	Questions        []QuestionView `json:"questions"`
}

// RawAnswers maps question ID to the answer as submitted: either an option
// label string or a numeric value.
type RawAnswers map[string]any

// CategoryScores holds the five normalized 0-10 category scores.
type CategoryScores struct {
	Sleep    float64 `json:"sleep_score"`
	Diet     float64 `json:"diet_score"`
	Activity float64 `json:"activity_score"`
	Mental   float64 `json:"mental_score"`
	Location float64 `json:"location_score"`
}

// ScoreBreakdown is the full server-side scoring artifact. Features feed the
// risk model and are never returned to clients.
type ScoreBreakdown struct {
	Categories CategoryScores
	Composite  float64
	Features   map[string]int
}

// ScoreResult is the client-visible submission response.
type ScoreResult struct {
	Composite float64 `json:"composite_score"`
	Sleep     float64 `json:"sleep_score"`
	Diet      float64 `json:"diet_score"`
	Activity  float64 `json:"activity_score"`
	Mental    float64 `json:"mental_score"`
	Location  float64 `json:"location_score"`
	Badge     string  `json:"badge"`
	Message   string  `json:"message"`
}

// Submission is one user's one-shot scored response for a date. Answers are
// stored exactly as submitted (labels, not values).
type Submission struct {
	ID        string
	UserID    string
	Date      string // YYYY-MM-DD
	Answers   RawAnswers
	Features  map[string]int
	Scores    CategoryScores
	Composite float64
	Completed bool
	CreatedAt time.Time
}

// HistoryEntry is the client-visible projection of a past submission.
type HistoryEntry struct {
	Date      string  `json:"date"`
	Composite float64 `json:"composite_score"`
	Sleep     float64 `json:"sleep_score"`
	Diet      float64 `json:"diet_score"`
	Activity  float64 `json:"activity_score"`
	Mental    float64 `json:"mental_score"`
}

// UserStats tracks the gamification side channel for one user.
type UserStats struct {
	UserID      string    `json:"userId"`
	Points      int       `json:"points"`
	StreakDays  int       `json:"streakDays"`
	LastCheckin time.Time `json:"lastCheckin"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// HealthProfile is the static user context consumed by the risk predictor.
type HealthProfile struct {
	Age           int             `json:"age"`
	Gender        string          `json:"gender"`
	HeightCM      float64         `json:"height_cm"`
	WeightKG      float64         `json:"weight_kg"`
	Genotype      string          `json:"genotype"`
	FamilyHistory map[string]bool `json:"family_history"`
	Conditions    []string        `json:"pre_existing_conditions"`
	Location      string          `json:"location"`
}

// RiskAssessment is the risk predictor output.
type RiskAssessment struct {
	Type       string  `json:"prediction_type"`
	Percentage float64 `json:"risk_percentage"`
	Level      string  `json:"risk_level"` // low | medium | high
}
