package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-checkin-service/internal/app"
	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/infra/memory"
	"health-checkin-service/internal/platform/logger"
	"health-checkin-service/internal/questions"
)

const testDate = "2026-08-31"

func TestTodayServesSameSetToEveryone(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	first, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today u1: %v", err)
	}
	second, err := service.Today(ctx, "u2", testDate)
	if err != nil {
		t.Fatalf("today u2: %v", err)
	}

	if len(first.Questions) < 5 || len(first.Questions) > 8 {
		t.Fatalf("expected 5-8 questions, got %d", len(first.Questions))
	}
	if len(first.Questions) != len(second.Questions) {
		t.Fatalf("set sizes differ between users: %d vs %d", len(first.Questions), len(second.Questions))
	}
	for i := range first.Questions {
		if first.Questions[i].ID != second.Questions[i].ID {
			t.Fatalf("question %d differs between users: %s vs %s", i, first.Questions[i].ID, second.Questions[i].ID)
		}
	}
}

func TestSubmitScoresAndRecords(t *testing.T) {
	ctx := context.Background()
	service, sets := newTestService(t)

	if _, err := service.Today(ctx, "u1", testDate); err != nil {
		t.Fatalf("today: %v", err)
	}

	set, err := sets.Load(ctx, testDate)
	if err != nil {
		t.Fatalf("load set: %v", err)
	}
	answers := bestAnswers(set.Questions)

	result, err := service.Submit(ctx, "u1", testDate, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Composite != 100.0 {
		t.Fatalf("best-case answers should score 100, got %v", result.Composite)
	}
	if result.Badge == "" || result.Message == "" {
		t.Fatalf("expected badge and message, got %+v", result)
	}

	after, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today after submit: %v", err)
	}
	if !after.AlreadyCompleted {
		t.Fatal("today should flag completion after submit")
	}

	history, err := service.History(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Date != testDate || history[0].Composite != 100.0 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestSubmitRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	service, sets := newTestService(t)

	if _, err := service.Today(ctx, "u1", testDate); err != nil {
		t.Fatalf("today: %v", err)
	}
	set, _ := sets.Load(ctx, testDate)
	answers := bestAnswers(set.Questions)

	if _, err := service.Submit(ctx, "u1", testDate, answers); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := service.Submit(ctx, "u1", testDate, answers); !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}
}

func TestSubmitWithoutSetFails(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	_, err := service.Submit(ctx, "u1", testDate, domain.RawAnswers{"s001": "whatever"})
	if !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected ErrQuestionSetNotFound, got %v", err)
	}
}

func TestGetOrCreateRecoversFromConflict(t *testing.T) {
	ctx := context.Background()
	bank := mustBank(t)

	winner := domain.DailyQuestionSet{Date: testDate, Questions: bank.Select(testDate)}
	sets := &racingSetRepo{winner: winner}
	service := app.NewCheckinService(sets, memory.NewSubmissionRepository(), bank, logger.NewNop())

	view, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today should recover from a lost create race: %v", err)
	}
	if len(view.Questions) != len(winner.Questions) {
		t.Fatalf("expected the winner's set to be served, got %d questions", len(view.Questions))
	}
	if sets.creates != 1 {
		t.Fatalf("expected exactly one create attempt, got %d", sets.creates)
	}
}

func TestGeneratorFallbackOnError(t *testing.T) {
	ctx := context.Background()
	bank := mustBank(t)
	sets := memory.NewQuestionSetRepository()
	service := app.NewCheckinService(sets, memory.NewSubmissionRepository(), bank, logger.NewNop()).
		WithGenerator(failingGenerator{})

	view, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	expected := bank.Select(testDate)
	if len(view.Questions) != len(expected) {
		t.Fatalf("expected deterministic fallback set of %d, got %d", len(expected), len(view.Questions))
	}
	for i := range expected {
		if view.Questions[i].ID != expected[i].ID {
			t.Fatalf("fallback set diverges at %d: %s vs %s", i, view.Questions[i].ID, expected[i].ID)
		}
	}
}

func TestGeneratorOutputUsedWhenValid(t *testing.T) {
	ctx := context.Background()
	bank := mustBank(t)
	generated := generatedSet()
	sets := memory.NewQuestionSetRepository()
	service := app.NewCheckinService(sets, memory.NewSubmissionRepository(), bank, logger.NewNop()).
		WithGenerator(staticGenerator{qs: generated})

	view, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(view.Questions) != len(generated) || view.Questions[0].ID != "g1" {
		t.Fatalf("expected generated set to be served, got %+v", view.Questions)
	}
}

func TestGeneratorMalformedOutputFallsBack(t *testing.T) {
	ctx := context.Background()
	bank := mustBank(t)
	// Too few questions: structurally invalid.
	service := app.NewCheckinService(memory.NewQuestionSetRepository(), memory.NewSubmissionRepository(), bank, logger.NewNop()).
		WithGenerator(staticGenerator{qs: generatedSet()[:2]})

	view, err := service.Today(ctx, "u1", testDate)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(view.Questions) != len(bank.Select(testDate)) {
		t.Fatalf("expected fallback to selector, got %d questions", len(view.Questions))
	}
}

func TestSubmitNotifiesRewardsAndRegistry(t *testing.T) {
	ctx := context.Background()
	bank := mustBank(t)
	sets := memory.NewQuestionSetRepository()
	rewarded := make(chan string, 1)
	registry := app.NewRegistry()
	defer registry.Close()

	service := app.NewCheckinService(sets, memory.NewSubmissionRepository(), bank, logger.NewNop()).
		WithRewards(captureRewarder{ch: rewarded}).
		WithRegistry(registry)

	if _, err := service.Today(ctx, "u1", testDate); err != nil {
		t.Fatalf("today: %v", err)
	}
	updates, cancel := registry.Subscribe("u1")
	defer cancel()

	set, _ := sets.Load(ctx, testDate)
	if _, err := service.Submit(ctx, "u1", testDate, bestAnswers(set.Questions)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case user := <-rewarded:
		if user != "u1" {
			t.Fatalf("rewarded wrong user %q", user)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reward side channel never invoked")
	}

	select {
	case result := <-updates:
		if result.Composite != 100.0 {
			t.Fatalf("unexpected published result: %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("registry never received the score")
	}
}

func TestExampleHidesWeightsUnlessDemo(t *testing.T) {
	service, _ := newTestService(t)

	plain := service.Example(false)
	if plain.DemoWeights != nil || plain.DemoFeatures != nil {
		t.Fatalf("non-demo example must not expose weights or features: %+v", plain)
	}
	if plain.Total != 7 || len(plain.Questions) != 7 {
		t.Fatalf("expected 7 example questions, got %+v", plain.Total)
	}
	if plain.Composite != 75.0 {
		t.Fatalf("expected documented example composite 75.0, got %v", plain.Composite)
	}

	demo := service.Example(true)
	if len(demo.DemoWeights) != 7 || len(demo.DemoFeatures) != 7 {
		t.Fatalf("demo example should expose weights and features, got %+v", demo)
	}
}

func newTestService(t *testing.T) (*app.CheckinService, *memory.QuestionSetRepository) {
	t.Helper()
	sets := memory.NewQuestionSetRepository()
	service := app.NewCheckinService(sets, memory.NewSubmissionRepository(), mustBank(t), logger.NewNop())
	return service, sets
}

func mustBank(t *testing.T) *questions.Bank {
	t.Helper()
	bank, err := questions.New()
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	return bank
}

func bestAnswers(qs []domain.Question) domain.RawAnswers {
	answers := make(domain.RawAnswers, len(qs))
	for _, q := range qs {
		answers[q.ID] = q.Options[len(q.Options)-1].Label
	}
	return answers
}

// racingSetRepo simulates losing the create race: the first load misses,
// the create collides, and the re-read finds the winner's row.
type racingSetRepo struct {
	winner  domain.DailyQuestionSet
	loads   int
	creates int
}

func (r *racingSetRepo) Load(_ context.Context, date string) (domain.DailyQuestionSet, error) {
	r.loads++
	if r.loads == 1 {
		return domain.DailyQuestionSet{}, domain.ErrQuestionSetNotFound
	}
	return r.winner, nil
}

func (r *racingSetRepo) Create(_ context.Context, _ domain.DailyQuestionSet) (domain.DailyQuestionSet, error) {
	r.creates++
	return domain.DailyQuestionSet{}, domain.ErrConflict
}

type failingGenerator struct{}

func (failingGenerator) GenerateSet(context.Context, string) ([]domain.Question, error) {
	return nil, errors.New("generation backend unavailable")
}

type staticGenerator struct{ qs []domain.Question }

func (g staticGenerator) GenerateSet(context.Context, string) ([]domain.Question, error) {
	return g.qs, nil
}

type captureRewarder struct{ ch chan string }

func (c captureRewarder) AwardCheckin(_ context.Context, userID string) (domain.UserStats, error) {
	c.ch <- userID
	return domain.UserStats{UserID: userID}, nil
}

func generatedSet() []domain.Question {
	opts := []domain.Option{{Label: "No", Value: 0}, {Label: "Yes", Value: 3}}
	return []domain.Question{
		{ID: "g1", Category: domain.CategorySleep, Text: "sleep?", FeatureKey: "sleep_hours", Weight: 0.35, Options: opts},
		{ID: "g2", Category: domain.CategoryDiet, Text: "diet?", FeatureKey: "veg_servings", Weight: 0.2, Options: opts},
		{ID: "g3", Category: domain.CategoryActivity, Text: "move?", FeatureKey: "exercise_level", Weight: 0.4, Options: opts},
		{ID: "g4", Category: domain.CategoryMental, Text: "mood?", FeatureKey: "mood_level", Weight: 0.35, Options: opts},
		{ID: "g5", Category: domain.CategoryLocation, Text: "air?", FeatureKey: "air_quality", Weight: 0.4, Options: opts},
	}
}
