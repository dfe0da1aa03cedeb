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
)

func TestAwardCheckinStartsStreak(t *testing.T) {
	ctx := context.Background()
	rewards := app.NewRewardService(memory.NewStatsStore(), nil, logger.NewNop())

	stats, err := rewards.AwardCheckin(ctx, "u1")
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if stats.Points != 10 || stats.StreakDays != 1 {
		t.Fatalf("expected 10 points, streak 1, got %+v", stats)
	}
}

func TestAwardCheckinExtendsStreakWithinWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	rewards := app.NewRewardService(memory.NewStatsStore(), nil, logger.NewNop()).
		WithClock(func() time.Time { return now })

	if _, err := rewards.AwardCheckin(ctx, "u1"); err != nil {
		t.Fatalf("award day 1: %v", err)
	}

	now = now.Add(24 * time.Hour)
	stats, err := rewards.AwardCheckin(ctx, "u1")
	if err != nil {
		t.Fatalf("award day 2: %v", err)
	}
	if stats.StreakDays != 2 || stats.Points != 20 {
		t.Fatalf("expected streak 2 and 20 points, got %+v", stats)
	}
}

func TestAwardCheckinResetsStaleStreak(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	rewards := app.NewRewardService(memory.NewStatsStore(), nil, logger.NewNop()).
		WithClock(func() time.Time { return now })

	if _, err := rewards.AwardCheckin(ctx, "u1"); err != nil {
		t.Fatalf("award: %v", err)
	}

	now = now.Add(72 * time.Hour) // past the 48h window
	stats, err := rewards.AwardCheckin(ctx, "u1")
	if err != nil {
		t.Fatalf("award after gap: %v", err)
	}
	if stats.StreakDays != 1 {
		t.Fatalf("expected streak reset to 1, got %+v", stats)
	}
}

func TestAwardCheckinSeventhDayBonus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	rewards := app.NewRewardService(memory.NewStatsStore(), nil, logger.NewNop()).
		WithClock(func() time.Time { return now })

	var stats domain.UserStats
	var err error
	for day := 0; day < 7; day++ {
		stats, err = rewards.AwardCheckin(ctx, "u1")
		if err != nil {
			t.Fatalf("award day %d: %v", day+1, err)
		}
		now = now.Add(24 * time.Hour)
	}
	if stats.StreakDays != 7 {
		t.Fatalf("expected streak 7, got %+v", stats)
	}
	// 7 check-ins at 10 points plus the 7-day bonus.
	if stats.Points != 7*10+50 {
		t.Fatalf("expected 120 points with streak bonus, got %+v", stats)
	}
}

func TestAwardCheckinToleratesLeaderboardFailure(t *testing.T) {
	ctx := context.Background()
	rewards := app.NewRewardService(memory.NewStatsStore(), brokenLeaderboard{}, logger.NewNop())

	stats, err := rewards.AwardCheckin(ctx, "u1")
	if err != nil {
		t.Fatalf("leaderboard outage must not fail the award: %v", err)
	}
	if stats.Points != 10 {
		t.Fatalf("expected points despite leaderboard outage, got %+v", stats)
	}
}

type brokenLeaderboard struct{}

func (brokenLeaderboard) IncrementPoints(context.Context, string, int) error {
	return errors.New("redis down")
}

func (brokenLeaderboard) Top(context.Context, int) ([]domain.LeaderboardEntry, error) {
	return nil, errors.New("redis down")
}
