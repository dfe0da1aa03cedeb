package app

import (
	"context"
	"time"

	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/platform/logger"
)

const (
	checkinPoints     = 10
	streakBonusPoints = 50
	streakBonusEvery  = 7
	// A streak survives as long as consecutive check-ins are under 48h apart.
	streakWindow = 48 * time.Hour
)

// StatsStore persists per-user gamification counters. Load returns zero
// stats (not an error) for a user with no history.
type StatsStore interface {
	Load(ctx context.Context, userID string) (domain.UserStats, error)
	Save(ctx context.Context, stats domain.UserStats) error
}

// LeaderboardSync mirrors points into the shared leaderboard. Implementations
// are best-effort; the reward flow tolerates their failure.
type LeaderboardSync interface {
	IncrementPoints(ctx context.Context, userID string, delta int) error
	Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// RewardService maintains points and streaks after check-ins.
type RewardService struct {
	stats       StatsStore
	leaderboard LeaderboardSync // optional
	log         *logger.Logger
	now         func() time.Time
}

func NewRewardService(stats StatsStore, leaderboard LeaderboardSync, log *logger.Logger) *RewardService {
	return &RewardService{
		stats:       stats,
		leaderboard: leaderboard,
		log:         log,
		now:         time.Now,
	}
}

// WithClock is test-only for deterministic streak windows.
func (r *RewardService) WithClock(now func() time.Time) *RewardService {
	r.now = now
	return r
}

// AwardCheckin grants check-in points, extends or resets the streak, and
// mirrors the delta to the leaderboard. Leaderboard unavailability is logged
// and ignored.
func (r *RewardService) AwardCheckin(ctx context.Context, userID string) (domain.UserStats, error) {
	stats, err := r.stats.Load(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}

	now := r.now().UTC()
	earned := checkinPoints
	if !stats.LastCheckin.IsZero() && now.Sub(stats.LastCheckin) < streakWindow {
		stats.StreakDays++
	} else {
		stats.StreakDays = 1
	}
	if stats.StreakDays%streakBonusEvery == 0 {
		earned += streakBonusPoints
		r.log.Info("streak bonus awarded", "user", userID, "streak", stats.StreakDays)
	}

	stats.UserID = userID
	stats.Points += earned
	stats.LastCheckin = now
	if err := r.stats.Save(ctx, stats); err != nil {
		return domain.UserStats{}, err
	}

	if r.leaderboard != nil {
		if err := r.leaderboard.IncrementPoints(ctx, userID, earned); err != nil {
			r.log.Warn("leaderboard sync failed", "user", userID, "err", err)
		}
	}
	return stats, nil
}

// Leaderboard returns the top-N users by points, or an empty board when no
// leaderboard backend is configured.
func (r *RewardService) Leaderboard(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if r.leaderboard == nil {
		return []domain.LeaderboardEntry{}, nil
	}
	return r.leaderboard.Top(ctx, n)
}

// Stats returns the user's current gamification counters.
func (r *RewardService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	return r.stats.Load(ctx, userID)
}
