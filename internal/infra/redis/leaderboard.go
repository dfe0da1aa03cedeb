// Package redis backs the gamification leaderboard with a sorted set. All
// callers treat it as best-effort: an unavailable Redis degrades the
// leaderboard, never the check-in flow.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"health-checkin-service/internal/domain"
)

const leaderboardKey = "health:leaderboard"

// Leaderboard implements app.LeaderboardSync on a Redis sorted set.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) IncrementPoints(ctx context.Context, userID string, delta int) error {
	return l.client.ZIncrBy(ctx, leaderboardKey, float64(delta), userID).Err()
}

func (l *Leaderboard) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if n <= 0 {
		n = 20
	}
	results, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		userID, _ := z.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{
			Rank:   i + 1,
			UserID: userID,
			Points: int(z.Score),
		})
	}
	return entries, nil
}
