package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLeaderboardRanksByPoints(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	lb := NewLeaderboard(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	if err := lb.IncrementPoints(ctx, "alice", 10); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := lb.IncrementPoints(ctx, "bob", 60); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := lb.IncrementPoints(ctx, "alice", 20); err != nil {
		t.Fatalf("increment: %v", err)
	}

	top, err := lb.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].UserID != "bob" || top[0].Points != 60 || top[0].Rank != 1 {
		t.Fatalf("expected bob leading with 60, got %+v", top[0])
	}
	if top[1].UserID != "alice" || top[1].Points != 30 || top[1].Rank != 2 {
		t.Fatalf("expected alice second with 30, got %+v", top[1])
	}
}
