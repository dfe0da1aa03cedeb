// Package memory provides in-process repositories used in tests and when no
// Postgres is configured. They enforce the same uniqueness semantics as the
// database-backed implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"health-checkin-service/internal/domain"
)

// QuestionSetRepository keeps one question set per date.
type QuestionSetRepository struct {
	mu   sync.RWMutex
	sets map[string]domain.DailyQuestionSet
}

func NewQuestionSetRepository() *QuestionSetRepository {
	return &QuestionSetRepository{sets: make(map[string]domain.DailyQuestionSet)}
}

func (r *QuestionSetRepository) Load(_ context.Context, date string) (domain.DailyQuestionSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[date]
	if !ok {
		return domain.DailyQuestionSet{}, domain.ErrQuestionSetNotFound
	}
	return set, nil
}

func (r *QuestionSetRepository) Create(_ context.Context, set domain.DailyQuestionSet) (domain.DailyQuestionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[set.Date]; ok {
		return domain.DailyQuestionSet{}, domain.ErrConflict
	}
	r.sets[set.Date] = set
	return set, nil
}

// SubmissionRepository keeps at most one submission per (user, date).
type SubmissionRepository struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Submission
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{byUser: make(map[string][]domain.Submission)}
}

func (r *SubmissionRepository) Load(_ context.Context, userID, date string) (domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.byUser[userID] {
		if sub.Date == date {
			return sub, nil
		}
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}

func (r *SubmissionRepository) Create(_ context.Context, sub domain.Submission) (domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byUser[sub.UserID] {
		if existing.Date == sub.Date {
			return domain.Submission{}, domain.ErrConflict
		}
	}
	r.byUser[sub.UserID] = append(r.byUser[sub.UserID], sub)
	return sub, nil
}

func (r *SubmissionRepository) History(_ context.Context, userID string, limit int) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]domain.Submission, len(r.byUser[userID]))
	copy(subs, r.byUser[userID])
	sort.Slice(subs, func(i, j int) bool { return subs[i].Date > subs[j].Date })
	if limit > 0 && len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func (r *SubmissionRepository) Latest(ctx context.Context, userID string) (domain.Submission, error) {
	subs, err := r.History(ctx, userID, 1)
	if err != nil {
		return domain.Submission{}, err
	}
	if len(subs) == 0 {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return subs[0], nil
}

// StatsStore keeps gamification counters in memory.
type StatsStore struct {
	mu    sync.RWMutex
	stats map[string]domain.UserStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]domain.UserStats)}
}

func (s *StatsStore) Load(_ context.Context, userID string) (domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[userID]
	if !ok {
		return domain.UserStats{UserID: userID}, nil
	}
	return stats, nil
}

func (s *StatsStore) Save(_ context.Context, stats domain.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.UserID] = stats
	return nil
}
