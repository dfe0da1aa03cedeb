// Package postgres persists question sets, submissions, and gamification
// stats. Uniqueness constraints in the schema are the source of truth for
// the one-set-per-date and one-submission-per-user-per-date invariants;
// violations surface as domain.ErrConflict for callers to recover from.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"health-checkin-service/internal/domain"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// QuestionSetRepository stores one immutable question set per date.
type QuestionSetRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionSetRepository(pool *pgxpool.Pool) *QuestionSetRepository {
	return &QuestionSetRepository{pool: pool}
}

func (r *QuestionSetRepository) Load(ctx context.Context, date string) (domain.DailyQuestionSet, error) {
	var raw []byte
	var createdAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT questions, created_at FROM daily_question_sets WHERE date = $1`, date,
	).Scan(&raw, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyQuestionSet{}, domain.ErrQuestionSetNotFound
	}
	if err != nil {
		return domain.DailyQuestionSet{}, fmt.Errorf("load question set: %w", err)
	}

	var qs []domain.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return domain.DailyQuestionSet{}, fmt.Errorf("unmarshal question set: %w", err)
	}
	return domain.DailyQuestionSet{Date: date, Questions: qs, CreatedAt: createdAt}, nil
}

func (r *QuestionSetRepository) Create(ctx context.Context, set domain.DailyQuestionSet) (domain.DailyQuestionSet, error) {
	raw, err := json.Marshal(set.Questions)
	if err != nil {
		return domain.DailyQuestionSet{}, fmt.Errorf("marshal question set: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO daily_question_sets (date, questions, created_at) VALUES ($1, $2, $3)`,
		set.Date, raw, set.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.DailyQuestionSet{}, domain.ErrConflict
	}
	if err != nil {
		return domain.DailyQuestionSet{}, fmt.Errorf("create question set: %w", err)
	}
	return set, nil
}

// SubmissionRepository stores scored daily submissions, unique per
// (user, date). Rows are never updated after creation.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), answers, features,
	sleep_score, diet_score, activity_score, mental_score, location_score,
	composite_score, completed, created_at`

func (r *SubmissionRepository) Load(ctx context.Context, userID, date string) (domain.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM daily_submissions WHERE user_id = $1 AND date = $2`,
		userID, date,
	)
	return scanSubmission(row)
}

func (r *SubmissionRepository) Create(ctx context.Context, sub domain.Submission) (domain.Submission, error) {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("marshal answers: %w", err)
	}
	features, err := json.Marshal(sub.Features)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("marshal features: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO daily_submissions
			(id, user_id, date, answers, features,
			 sleep_score, diet_score, activity_score, mental_score, location_score,
			 composite_score, completed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sub.ID, sub.UserID, sub.Date, answers, features,
		sub.Scores.Sleep, sub.Scores.Diet, sub.Scores.Activity, sub.Scores.Mental, sub.Scores.Location,
		sub.Composite, sub.Completed, sub.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.Submission{}, domain.ErrConflict
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) History(ctx context.Context, userID string, limit int) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM daily_submissions
		 WHERE user_id = $1 ORDER BY date DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepository) Latest(ctx context.Context, userID string) (domain.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM daily_submissions
		 WHERE user_id = $1 ORDER BY date DESC LIMIT 1`,
		userID,
	)
	return scanSubmission(row)
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var sub domain.Submission
	var answers, features []byte
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Date, &answers, &features,
		&sub.Scores.Sleep, &sub.Scores.Diet, &sub.Scores.Activity, &sub.Scores.Mental, &sub.Scores.Location,
		&sub.Composite, &sub.Completed, &sub.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	if err := json.Unmarshal(answers, &sub.Answers); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(features, &sub.Features); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal features: %w", err)
	}
	return sub, nil
}

// StatsStore persists per-user gamification counters via upsert.
type StatsStore struct {
	pool *pgxpool.Pool
}

func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

func (s *StatsStore) Load(ctx context.Context, userID string) (domain.UserStats, error) {
	stats := domain.UserStats{UserID: userID}
	var lastCheckin *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT points, streak_days, last_checkin FROM user_stats WHERE user_id = $1`, userID,
	).Scan(&stats.Points, &stats.StreakDays, &lastCheckin)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats, nil
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("load user stats: %w", err)
	}
	if lastCheckin != nil {
		stats.LastCheckin = *lastCheckin
	}
	return stats, nil
}

func (s *StatsStore) Save(ctx context.Context, stats domain.UserStats) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_stats (user_id, points, streak_days, last_checkin)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET points = EXCLUDED.points,
		     streak_days = EXCLUDED.streak_days,
		     last_checkin = EXCLUDED.last_checkin`,
		stats.UserID, stats.Points, stats.StreakDays, stats.LastCheckin,
	)
	if err != nil {
		return fmt.Errorf("save user stats: %w", err)
	}
	return nil
}
