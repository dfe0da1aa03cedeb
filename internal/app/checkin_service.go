package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"health-checkin-service/internal/domain"
	"health-checkin-service/internal/platform/logger"
	"health-checkin-service/internal/questions"
	"health-checkin-service/internal/scoring"
)

const dateLayout = "2006-01-02"

// QuestionSetRepository persists the shared per-date question sets. Create
// must enforce a uniqueness constraint on date and return domain.ErrConflict
// when a set already exists.
type QuestionSetRepository interface {
	Load(ctx context.Context, date string) (domain.DailyQuestionSet, error)
	Create(ctx context.Context, set domain.DailyQuestionSet) (domain.DailyQuestionSet, error)
}

// SubmissionRepository persists scored submissions. Create must enforce a
// uniqueness constraint on (user, date) and return domain.ErrConflict on a
// duplicate.
type SubmissionRepository interface {
	Load(ctx context.Context, userID, date string) (domain.Submission, error)
	Create(ctx context.Context, sub domain.Submission) (domain.Submission, error)
	History(ctx context.Context, userID string, limit int) ([]domain.Submission, error)
	Latest(ctx context.Context, userID string) (domain.Submission, error)
}

// SetGenerator is the optional generative collaborator that can produce a
// fresh question set for a date. Any error falls back to the deterministic
// selector.
type SetGenerator interface {
	GenerateSet(ctx context.Context, date string) ([]domain.Question, error)
}

// Rewarder awards gamification points after a check-in. Best-effort only:
// failures never affect the submission response.
type Rewarder interface {
	AwardCheckin(ctx context.Context, userID string) (domain.UserStats, error)
}

// CheckinService implements the daily question pipeline: serve today's set,
// score submissions, and keep the one-per-user-per-day ledger.
type CheckinService struct {
	sets        QuestionSetRepository
	submissions SubmissionRepository
	bank        *questions.Bank
	generator   SetGenerator // optional
	rewards     Rewarder     // optional
	registry    *Registry    // optional
	log         *logger.Logger
	sf          singleflight.Group
	now         func() time.Time
}

func NewCheckinService(sets QuestionSetRepository, submissions SubmissionRepository, bank *questions.Bank, log *logger.Logger) *CheckinService {
	return &CheckinService{
		sets:        sets,
		submissions: submissions,
		bank:        bank,
		log:         log,
		now:         time.Now,
	}
}

// WithGenerator enables the generative question path.
func (s *CheckinService) WithGenerator(g SetGenerator) *CheckinService {
	s.generator = g
	return s
}

// WithRewards enables the points/leaderboard side channel.
func (s *CheckinService) WithRewards(r Rewarder) *CheckinService {
	s.rewards = r
	return s
}

// WithRegistry enables live score notifications.
func (s *CheckinService) WithRegistry(r *Registry) *CheckinService {
	s.registry = r
	return s
}

// WithClock is test-only for deterministic dates.
func (s *CheckinService) WithClock(now func() time.Time) *CheckinService {
	s.now = now
	return s
}

// Today returns the question set for the given date (today when empty),
// creating and persisting it on first request. The returned view carries
// labels and metadata only; option values and weights are stripped.
func (s *CheckinService) Today(ctx context.Context, userID, date string) (domain.DailySetView, error) {
	date = s.normalizeDate(date)

	completed := false
	if sub, err := s.submissions.Load(ctx, userID, date); err == nil {
		completed = sub.Completed
	} else if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return domain.DailySetView{}, err
	}

	set, err := s.getOrCreateSet(ctx, date)
	if err != nil {
		return domain.DailySetView{}, err
	}

	views := make([]domain.QuestionView, 0, len(set.Questions))
	for _, q := range set.Questions {
		views = append(views, q.View())
	}
	return domain.DailySetView{
		Date:             date,
		AlreadyCompleted: completed,
		Questions:        views,
	}, nil
}

// Submit scores a user's answers for the date and records the one-shot
// submission. Answers are stored verbatim (labels, not values). Returns
// domain.ErrDuplicateSubmission if the user already checked in, and
// domain.ErrQuestionSetNotFound if no set was generated for the date.
func (s *CheckinService) Submit(ctx context.Context, userID, date string, answers domain.RawAnswers) (domain.ScoreResult, error) {
	date = s.normalizeDate(date)

	// Cheap duplicate check before any scoring work. The storage constraint
	// on (user, date) remains the source of truth for races.
	if _, err := s.submissions.Load(ctx, userID, date); err == nil {
		return domain.ScoreResult{}, domain.ErrDuplicateSubmission
	} else if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return domain.ScoreResult{}, err
	}

	set, err := s.sets.Load(ctx, date)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	resolved := scoring.Resolve(set.Questions, answers)
	breakdown := scoring.Score(set.Questions, resolved)

	sub := domain.Submission{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		Answers:   answers,
		Features:  breakdown.Features,
		Scores:    breakdown.Categories,
		Composite: breakdown.Composite,
		Completed: true,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.ScoreResult{}, domain.ErrDuplicateSubmission
		}
		return domain.ScoreResult{}, err
	}

	badge, message := scoring.Badge(breakdown.Composite)
	result := domain.ScoreResult{
		Composite: breakdown.Composite,
		Sleep:     breakdown.Categories.Sleep,
		Diet:      breakdown.Categories.Diet,
		Activity:  breakdown.Categories.Activity,
		Mental:    breakdown.Categories.Mental,
		Location:  breakdown.Categories.Location,
		Badge:     badge,
		Message:   message,
	}

	s.afterSubmit(userID, result)
	return result, nil
}

// afterSubmit runs the best-effort side channels. Their failure must never
// abort or roll back the scored submission.
func (s *CheckinService) afterSubmit(userID string, result domain.ScoreResult) {
	if s.registry != nil {
		s.registry.Publish(userID, result)
	}
	if s.rewards == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.rewards.AwardCheckin(ctx, userID); err != nil {
			s.log.Warn("checkin reward failed", "user", userID, "err", err)
		}
	}()
}

// History returns the user's most recent submissions, newest first, scores
// only. Feature vectors stay server-side.
func (s *CheckinService) History(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 14
	}
	subs, err := s.submissions.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.HistoryEntry, 0, len(subs))
	for _, sub := range subs {
		entries = append(entries, domain.HistoryEntry{
			Date:      sub.Date,
			Composite: sub.Composite,
			Sleep:     sub.Scores.Sleep,
			Diet:      sub.Scores.Diet,
			Activity:  sub.Scores.Activity,
			Mental:    sub.Scores.Mental,
		})
	}
	return entries, nil
}

// LatestFeatures returns the feature vector of the user's most recent
// submission, or an empty map when they have none. Consumed by the risk
// model collaborator, never by clients.
func (s *CheckinService) LatestFeatures(ctx context.Context, userID string) (map[string]int, error) {
	sub, err := s.submissions.Latest(ctx, userID)
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	return sub.Features, nil
}

func (s *CheckinService) getOrCreateSet(ctx context.Context, date string) (domain.DailyQuestionSet, error) {
	// Singleflight collapses same-process stampedes; correctness across
	// processes rests on the storage layer's unique constraint on date.
	v, err, _ := s.sf.Do(date, func() (interface{}, error) {
		set, err := s.sets.Load(ctx, date)
		if err == nil {
			return set, nil
		}
		if !errors.Is(err, domain.ErrQuestionSetNotFound) {
			return domain.DailyQuestionSet{}, err
		}

		qs := s.generateQuestions(ctx, date)
		created, err := s.sets.Create(ctx, domain.DailyQuestionSet{
			Date:      date,
			Questions: qs,
			CreatedAt: s.now().UTC(),
		})
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent first-requester won the race; their set is now
			// the set of record for this date.
			return s.sets.Load(ctx, date)
		}
		if err != nil {
			return domain.DailyQuestionSet{}, err
		}
		return created, nil
	})
	if err != nil {
		return domain.DailyQuestionSet{}, err
	}
	return v.(domain.DailyQuestionSet), nil
}

// generateQuestions asks the generative collaborator for a fresh set and
// falls back to the deterministic selector on any error or malformed output.
func (s *CheckinService) generateQuestions(ctx context.Context, date string) []domain.Question {
	if s.generator != nil {
		qs, err := s.generator.GenerateSet(ctx, date)
		if err == nil && validGeneratedSet(qs) {
			return qs
		}
		if err != nil {
			s.log.Warn("question generation failed, using deterministic selector", "date", date, "err", err)
		} else {
			s.log.Warn("generated question set malformed, using deterministic selector", "date", date, "count", len(qs))
		}
	}
	return s.bank.Select(date)
}

// validGeneratedSet accepts only structurally sound generator output: at
// least five questions, each fully populated with options.
func validGeneratedSet(qs []domain.Question) bool {
	if len(qs) < 5 {
		return false
	}
	for _, q := range qs {
		if q.ID == "" || q.Category == "" || q.Text == "" || q.FeatureKey == "" || len(q.Options) == 0 {
			return false
		}
	}
	return true
}

func (s *CheckinService) normalizeDate(date string) string {
	if date == "" {
		return s.now().UTC().Format(dateLayout)
	}
	if t, err := time.Parse(dateLayout, date); err == nil {
		return t.Format(dateLayout)
	}
	return s.now().UTC().Format(dateLayout)
}
