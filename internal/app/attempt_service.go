package app

import (
	"context"
	"log"
	"math"
	"time"

	"quiz-runner/internal/domain"
	"github.com/google/uuid"
)

// AttemptRegistry abstracts where live attempts are tracked (in-memory, Redis, etc).
type AttemptRegistry interface {
	Put(a *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// HistoryStore keeps completed attempts, newest first.
type HistoryStore interface {
	Record(ctx context.Context, rec domain.AttemptRecord) error
	List(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error)
}

// OpenRequest describes a new attempt.
type OpenRequest struct {
	QuizID     string
	UserID     string
	Capability domain.Capability
}

// AttemptService owns attempts from open to discard.
type AttemptService struct {
	attempts  AttemptRegistry
	quizzes   QuizRepository
	submitter Submitter
	history   HistoryStore
	cfg       AttemptConfig
	newID     func() string
}

// NewAttemptService wires the service. history may be nil.
func NewAttemptService(attempts AttemptRegistry, quizzes QuizRepository, submitter Submitter, history HistoryStore, cfg AttemptConfig) *AttemptService {
	return &AttemptService{
		attempts:  attempts,
		quizzes:   quizzes,
		submitter: submitter,
		history:   history,
		cfg:       cfg.withDefaults(),
		newID:     uuid.NewString,
	}
}

// Open registers a fresh attempt in the loading phase without loading it.
func (s *AttemptService) Open(req OpenRequest) *Attempt {
	cfg := s.cfg
	next := cfg.OnComplete
	cfg.OnComplete = func(a *Attempt, review domain.Review) {
		s.record(a, review)
		if next != nil {
			next(a, review)
		}
	}
	attempt := NewAttempt(s.newID(), req.UserID, req.QuizID, req.Capability, s.quizzes, s.submitter, cfg)
	s.attempts.Put(attempt)
	return attempt
}

// Start opens an attempt and loads its quiz. On a load failure the attempt is
// still returned, in the unavailable phase.
func (s *AttemptService) Start(ctx context.Context, req OpenRequest) (*Attempt, error) {
	attempt := s.Open(req)
	if err := attempt.Load(ctx); err != nil {
		return attempt, err
	}
	return attempt, nil
}

// Get returns a registered attempt.
func (s *AttemptService) Get(attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Submit submits a registered attempt on behalf of its user.
func (s *AttemptService) Submit(ctx context.Context, attemptID string) (domain.Review, error) {
	attempt, err := s.Get(attemptID)
	if err != nil {
		return domain.Review{}, err
	}
	return attempt.Submit(ctx)
}

// Discard closes an attempt and forgets it.
func (s *AttemptService) Discard(attemptID string) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return
	}
	attempt.Close()
	s.attempts.Delete(attemptID)
}

// Touch refreshes the liveness of an attempt when the registry tracks it.
func (s *AttemptService) Touch(ctx context.Context, attemptID string) error {
	if t, ok := s.attempts.(interface {
		Touch(ctx context.Context, attemptID string) error
	}); ok {
		return t.Touch(ctx, attemptID)
	}
	return nil
}

// History lists a user's recent attempts with a summary over them.
func (s *AttemptService) History(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, domain.HistorySummary, error) {
	if s.history == nil {
		return nil, domain.HistorySummary{}, nil
	}
	records, err := s.history.List(ctx, userID, limit)
	if err != nil {
		return nil, domain.HistorySummary{}, err
	}
	return records, Summarize(records), nil
}

func (s *AttemptService) record(a *Attempt, review domain.Review) {
	if s.history == nil {
		return
	}
	rec := domain.AttemptRecord{
		ID:              a.ID(),
		UserID:          a.UserID(),
		QuizID:          a.QuizID(),
		QuizTitle:       review.QuizTitle,
		Score:           review.Score,
		Total:           review.TotalQuestions,
		Percentage:      review.Percentage,
		DurationSeconds: int(a.Duration() / time.Second),
		CompletedAt:     s.cfg.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Record(ctx, rec); err != nil {
		log.Printf("attempt %s: record history: %v", a.ID(), err)
	}
}

// Summarize aggregates attempt records.
func Summarize(records []domain.AttemptRecord) domain.HistorySummary {
	if len(records) == 0 {
		return domain.HistorySummary{}
	}
	quizzes := make(map[string]struct{}, len(records))
	total, best := 0, 0
	for _, rec := range records {
		quizzes[rec.QuizID] = struct{}{}
		total += rec.Percentage
		if rec.Percentage > best {
			best = rec.Percentage
		}
	}
	return domain.HistorySummary{
		Attempts:        len(records),
		AveragePercent:  int(math.Round(float64(total) / float64(len(records)))),
		BestPercent:     best,
		DistinctQuizzes: len(quizzes),
	}
}
