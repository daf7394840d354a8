package app

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-runner/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Submitter sends an attempt's answers to the backend for scoring.
type Submitter interface {
	Submit(ctx context.Context, quizID string, answers domain.Answers) (domain.Result, error)
}

// Trigger identifies what asked for a submission.
type Trigger int

const (
	TriggerUser Trigger = iota
	TriggerTimer
)

func (t Trigger) String() string {
	if t == TriggerTimer {
		return "timer"
	}
	return "user"
}

// AttemptConfig tunes an attempt. Zero values fall back to defaults.
type AttemptConfig struct {
	TickInterval time.Duration
	NewTicker    func(time.Duration) Ticker
	Now          func() time.Time
	// OnComplete runs once, outside the attempt lock, after a successful submission.
	OnComplete func(*Attempt, domain.Review)
}

func (c AttemptConfig) withDefaults() AttemptConfig {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.NewTicker == nil {
		c.NewTicker = NewTimeTicker
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Attempt is one user's pass through a quiz: the loaded questions, the answer
// ledger, the cursor and countdown, and the submission state machine.
//
//	loading -> ready -> in_progress -> submitting -> completed
//	                                        |
//	                                        +-> failed -> submitting (user retry)
//	loading -> unavailable
//
// All transitions happen under mu. The submission latch is the move to
// submitting, taken under mu before the network call is issued.
type Attempt struct {
	id         string
	userID     string
	quizID     string
	capability domain.Capability
	quizzes    QuizRepository
	submitter  Submitter
	cfg        AttemptConfig

	// ctx is cancelled by Close; in-flight requests are bound to it.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	phase       domain.Phase
	loadStarted bool
	closed      bool
	quiz        domain.Quiz
	ledger      *Ledger
	cursor      *Cursor
	countdown   *Countdown
	stopTick    chan struct{}
	lastErr     error
	review      *domain.Review
	startedAt   time.Time
	finishedAt  time.Time
	subscribers map[chan domain.Snapshot]struct{}
}

// NewAttempt creates an attempt in the loading phase. Call Load to fetch its quiz.
func NewAttempt(id, userID, quizID string, capability domain.Capability, quizzes QuizRepository, submitter Submitter, cfg AttemptConfig) *Attempt {
	ctx, cancel := context.WithCancel(context.Background())
	return &Attempt{
		id:          id,
		userID:      userID,
		quizID:      quizID,
		capability:  capability,
		quizzes:     quizzes,
		submitter:   submitter,
		cfg:         cfg.withDefaults(),
		ctx:         ctx,
		cancel:      cancel,
		phase:       domain.PhaseLoading,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

func (a *Attempt) ID() string     { return a.id }
func (a *Attempt) UserID() string { return a.userID }
func (a *Attempt) QuizID() string { return a.quizID }

func (a *Attempt) Phase() domain.Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Err is the error that moved the attempt to failed or unavailable.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Review returns the reconciled results once the attempt is completed.
func (a *Attempt) Review() (domain.Review, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.review == nil {
		return domain.Review{}, false
	}
	return *a.review, true
}

// Answers returns a copy of the current ledger.
func (a *Attempt) Answers() domain.Answers {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ledger == nil {
		return domain.Answers{}
	}
	return a.ledger.Payload()
}

// Duration is the time from start to completion, or zero while unfinished.
func (a *Attempt) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finishedAt.IsZero() {
		return 0
	}
	return a.finishedAt.Sub(a.startedAt)
}

// Load fetches the quiz once and starts the attempt. A response arriving after
// Close is discarded.
func (a *Attempt) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return domain.ErrAttemptClosed
	}
	if a.loadStarted {
		a.mu.Unlock()
		return domain.ErrAlreadyLoaded
	}
	a.loadStarted = true
	a.mu.Unlock()

	reqCtx, done := a.bind(ctx)
	quiz, err := a.quizzes.GetQuiz(reqCtx, a.quizID)
	done()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return domain.ErrAttemptClosed
	}
	if err == nil && (quiz.Inactive || len(quiz.Questions) == 0) {
		err = domain.ErrQuizNotFound
	}
	if err != nil {
		a.phase = domain.PhaseUnavailable
		a.lastErr = err
		log.Printf("attempt %s: load quiz %s: %v", a.id, a.quizID, err)
		a.broadcastLocked()
		return err
	}

	a.quiz = withoutCorrectness(quiz)
	a.ledger = NewLedger(a.quiz.Questions)
	a.cursor = NewCursor(len(a.quiz.Questions))
	a.countdown = NewCountdown(a.quiz.TimeLimitMinutes)
	a.phase = domain.PhaseReady
	a.startLocked()
	return nil
}

func (a *Attempt) startLocked() {
	a.phase = domain.PhaseInProgress
	a.startedAt = a.cfg.Now()
	if a.countdown != nil {
		stop := make(chan struct{})
		a.stopTick = stop
		go a.runTicker(a.cfg.NewTicker(a.cfg.TickInterval), stop)
	}
	a.broadcastLocked()
}

func (a *Attempt) runTicker(t Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			select {
			case <-stop:
				return
			default:
			}
			a.Tick()
		}
	}
}

func (a *Attempt) stopTickerLocked() {
	if a.countdown != nil {
		a.countdown.Stop()
	}
	if a.stopTick != nil {
		close(a.stopTick)
		a.stopTick = nil
	}
}

// Tick advances the countdown by one second. The tick that reaches zero
// triggers submission; ticks outside in_progress are ignored.
func (a *Attempt) Tick() {
	a.mu.Lock()
	if a.closed || a.phase != domain.PhaseInProgress || a.countdown == nil {
		a.mu.Unlock()
		return
	}
	if !a.countdown.Tick() {
		a.broadcastLocked()
		a.mu.Unlock()
		return
	}
	answers, err := a.beginSubmitLocked(TriggerTimer)
	a.mu.Unlock()
	if err != nil {
		return
	}
	_, _ = a.send(a.ctx, answers, TriggerTimer)
}

// Select records optionID for the displayed question.
func (a *Attempt) Select(questionID, optionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return domain.ErrAttemptClosed
	}
	if a.phase != domain.PhaseInProgress {
		return domain.ErrNotInProgress
	}
	if !a.ledger.Knows(questionID) {
		return domain.ErrQuestionNotFound
	}
	if a.quiz.Questions[a.cursor.Index()].ID != questionID {
		return domain.ErrQuestionNotDisplayed
	}
	if !a.ledger.Has(questionID, optionID) {
		return domain.ErrOptionNotFound
	}
	a.ledger.Set(questionID, optionID)
	a.broadcastLocked()
	return nil
}

// Next shows the following question; a no-op on the last one.
func (a *Attempt) Next() bool {
	return a.move((*Cursor).Next)
}

// Previous shows the preceding question; a no-op on the first one.
func (a *Attempt) Previous() bool {
	return a.move((*Cursor).Previous)
}

func (a *Attempt) move(step func(*Cursor) bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.cursor == nil {
		return false
	}
	if a.phase != domain.PhaseInProgress && a.phase != domain.PhaseFailed {
		return false
	}
	if !step(a.cursor) {
		return false
	}
	a.broadcastLocked()
	return true
}

// Submit is the user's submit action. It is also the retry after a failed
// submission. Triggers that lose the latch return ErrSubmissionInFlight or
// ErrAttemptCompleted without any network call.
func (a *Attempt) Submit(ctx context.Context) (domain.Review, error) {
	a.mu.Lock()
	answers, err := a.beginSubmitLocked(TriggerUser)
	a.mu.Unlock()
	if err != nil {
		return domain.Review{}, err
	}
	return a.send(ctx, answers, TriggerUser)
}

func (a *Attempt) beginSubmitLocked(trigger Trigger) (domain.Answers, error) {
	if a.closed {
		return nil, domain.ErrAttemptClosed
	}
	switch a.phase {
	case domain.PhaseInProgress:
	case domain.PhaseFailed:
		// Failed submissions are only retried by the user.
		if trigger != TriggerUser {
			return nil, domain.ErrNotInProgress
		}
	case domain.PhaseSubmitting:
		return nil, domain.ErrSubmissionInFlight
	case domain.PhaseCompleted:
		return nil, domain.ErrAttemptCompleted
	default:
		return nil, domain.ErrNotInProgress
	}

	a.phase = domain.PhaseSubmitting
	a.lastErr = nil
	a.stopTickerLocked()
	a.broadcastLocked()
	return a.ledger.Payload(), nil
}

func (a *Attempt) send(ctx context.Context, answers domain.Answers, trigger Trigger) (domain.Review, error) {
	var (
		result domain.Result
		err    error
	)
	if !a.capability.Authenticated {
		err = domain.ErrAuthRequired
	} else {
		reqCtx, done := a.bind(ctx)
		result, err = a.submitter.Submit(reqCtx, a.quizID, answers)
		done()
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return domain.Review{}, domain.ErrAttemptClosed
	}
	if err != nil {
		a.phase = domain.PhaseFailed
		a.lastErr = err
		a.broadcastLocked()
		a.mu.Unlock()
		log.Printf("attempt %s: %s submit of quiz %s: %v", a.id, trigger, a.quizID, err)
		return domain.Review{}, err
	}

	review := Reconcile(a.quiz.Questions, answers, result)
	if review.QuizTitle == "" {
		review.QuizTitle = a.quiz.Title
	}
	a.review = &review
	a.phase = domain.PhaseCompleted
	a.cursor.Freeze()
	a.finishedAt = a.cfg.Now()
	a.broadcastLocked()
	onComplete := a.cfg.OnComplete
	a.mu.Unlock()

	if review.ScoreMismatch {
		log.Printf("attempt %s: reconciled %d correct answers but backend scored %d/%d", a.id, review.ClientScore, review.Score, review.TotalQuestions)
	}
	if onComplete != nil {
		onComplete(a, review)
	}
	return review, nil
}

// bind derives a request context that is also cancelled when the attempt closes.
func (a *Attempt) bind(ctx context.Context) (context.Context, func()) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.ctx, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

// Close tears the attempt down: the countdown stops, pending responses are
// dropped on arrival, and subscriptions end.
func (a *Attempt) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.cancel()
	a.stopTickerLocked()
	for ch := range a.subscribers {
		delete(a.subscribers, ch)
		close(ch)
	}
}

// Closed reports whether Close has been called.
func (a *Attempt) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Snapshot returns the current view of the attempt.
func (a *Attempt) Snapshot() domain.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (a *Attempt) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	a.subscribers[ch] = struct{}{}
	ch <- a.snapshotLocked()
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

func (a *Attempt) broadcastLocked() {
	if len(a.subscribers) == 0 {
		return
	}
	snap := a.snapshotLocked()
	for ch := range a.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscribers only need the latest state.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (a *Attempt) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		AttemptID: a.id,
		QuizID:    a.quizID,
		QuizTitle: a.quiz.Title,
		Phase:     a.phase,
		CanManage: a.capability.Admin,
	}
	if a.cursor != nil {
		idx := a.cursor.Index()
		q := a.quiz.Questions[idx]
		snap.Index = idx
		snap.Count = a.cursor.Count()
		snap.Progress = Progress(idx, snap.Count)
		snap.Question = questionView(q)
		snap.Selected, _ = a.ledger.Get(q.ID)
		snap.Answered = a.ledger.Len()
	}
	if a.countdown != nil {
		remaining := a.countdown.Remaining()
		snap.RemainingSeconds = &remaining
		snap.Clock = FormatClock(remaining)
		snap.TimeWarning = remaining < TimeWarningSeconds
	}
	if a.lastErr != nil {
		snap.Error = domain.UserMessage(a.phase, a.lastErr)
		snap.Retryable = a.phase == domain.PhaseFailed
	}
	if a.review != nil {
		review := *a.review
		snap.Review = &review
	}
	return snap
}

func questionView(q domain.Question) *domain.QuestionView {
	view := &domain.QuestionView{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Points:  q.Points,
		Options: make([]domain.OptionView, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		view.Options = append(view.Options, domain.OptionView{ID: o.ID, Text: o.Text})
	}
	return view
}

// withoutCorrectness copies quiz with every correctness flag cleared.
func withoutCorrectness(quiz domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		options := make([]domain.Option, len(q.Options))
		for j, o := range q.Options {
			options[j] = domain.Option{ID: o.ID, Text: o.Text}
		}
		q.Options = options
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz
}
