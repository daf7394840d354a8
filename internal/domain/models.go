package domain

import "time"

// Option represents a possible answer for a question. Correct is only
// populated in post-submission payloads.
type Option struct {
	ID      string `json:"id" yaml:"id"`
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct,omitempty" yaml:"correct"`
}

// Question models a single-choice question. Option order is fixed for an attempt.
type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Options     []Option `json:"options" yaml:"options"`
	Points      int      `json:"points,omitempty" yaml:"points"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation"`
}

// Quiz is the metadata of a quiz together with its ordered questions.
type Quiz struct {
	ID               string     `json:"id" yaml:"id"`
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description,omitempty" yaml:"description"`
	Difficulty       string     `json:"difficulty,omitempty" yaml:"difficulty"`
	TimeLimitMinutes int        `json:"timeLimitMinutes,omitempty" yaml:"timeLimitMinutes"`
	Inactive         bool       `json:"inactive,omitempty" yaml:"inactive"`
	Questions        []Question `json:"questions" yaml:"questions"`
}

// QuizSummary is a list entry for browsing quizzes.
type QuizSummary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Difficulty       string `json:"difficulty"`
	TimeLimitMinutes int    `json:"timeLimitMinutes,omitempty"`
	QuestionCount    int    `json:"questionCount"`
}

// Answers maps question IDs to the selected option ID.
type Answers map[string]string

// Result is the backend's response to a submission. Questions, when present,
// carry the correctness flags used for review.
type Result struct {
	AttemptID      string     `json:"attemptId,omitempty"`
	QuizTitle      string     `json:"quizTitle,omitempty"`
	Score          int        `json:"score"`
	TotalQuestions int        `json:"totalQuestions"`
	Questions      []Question `json:"questions,omitempty"`
}

// ReviewOption is one option as shown on the review screen.
type ReviewOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Selected bool   `json:"selected"`
}

// ReviewItem is the reconciled outcome for one question.
type ReviewItem struct {
	QuestionID      string         `json:"questionId"`
	Prompt          string         `json:"prompt"`
	UserOptionID    string         `json:"userOptionId,omitempty"`
	CorrectOptionID string         `json:"correctOptionId,omitempty"`
	IsCorrect       bool           `json:"isCorrect"`
	Explanation     string         `json:"explanation,omitempty"`
	Options         []ReviewOption `json:"options"`
}

// Review is the model behind the results screen. Score and TotalQuestions are
// the backend's authoritative values.
type Review struct {
	QuizTitle      string       `json:"quizTitle,omitempty"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     int          `json:"percentage"`
	Band           string       `json:"band"`
	Message        string       `json:"message"`
	Items          []ReviewItem `json:"items"`
	ClientScore    int          `json:"-"`
	ScoreMismatch  bool         `json:"-"`
}

// Capability is what the session layer tells the engine about the caller.
type Capability struct {
	Authenticated bool
	Admin         bool
}

// OptionView is an option without its correctness flag.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the displayed question.
type QuestionView struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Points  int          `json:"points,omitempty"`
	Options []OptionView `json:"options"`
}

// Snapshot is a point-in-time view of an attempt.
type Snapshot struct {
	AttemptID        string        `json:"attemptId"`
	QuizID           string        `json:"quizId"`
	QuizTitle        string        `json:"quizTitle,omitempty"`
	Phase            Phase         `json:"phase"`
	Index            int           `json:"index"`
	Count            int           `json:"count"`
	Progress         int           `json:"progress"`
	RemainingSeconds *int          `json:"remainingSeconds"`
	Clock            string        `json:"clock,omitempty"`
	TimeWarning      bool          `json:"timeWarning,omitempty"`
	Answered         int           `json:"answered"`
	Question         *QuestionView `json:"question,omitempty"`
	Selected         string        `json:"selected,omitempty"`
	Error            string        `json:"error,omitempty"`
	Retryable        bool          `json:"retryable,omitempty"`
	CanManage        bool          `json:"canManage,omitempty"`
	Review           *Review       `json:"review,omitempty"`
}

// AttemptRecord is a completed attempt kept in history.
type AttemptRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	QuizID          string    `json:"quizId"`
	QuizTitle       string    `json:"quizTitle"`
	Score           int       `json:"score"`
	Total           int       `json:"total"`
	Percentage      int       `json:"percentage"`
	DurationSeconds int       `json:"durationSeconds"`
	CompletedAt     time.Time `json:"completedAt"`
}

// HistorySummary aggregates a user's attempt history.
type HistorySummary struct {
	Attempts        int `json:"attempts"`
	AveragePercent  int `json:"averagePercent"`
	BestPercent     int `json:"bestPercent"`
	DistinctQuizzes int `json:"distinctQuizzes"`
}
