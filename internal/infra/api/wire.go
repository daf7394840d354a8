package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"quiz-runner/internal/domain"
)

// ID accepts both JSON strings and JSON numbers and always encodes as a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

// QuizDTO is the wire form of quiz metadata.
type QuizDTO struct {
	ID             ID     `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
	TimeLimit      *int   `json:"time_limit,omitempty"`
	IsActive       *bool  `json:"is_active,omitempty"`
	QuestionsCount int    `json:"questions_count,omitempty"`
}

// OptionDTO carries is_correct only in post-submission payloads.
type OptionDTO struct {
	ID        ID     `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

type QuestionDTO struct {
	ID          ID          `json:"id"`
	Question    string      `json:"question"`
	Type        string      `json:"type,omitempty"`
	Points      int         `json:"points,omitempty"`
	Explanation string      `json:"explanation,omitempty"`
	Options     []OptionDTO `json:"options"`
}

type SubmitRequest struct {
	Answers map[string]string `json:"answers" binding:"required,dive,keys,required,endkeys,required"`
}

type SubmitResponse struct {
	ID             ID            `json:"id,omitempty"`
	AttemptID      ID            `json:"attempt_id,omitempty"`
	Score          int           `json:"score"`
	TotalQuestions int           `json:"total_questions"`
	QuizTitle      string        `json:"quiz_title,omitempty"`
	Questions      []QuestionDTO `json:"questions,omitempty"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (d QuizDTO) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:          string(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Difficulty:  d.Difficulty,
		Inactive:    d.IsActive != nil && !*d.IsActive,
	}
	if d.TimeLimit != nil {
		quiz.TimeLimitMinutes = *d.TimeLimit
	}
	return quiz
}

func (d QuizDTO) toSummary() domain.QuizSummary {
	summary := domain.QuizSummary{
		ID:            string(d.ID),
		Title:         d.Title,
		Description:   d.Description,
		Difficulty:    d.Difficulty,
		QuestionCount: d.QuestionsCount,
	}
	if summary.Difficulty == "" {
		summary.Difficulty = "Medium"
	}
	if d.TimeLimit != nil {
		summary.TimeLimitMinutes = *d.TimeLimit
	}
	return summary
}

func (d QuestionDTO) toDomain() domain.Question {
	q := domain.Question{
		ID:          string(d.ID),
		Prompt:      d.Question,
		Points:      d.Points,
		Explanation: d.Explanation,
		Options:     make([]domain.Option, 0, len(d.Options)),
	}
	for _, o := range d.Options {
		q.Options = append(q.Options, domain.Option{
			ID:      string(o.ID),
			Text:    o.Text,
			Correct: o.IsCorrect != nil && *o.IsCorrect,
		})
	}
	return q
}

func (d SubmitResponse) toDomain() domain.Result {
	result := domain.Result{
		AttemptID:      string(d.AttemptID),
		QuizTitle:      d.QuizTitle,
		Score:          d.Score,
		TotalQuestions: d.TotalQuestions,
	}
	if result.AttemptID == "" {
		result.AttemptID = string(d.ID)
	}
	for _, q := range d.Questions {
		result.Questions = append(result.Questions, q.toDomain())
	}
	return result
}

// QuizToDTO converts quiz metadata to its wire form.
func QuizToDTO(quiz domain.Quiz) QuizDTO {
	active := !quiz.Inactive
	dto := QuizDTO{
		ID:             ID(quiz.ID),
		Title:          quiz.Title,
		Description:    quiz.Description,
		Difficulty:     quiz.Difficulty,
		IsActive:       &active,
		QuestionsCount: len(quiz.Questions),
	}
	if quiz.TimeLimitMinutes > 0 {
		limit := quiz.TimeLimitMinutes
		dto.TimeLimit = &limit
	}
	return dto
}

// QuestionToDTO converts a question; withCorrect controls whether is_correct is sent.
func QuestionToDTO(q domain.Question, withCorrect bool) QuestionDTO {
	dto := QuestionDTO{
		ID:       ID(q.ID),
		Question: q.Prompt,
		Type:     "single_choice",
		Points:   q.Points,
		Options:  make([]OptionDTO, 0, len(q.Options)),
	}
	if withCorrect {
		dto.Explanation = q.Explanation
	}
	for _, o := range q.Options {
		opt := OptionDTO{ID: ID(o.ID), Text: o.Text}
		if withCorrect {
			correct := o.Correct
			opt.IsCorrect = &correct
		}
		dto.Options = append(dto.Options, opt)
	}
	return dto
}
