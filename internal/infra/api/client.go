package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quiz-runner/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Client talks to the quiz backend's REST API. It is the quiz data gateway
// (GET quiz, GET questions) and the submission endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithToken sets the default bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialKey struct{}

// WithCredential attaches a caller's bearer credential to ctx. It takes
// precedence over the client's default token.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// GetQuiz fetches quiz metadata.
func (c *Client) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var dto QuizDTO
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(quizID), nil, &dto); err != nil {
		return domain.Quiz{}, err
	}
	quiz := dto.toDomain()
	if quiz.ID == "" {
		quiz.ID = quizID
	}
	return quiz, nil
}

// GetQuestions fetches the ordered question list of a quiz.
func (c *Client) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var dtos []QuestionDTO
	if err := c.do(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(quizID)+"/questions", nil, &dtos); err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(dtos))
	for _, d := range dtos {
		questions = append(questions, d.toDomain())
	}
	return questions, nil
}

// LoadQuiz fetches metadata and questions concurrently; either failure fails the load.
func (c *Client) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		questions []domain.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = c.GetQuiz(gctx, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = c.GetQuestions(gctx, quizID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// ListQuizzes fetches the quizzes available to the caller.
func (c *Client) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var dtos []QuizDTO
	if err := c.do(ctx, http.MethodGet, "/quizzes", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.QuizSummary, 0, len(dtos))
	for _, d := range dtos {
		if d.IsActive != nil && !*d.IsActive {
			continue
		}
		out = append(out, d.toSummary())
	}
	return out, nil
}

// Submit posts the answers of an attempt and returns the scored result.
func (c *Client) Submit(ctx context.Context, quizID string, answers domain.Answers) (domain.Result, error) {
	body := SubmitRequest{Answers: map[string]string(answers)}
	if body.Answers == nil {
		body.Answers = map[string]string{}
	}
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/quizzes/"+url.PathEscape(quizID)+"/submit", body, &resp); err != nil {
		return domain.Result{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.credential(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.APIError{Kind: domain.ErrNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.APIError{Kind: domain.ErrNetwork, Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}
	return nil
}

func (c *Client) credential(ctx context.Context) string {
	if token, ok := ctx.Value(credentialKey{}).(string); ok && token != "" {
		return token
	}
	return c.token
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(raw))
	var payload ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		message = payload.Detail
	}

	var kind error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = domain.ErrAuthRequired
	case resp.StatusCode == http.StatusNotFound:
		kind = domain.ErrQuizNotFound
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		kind = domain.ErrValidation
	default:
		kind = domain.ErrNetwork
	}
	return &domain.APIError{Kind: kind, Status: resp.StatusCode, Message: message}
}
