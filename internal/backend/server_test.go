package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-runner/internal/auth"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/api"
	"quiz-runner/internal/infra/memory"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixtures() *memory.StaticQuizLoader {
	return memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"q1": {
			ID:               "q1",
			Title:            "Arithmetic",
			TimeLimitMinutes: 1,
			Questions: []domain.Question{
				{ID: "1", Prompt: "2+2?", Points: 1, Explanation: "four", Options: []domain.Option{
					{ID: "a", Text: "3"}, {ID: "b", Text: "4", Correct: true},
				}},
				{ID: "2", Prompt: "3*3?", Points: 1, Options: []domain.Option{
					{ID: "c", Text: "9", Correct: true}, {ID: "d", Text: "6"},
				}},
			},
		},
		"off": {ID: "off", Title: "Retired", Inactive: true, Questions: []domain.Question{
			{ID: "1", Prompt: "?", Options: []domain.Option{{ID: "a", Text: "a", Correct: true}}},
		}},
	})
}

func newBackend(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(fixtures(), secret).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestQuestionsWithholdCorrectness(t *testing.T) {
	srv := newBackend(t, "")

	resp, err := http.Get(srv.URL + "/quizzes/q1/questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(buf.String(), "is_correct") || strings.Contains(buf.String(), "four") {
		t.Fatalf("questions leaked answers: %s", buf.String())
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv := newBackend(t, "")
	client := api.NewClient(srv.URL, time.Second)
	ctx := context.Background()

	quiz, err := client.LoadQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("LoadQuiz: %v", err)
	}
	if quiz.Title != "Arithmetic" || quiz.TimeLimitMinutes != 1 || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	for _, q := range quiz.Questions {
		for _, o := range q.Options {
			if o.Correct {
				t.Fatalf("unexpected correctness flag before submit on %s/%s", q.ID, o.ID)
			}
		}
	}

	result, err := client.Submit(ctx, "q1", domain.Answers{"1": "b", "2": "d"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 || result.TotalQuestions != 2 || result.QuizTitle != "Arithmetic" || result.AttemptID == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Questions) != 2 || !result.Questions[0].Options[1].Correct {
		t.Fatalf("expected flags after submit: %+v", result.Questions)
	}

	list, err := client.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 1 || list[0].ID != "q1" || list[0].QuestionCount != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestInactiveAndMissingQuizzes(t *testing.T) {
	srv := newBackend(t, "")
	client := api.NewClient(srv.URL, time.Second)

	quiz, err := client.GetQuiz(context.Background(), "off")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if !quiz.Inactive {
		t.Fatalf("expected inactive metadata")
	}
	if _, err := client.GetQuestions(context.Background(), "off"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for inactive questions, got %v", err)
	}
	if _, err := client.LoadQuiz(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	srv := newBackend(t, "")
	client := api.NewClient(srv.URL, time.Second)

	_, err := client.Submit(context.Background(), "q1", domain.Answers{"1": "zzz"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown option, got %v", err)
	}

	resp, err := http.Post(srv.URL+"/quizzes/q1/submit", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing answers, got %d", resp.StatusCode)
	}

	result, err := client.Submit(context.Background(), "q1", domain.Answers{})
	if err != nil {
		t.Fatalf("empty submission: %v", err)
	}
	if result.Score != 0 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected result for empty submission: %+v", result)
	}
}

func TestSubmitRequiresToken(t *testing.T) {
	srv := newBackend(t, "s3cret")

	_, err := api.NewClient(srv.URL, time.Second).Submit(context.Background(), "q1", domain.Answers{"1": "b"})
	if !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected auth required, got %v", err)
	}

	token, err := auth.Issue("s3cret", "alice", "", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	result, err := api.NewClient(srv.URL, time.Second, api.WithToken(token)).Submit(context.Background(), "q1", domain.Answers{"1": "b"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 1 {
		t.Fatalf("expected score 1, got %d", result.Score)
	}

	// Reads stay public.
	if _, err := api.NewClient(srv.URL, time.Second).LoadQuiz(context.Background(), "q1"); err != nil {
		t.Fatalf("LoadQuiz without token: %v", err)
	}
}

func TestScoreSubmission(t *testing.T) {
	quiz, _ := fixtures().LoadQuiz(context.Background(), "q1")

	score, err := scoreSubmission(quiz, domain.Answers{"1": "b", "2": "c"})
	if err != nil || score != 2 {
		t.Fatalf("expected 2, got %d (%v)", score, err)
	}
	if _, err := scoreSubmission(quiz, domain.Answers{"9": "a"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}
