package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"quiz-runner/internal/domain"
)

func newTestServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadQuizCombinesMetadataAndQuestions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quizzes/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"title":"Go basics","difficulty":"Easy","time_limit":5,"is_active":true,"questions_count":2}`))
	})
	mux.HandleFunc("GET /quizzes/7/questions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"question":"2+2?","points":1,"options":[{"id":10,"text":"3"},{"id":"11","text":"4"}]},
			{"id":"q2","question":"Capital of France?","options":[{"id":"a","text":"Paris"}]}
		]`))
	})
	srv := newTestServer(t, mux)

	quiz, err := NewClient(srv.URL, time.Second).LoadQuiz(context.Background(), "7")
	if err != nil {
		t.Fatalf("LoadQuiz: %v", err)
	}
	if quiz.ID != "7" || quiz.Title != "Go basics" || quiz.TimeLimitMinutes != 5 || quiz.Inactive {
		t.Fatalf("unexpected metadata: %+v", quiz)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(quiz.Questions))
	}
	first := quiz.Questions[0]
	if first.ID != "1" || first.Prompt != "2+2?" || first.Options[0].ID != "10" || first.Options[1].ID != "11" {
		t.Fatalf("unexpected first question: %+v", first)
	}
	if quiz.Questions[1].ID != "q2" {
		t.Fatalf("expected string id q2, got %q", quiz.Questions[1].ID)
	}
}

func TestLoadQuizFailsWhenQuestionsFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quizzes/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"title":"t"}`))
	})
	mux.HandleFunc("GET /quizzes/1/questions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := newTestServer(t, mux)

	_, err := NewClient(srv.URL, time.Second).LoadQuiz(context.Background(), "1")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthRequired},
		{http.StatusNotFound, domain.ErrQuizNotFound},
		{http.StatusBadRequest, domain.ErrValidation},
		{http.StatusUnprocessableEntity, domain.ErrValidation},
		{http.StatusBadGateway, domain.ErrNetwork},
	}
	for _, tc := range cases {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"detail":"nope"}`))
		})
		srv := newTestServer(t, mux)

		_, err := NewClient(srv.URL, time.Second).GetQuiz(context.Background(), "1")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != tc.status || apiErr.Message != "nope" {
			t.Fatalf("status %d: unexpected api error %#v", tc.status, err)
		}
	}
}

func TestAuthRequiredIsNetworkClass(t *testing.T) {
	if !errors.Is(domain.ErrAuthRequired, domain.ErrNetwork) {
		t.Fatalf("expected auth failures to be network-class")
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).GetQuestions(context.Background(), "1")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSubmitSendsAnswersAndBearer(t *testing.T) {
	var gotAuth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /quizzes/3/submit", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Answers["1"] != "b" {
			http.Error(w, "missing answer", http.StatusUnprocessableEntity)
			return
		}
		_, _ = w.Write([]byte(`{"attempt_id":99,"score":1,"total_questions":1,"quiz_title":"Q",
			"questions":[{"id":1,"question":"?","explanation":"because","options":[{"id":"a","text":"A","is_correct":false},{"id":"b","text":"B","is_correct":true}]}]}`))
	})
	srv := newTestServer(t, mux)
	client := NewClient(srv.URL, time.Second, WithToken("default"))

	ctx := WithCredential(context.Background(), "user-token")
	result, err := client.Submit(ctx, "3", domain.Answers{"1": "b"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer user-token" {
		t.Fatalf("expected caller credential, got %v", got)
	}
	if result.AttemptID != "99" || result.Score != 1 || result.TotalQuestions != 1 || result.QuizTitle != "Q" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Questions) != 1 || !result.Questions[0].Options[1].Correct || result.Questions[0].Options[0].Correct {
		t.Fatalf("expected correctness flags in result: %+v", result.Questions)
	}

	if _, err := client.Submit(context.Background(), "3", domain.Answers{"1": "b"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer default" {
		t.Fatalf("expected default token, got %v", got)
	}
}

func TestListQuizzesSkipsInactive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quizzes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"title":"a","is_active":true},{"id":2,"title":"b","is_active":false},{"id":3,"title":"c","difficulty":"Hard"}]`))
	})
	srv := newTestServer(t, mux)

	list, err := NewClient(srv.URL, time.Second).ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "3" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].Difficulty != "Medium" || list[1].Difficulty != "Hard" {
		t.Fatalf("unexpected difficulties: %+v", list)
	}
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatalf("expected error for object id")
	}
}
