package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-runner/internal/app"
	"quiz-runner/internal/auth"
	"quiz-runner/internal/backend"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/infra/api"
	"quiz-runner/internal/infra/postgres"
	pgmigrations "quiz-runner/internal/infra/postgres/migrations"
	infraredis "quiz-runner/internal/infra/redis"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const secret = "integration-secret"

func TestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenBun(pgURL)
	defer db.Close()
	seedQuiz(t, ctx, db, sampleQuiz())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	gin.SetMode(gin.TestMode)
	ref := httptest.NewServer(backend.NewServer(postgres.NewQuizLoader(pool), secret).Router())
	defer ref.Close()

	token, err := auth.Issue(secret, "u1", "", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	client := api.NewClient(ref.URL, 5*time.Second, api.WithToken(token))

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	history := postgres.NewHistoryStore(db)
	service := app.NewAttemptService(
		infraredis.NewAttemptRegistry(redisClient, 5*time.Minute),
		infraredis.NewQuizRepository(redisClient, client, 5*time.Minute),
		client,
		history,
		app.AttemptConfig{},
	)

	capability, userID := auth.CapabilityFromToken(token)
	attempt, err := service.Start(ctx, app.OpenRequest{QuizID: "quiz-1", UserID: userID, Capability: capability})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer service.Discard(attempt.ID())

	if n, err := redisClient.Exists(ctx, "quiz:quiz-1:content", "attempt:"+attempt.ID()).Result(); err != nil || n != 2 {
		t.Fatalf("expected cached quiz and liveness key, got %d (%v)", n, err)
	}

	if err := attempt.Select("q1", "o2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	attempt.Next()
	if err := attempt.Select("q2", "o5"); err != nil {
		t.Fatalf("select: %v", err)
	}

	review, err := service.Submit(ctx, attempt.ID())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if review.Score != 1 || review.TotalQuestions != 2 || review.Percentage != 50 || review.ScoreMismatch {
		t.Fatalf("unexpected review: %+v", review)
	}
	if review.Items[1].CorrectOptionID != "o4" || review.Items[1].IsCorrect {
		t.Fatalf("unexpected second item: %+v", review.Items[1])
	}

	records, summary, err := service.History(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 || records[0].ID != attempt.ID() || records[0].QuizTitle != "Integration" {
		t.Fatalf("unexpected history: %+v", records)
	}
	if records[0].DurationSeconds < 0 || records[0].CompletedAt.IsZero() {
		t.Fatalf("unexpected timing: %+v", records[0])
	}
	if summary.Attempts != 1 || summary.BestPercent != 50 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, db *bun.DB, quiz domain.Quiz) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO quizzes (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, quiz.ID, string(data)); err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:               "quiz-1",
		Title:            "Integration",
		TimeLimitMinutes: 5,
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "o1", Text: "3", Correct: false},
					{ID: "o2", Text: "4", Correct: true},
					{ID: "o3", Text: "5", Correct: false},
				},
				Points: 1,
			},
			{
				ID:     "q2",
				Prompt: "What is 3 * 3?",
				Options: []domain.Option{
					{ID: "o4", Text: "9", Correct: true},
					{ID: "o5", Text: "6", Correct: false},
				},
				Points: 1,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
