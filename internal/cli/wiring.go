package cli

import (
	"context"
	"fmt"

	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/infra/api"
	"quiz-runner/internal/infra/memory"
	"quiz-runner/internal/infra/postgres"
	redisinfra "quiz-runner/internal/infra/redis"
	"quiz-runner/internal/infra/sqlite"
	"github.com/redis/go-redis/v9"
)

// wiring holds the stores shared by the commands that run attempts.
type wiring struct {
	client  *api.Client
	redis   *redis.Client
	quizzes app.QuizRepository
	history app.HistoryStore
	closers []func() error
}

func newWiring(ctx context.Context, cfg config.Config) (*wiring, error) {
	w := &wiring{
		client: api.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, api.WithToken(cfg.Backend.Token)),
	}
	if cfg.Redis.Addr != "" {
		w.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		w.closers = append(w.closers, w.redis.Close)
	}

	if w.redis != nil {
		w.quizzes = redisinfra.NewQuizRepository(w.redis, w.client, cfg.Quiz.TTL)
	} else {
		w.quizzes = memory.NewQuizRepository(w.client, cfg.Quiz.TTL)
	}

	history, err := w.openHistory(ctx, cfg)
	if err != nil {
		w.Close()
		return nil, err
	}
	w.history = history
	return w, nil
}

func (w *wiring) openHistory(ctx context.Context, cfg config.Config) (app.HistoryStore, error) {
	switch cfg.History.Driver {
	case "redis":
		if w.redis == nil {
			return nil, fmt.Errorf("history driver redis needs redis.addr")
		}
		return redisinfra.NewHistoryStore(w.redis, 0), nil
	case "sqlite":
		store, err := sqlite.Open(cfg.History.DSN)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, store.Close)
		return store, nil
	case "postgres":
		db := postgres.OpenBun(cfg.History.DSN)
		w.closers = append(w.closers, db.Close)
		if err := migrateDB(ctx, db); err != nil {
			return nil, err
		}
		return postgres.NewHistoryStore(db), nil
	default:
		return memory.NewHistoryStore(), nil
	}
}

func (w *wiring) registry(cfg config.Config) app.AttemptRegistry {
	if w.redis != nil {
		return redisinfra.NewAttemptRegistry(w.redis, cfg.Redis.TTL)
	}
	return memory.NewAttemptRegistry()
}

func (w *wiring) service(cfg config.Config) *app.AttemptService {
	return app.NewAttemptService(w.registry(cfg), w.quizzes, w.client, w.history, app.AttemptConfig{
		TickInterval: cfg.Attempt.Tick,
	})
}

func (w *wiring) Close() {
	for i := len(w.closers) - 1; i >= 0; i-- {
		_ = w.closers[i]()
	}
}
