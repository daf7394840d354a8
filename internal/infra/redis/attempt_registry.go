package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"quiz-runner/internal/app"
	"github.com/redis/go-redis/v9"
)

// AttemptRegistry is a Redis-aware implementation of app.AttemptRegistry.
// Notes:
//   - Attempts themselves live in a local map; their timers and subscribers
//     cannot leave the process.
//   - Redis holds a liveness marker per attempt (attempt:{id} -> quizID) so
//     operators can count live attempts across instances.
type AttemptRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

const redisTimeout = 2 * time.Second

func NewAttemptRegistry(client *redis.Client, ttl time.Duration) *AttemptRegistry {
	return &AttemptRegistry{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (r *AttemptRegistry) Put(attempt *app.Attempt) {
	r.mu.Lock()
	r.attempts[attempt.ID()] = attempt
	r.mu.Unlock()

	// best-effort liveness marker; lookups never wait on Redis
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(attempt.ID()), attempt.QuizID(), r.ttl).Err(); err != nil {
		log.Printf("attempt %s: set liveness: %v", attempt.ID(), err)
	}
}

func (r *AttemptRegistry) Get(attemptID string) (*app.Attempt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempt, ok := r.attempts[attemptID]
	return attempt, ok
}

func (r *AttemptRegistry) Delete(attemptID string) {
	r.mu.Lock()
	_, ok := r.attempts[attemptID]
	delete(r.attempts, attemptID)
	r.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := r.client.Del(ctx, r.key(attemptID)).Err(); err != nil {
		log.Printf("attempt %s: clear liveness: %v", attemptID, err)
	}
}

// Touch extends the liveness marker of a live attempt.
func (r *AttemptRegistry) Touch(ctx context.Context, attemptID string) error {
	return r.client.Expire(ctx, r.key(attemptID), r.ttl).Err()
}

func (r *AttemptRegistry) key(attemptID string) string {
	return "attempt:" + attemptID
}
