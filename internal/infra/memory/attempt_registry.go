package memory

import (
	"sync"

	"quiz-runner/internal/app"
)

// AttemptRegistry is an in-memory implementation of app.AttemptRegistry.
type AttemptRegistry struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptRegistry() *AttemptRegistry {
	return &AttemptRegistry{
		attempts: make(map[string]*app.Attempt),
	}
}

func (r *AttemptRegistry) Put(attempt *app.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.ID()] = attempt
}

func (r *AttemptRegistry) Get(attemptID string) (*app.Attempt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempt, ok := r.attempts[attemptID]
	return attempt, ok
}

func (r *AttemptRegistry) Delete(attemptID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, attemptID)
}

// Len is the number of live attempts.
func (r *AttemptRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.attempts)
}
