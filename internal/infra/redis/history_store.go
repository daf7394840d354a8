package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-runner/internal/domain"
	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps the most recent attempt records of each user in a Redis
// list: LPUSH history:{userID} {json}, trimmed to maxLen.
type HistoryStore struct {
	client *redis.Client
	maxLen int64
}

func NewHistoryStore(client *redis.Client, maxLen int) *HistoryStore {
	if maxLen <= 0 {
		maxLen = 100
	}
	return &HistoryStore{client: client, maxLen: int64(maxLen)}
}

func (s *HistoryStore) Record(ctx context.Context, rec domain.AttemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt record: %w", err)
	}
	key := s.key(rec.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record attempt %s: %w", rec.ID, err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := s.client.LRange(ctx, s.key(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", userID, err)
	}
	out := make([]domain.AttemptRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.AttemptRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode attempt record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *HistoryStore) key(userID string) string {
	return "history:" + userID
}
