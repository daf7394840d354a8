package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiz-runner/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// OpenBun opens a bun handle over pgdriver.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempt_history,alias:ah"`

	ID          string    `bun:"id,pk"`
	UserID      string    `bun:"user_id,notnull"`
	QuizID      string    `bun:"quiz_id,notnull"`
	QuizTitle   string    `bun:"quiz_title,notnull"`
	Score       int       `bun:"score,notnull"`
	Total       int       `bun:"total,notnull"`
	Percentage  int       `bun:"percentage,notnull"`
	Duration    int       `bun:"duration_seconds,notnull"`
	CompletedAt time.Time `bun:"completed_at,notnull"`
}

// HistoryStore keeps attempt records in the attempt_history table.
type HistoryStore struct {
	db *bun.DB
}

func NewHistoryStore(db *bun.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Record(ctx context.Context, rec domain.AttemptRecord) error {
	row := attemptRow{
		ID:          rec.ID,
		UserID:      rec.UserID,
		QuizID:      rec.QuizID,
		QuizTitle:   rec.QuizTitle,
		Score:       rec.Score,
		Total:       rec.Total,
		Percentage:  rec.Percentage,
		Duration:    rec.DurationSeconds,
		CompletedAt: rec.CompletedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt %s: %w", rec.ID, err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error) {
	var rows []attemptRow
	q := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list history for %s: %w", userID, err)
	}
	out := make([]domain.AttemptRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.AttemptRecord{
			ID:          row.ID,
			UserID:      row.UserID,
			QuizID:      row.QuizID,
			QuizTitle:   row.QuizTitle,
			Score:       row.Score,
			Total:       row.Total,
			Percentage:      row.Percentage,
			DurationSeconds: row.Duration,
			CompletedAt:     row.CompletedAt,
		})
	}
	return out, nil
}
