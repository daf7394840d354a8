package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"quiz-runner/internal/domain"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// HistoryStore keeps attempt records in a local SQLite file, for the CLI.
type HistoryStore struct {
	conn *sql.DB
}

// Open creates the database connection and ensures the schema exists.
func Open(dsn string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &HistoryStore{conn: db}, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.conn.Close()
}

func (s *HistoryStore) Record(ctx context.Context, rec domain.AttemptRecord) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO attempt_history
			(id, user_id, quiz_id, quiz_title, score, total, percentage, duration_seconds, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.UserID,
		rec.QuizID,
		rec.QuizTitle,
		rec.Score,
		rec.Total,
		rec.Percentage,
		rec.DurationSeconds,
		rec.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt %s: %w", rec.ID, err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, user_id, quiz_id, quiz_title, score, total, percentage, duration_seconds, completed_at
		FROM attempt_history
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var rec domain.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuizID, &rec.QuizTitle, &rec.Score, &rec.Total, &rec.Percentage, &rec.DurationSeconds, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
