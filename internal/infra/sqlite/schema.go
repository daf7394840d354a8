package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS attempt_history (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    quiz_id      TEXT NOT NULL,
    quiz_title   TEXT NOT NULL DEFAULT '',
    score        INTEGER NOT NULL,
    total        INTEGER NOT NULL,
    percentage   INTEGER NOT NULL,
    duration_seconds INTEGER NOT NULL DEFAULT 0,
    completed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS attempt_history_user_idx ON attempt_history (user_id, completed_at);
`
