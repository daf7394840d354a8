package migrations

import _ "embed"

//go:embed 0002_create_attempt_history.sql
var createAttemptHistorySQL string

func init() {
	Migrations.MustRegister(
		exec(createAttemptHistorySQL),
		exec(`DROP INDEX IF EXISTS attempt_history_user_idx; DROP TABLE IF EXISTS attempt_history`),
	)
}
