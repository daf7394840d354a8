package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations is the schema of the reference backend's quiz store and of the
// postgres attempt history. `quiz-runner migrate` applies it.
var Migrations = migrate.NewMigrations()

//go:embed 0001_create_quizzes.sql
var createQuizzesSQL string

func init() {
	Migrations.MustRegister(exec(createQuizzesSQL), exec(`DROP TABLE IF EXISTS quizzes`))
}

// exec runs a fixed statement as one migration step.
func exec(stmt string) migrate.MigrationFunc {
	return func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	}
}
