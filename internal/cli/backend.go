package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quiz-runner/internal/backend"
	"quiz-runner/internal/config"
	"quiz-runner/internal/infra/memory"
	"quiz-runner/internal/infra/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewBackendCmd serves the reference quiz REST API.
func NewBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Serve the reference quiz REST API from fixtures or Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runBackend(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("reference-port", "", "port for the reference backend")
	cmd.Flags().String("fixtures", "", "YAML quiz fixtures served when no postgres url is set")
	cmd.Flags().String("secret", "", "JWT secret; empty disables auth on submit")
	return cmd
}

func runBackend(ctx context.Context, cfg config.Config) error {

	var store backend.QuizStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = postgres.NewQuizLoader(pool)
	} else {
		fixtures, err := memory.LoadFixtures(cfg.Reference.Fixtures)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		store = fixtures
	}

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + cfg.Reference.Port,
		Handler:      backend.NewServer(store, cfg.Reference.Secret).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return serve(ctx, server, "reference backend")
}
