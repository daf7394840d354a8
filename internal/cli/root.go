package cli

import (
	"os"

	"quiz-runner/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz-runner",
		Short:        "Timed quiz attempts against a quiz REST backend",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", envConfig, "path to YAML config")
	flags.String("port", "", "port to listen on")
	flags.String("backend", "", "quiz backend base URL")
	flags.String("token", "", "bearer token for the quiz backend")
	flags.String("redis", "", "redis address (host:port)")
	flags.String("postgres", "", "postgres URL")
	flags.String("history", "", "history driver: memory, redis, sqlite or postgres")
	flags.String("history-dsn", "", "history store DSN")

	cmd.AddCommand(NewStartCmd())
	cmd.AddCommand(NewTakeCmd())
	cmd.AddCommand(NewQuizzesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewBackendCmd())
	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewMigrateCmd())
	return cmd
}

// loadConfig reads the config file and overlays env and the flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configPath, cmd.Flags())
}
