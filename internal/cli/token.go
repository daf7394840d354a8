package cli

import (
	"fmt"
	"time"

	"quiz-runner/internal/auth"
	"github.com/spf13/cobra"
)

// NewTokenCmd issues a bearer token signed with the reference backend secret.
func NewTokenCmd() *cobra.Command {
	var (
		user string
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the reference backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Reference.Secret == "" {
				return fmt.Errorf("reference secret not configured")
			}
			token, err := auth.Issue(cfg.Reference.Secret, user, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&role, "role", "", "role claim; admin enables management")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().String("secret", "", "JWT secret")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
