package cli

import (
	"fmt"
	"text/tabwriter"

	"quiz-runner/internal/app"
	"quiz-runner/internal/auth"
	"github.com/spf13/cobra"
)

// NewHistoryCmd prints a user's completed attempts.
func NewHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [user]",
		Short: "Show completed attempts and a summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			userID := localUser(cfg.Backend.Token)
			if len(args) == 1 {
				userID = args[0]
			}
			if limit <= 0 {
				limit = cfg.History.Limit
			}

			w, err := newWiring(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer w.Close()

			records, summary, err := w.service(cfg).History(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "no attempts for %s\n", userID)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tQUIZ\tSCORE\tPERCENT\tTIME")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d%%\t%s\n", rec.CompletedAt.Local().Format("2006-01-02 15:04"), rec.QuizTitle, rec.Score, rec.Total, rec.Percentage,
					app.FormatClock(rec.DurationSeconds))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d attempts on %d quizzes, average %d%%, best %d%%\n",
				summary.Attempts, summary.DistinctQuizzes, summary.AveragePercent, summary.BestPercent)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of attempts to show (default from config)")
	return cmd
}

// localUser is the user the CLI acts as: the token subject, or "local".
func localUser(token string) string {
	if _, subject := auth.CapabilityFromToken(token); subject != "" {
		return subject
	}
	return "local"
}
