package cli

import (
	"fmt"
	"text/tabwriter"

	"quiz-runner/internal/infra/api"
	"github.com/spf13/cobra"
)

// NewQuizzesCmd lists the quizzes the backend offers.
func NewQuizzesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quizzes",
		Short: "List available quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, api.WithToken(cfg.Backend.Token))
			quizzes, err := client.ListQuizzes(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tQUESTIONS\tTIME")
			for _, q := range quizzes {
				limit := "-"
				if q.TimeLimitMinutes > 0 {
					limit = fmt.Sprintf("%d min", q.TimeLimitMinutes)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", q.ID, q.Title, q.Difficulty, q.QuestionCount, limit)
			}
			return tw.Flush()
		},
	}
}
