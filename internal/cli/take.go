package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quiz-runner/internal/app"
	"quiz-runner/internal/auth"
	"quiz-runner/internal/domain"
	"github.com/spf13/cobra"
)

// NewTakeCmd runs an attempt in the terminal.
func NewTakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take <quiz-id>",
		Short: "Take a quiz in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w, err := newWiring(ctx, cfg)
			if err != nil {
				return err
			}
			defer w.Close()

			capability, _ := auth.CapabilityFromToken(cfg.Backend.Token)
			service := w.service(cfg)
			attempt, err := service.Start(ctx, app.OpenRequest{
				QuizID:     args[0],
				UserID:     localUser(cfg.Backend.Token),
				Capability: capability,
			})
			defer service.Discard(attempt.ID())
			if err != nil {
				return errors.New(domain.UserMessage(domain.PhaseUnavailable, err))
			}
			return runTerminal(ctx, attempt, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

const takeHelp = "answer with the option number, n = next, p = previous, s = submit, q = quit"

// runTerminal drives attempt from line commands on in until it completes or
// the user quits. A submission on expiry shows up at the next prompt.
func runTerminal(ctx context.Context, attempt *app.Attempt, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, takeHelp)
	lines := bufio.NewScanner(in)
	for {
		snap := attempt.Snapshot()
		if snap.Phase.Terminal() {
			if snap.Phase == domain.PhaseUnavailable {
				return errors.New(snap.Error)
			}
			printReview(out, snap.Review)
			return nil
		}
		printQuestion(out, snap)

		if !lines.Scan() {
			return lines.Err()
		}
		input := strings.TrimSpace(lines.Text())
		switch input {
		case "":
		case "n":
			attempt.Next()
		case "p":
			attempt.Previous()
		case "s":
			if _, err := attempt.Submit(ctx); err != nil {
				fmt.Fprintf(out, "%s\n", domain.UserMessage(attempt.Phase(), err))
			}
		case "q":
			return nil
		default:
			n, err := strconv.Atoi(input)
			if err != nil || snap.Question == nil || n < 1 || n > len(snap.Question.Options) {
				fmt.Fprintln(out, takeHelp)
				continue
			}
			if err := attempt.Select(snap.Question.ID, snap.Question.Options[n-1].ID); err != nil {
				fmt.Fprintf(out, "cannot answer now: %v\n", err)
			}
		}
	}
}

func printQuestion(out io.Writer, snap domain.Snapshot) {
	if snap.Question == nil {
		return
	}
	header := fmt.Sprintf("[%d/%d]", snap.Index+1, snap.Count)
	if snap.Clock != "" {
		header += " " + snap.Clock
	}
	if snap.Phase == domain.PhaseFailed {
		header += " " + snap.Error
	}
	fmt.Fprintf(out, "\n%s %s\n", header, snap.Question.Prompt)
	for i, o := range snap.Question.Options {
		mark := " "
		if o.ID == snap.Selected {
			mark = "*"
		}
		fmt.Fprintf(out, " %s %d. %s\n", mark, i+1, o.Text)
	}
}

func printReview(out io.Writer, review *domain.Review) {
	if review == nil {
		return
	}
	fmt.Fprintf(out, "\n%s: %d/%d (%d%%)\n%s\n", review.QuizTitle, review.Score, review.TotalQuestions, review.Percentage, review.Message)
	for i, item := range review.Items {
		verdict := "wrong"
		if item.IsCorrect {
			verdict = "right"
		} else if item.UserOptionID == "" {
			verdict = "unanswered"
		}
		fmt.Fprintf(out, "%d. %s [%s]\n", i+1, item.Prompt, verdict)
		for _, o := range item.Options {
			mark := " "
			switch {
			case o.Correct:
				mark = "+"
			case o.Selected:
				mark = "x"
			}
			fmt.Fprintf(out, "   %s %s\n", mark, o.Text)
		}
		if item.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", item.Explanation)
		}
	}
}
