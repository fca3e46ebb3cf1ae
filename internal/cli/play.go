package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

const quitCommand = ":quit"

// NewPlayCmd runs a session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		mode  string
		count int
		user  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Answer questions interactively (quiz, practice or test)",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.ParseMode(mode)
			if err != nil {
				return fmt.Errorf("%w: %q", err, mode)
			}
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			if count == 0 {
				count = rt.cfg.Session.TestSize
			}
			return play(cmd, rt.practice(), user, parsed, count)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(app.ModeQuiz), "session mode: quiz, practice or test")
	cmd.Flags().IntVar(&count, "count", 0, "number of questions in test mode (defaults to session.test_size)")
	cmd.Flags().StringVar(&user, "user", "local", "username the results are recorded for")
	return cmd
}

func play(cmd *cobra.Command, service *app.PracticeService, user string, mode app.Mode, count int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())

	info, err := service.Start(ctx, user, mode, count)
	if err != nil {
		return err
	}
	if info.Degraded {
		fmt.Fprintf(out, "Only %d questions available, using all of them.\n", info.PoolSize)
	}
	if info.First == nil {
		fmt.Fprintln(out, "No enabled questions in the bank.")
		_, err := service.Finish(ctx, user)
		return err
	}

	q := info.First
	for n := 1; ; n++ {
		printQuestion(out, n, info.Size, q)
		if !in.Scan() {
			break
		}
		line := in.Text()
		if strings.TrimSpace(line) == quitCommand {
			break
		}
		result, err := service.Answer(ctx, user, q.ID(), resolveOption(q, line))
		if err != nil {
			return err
		}
		if result.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. The answer is %s.\n", q.CorrectAnswer())
		}

		q, err = service.Next(ctx, user)
		if errors.Is(err, app.ErrSessionExhausted) {
			break
		}
		if err != nil {
			return err
		}
	}

	score, err := service.Finish(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Score: %d/%d (%.0f%%)\n", score.Correct, score.Presented, score.Ratio()*100)
	return nil
}

func printQuestion(out io.Writer, n, total int, q *domain.Question) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", n, total, q.Prompt())
	for i, opt := range q.Options() {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(out, "> ")
}

// resolveOption maps an option number to its text for multiple choice
// questions. Anything else is passed through unchanged.
func resolveOption(q *domain.Question, input string) string {
	options := q.Options()
	if len(options) == 0 {
		return input
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(options) {
		return input
	}
	return options[n-1]
}
