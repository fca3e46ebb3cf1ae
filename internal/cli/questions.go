package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

// NewQuestionsCmd groups question bank maintenance.
func NewQuestionsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Manage the question bank",
	}

	withService := func(run func(cmd *cobra.Command, svc *app.QuestionService, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			return run(cmd, app.NewQuestionService(rt.questions, rt.logger), args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every question",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, _ []string) error {
			questions, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tENABLED\tPROMPT\tOPTIONS")
			for _, q := range questions {
				fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", q.ID(), q.Enabled(), q.Prompt(), strings.Join(q.Options(), "; "))
			}
			return w.Flush()
		}),
	})

	var (
		id      string
		prompt  string
		answer  string
		options []string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a question (an existing id is replaced)",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, _ []string) error {
			q, err := svc.Add(cmd.Context(), id, prompt, answer, options)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", q.ID())
			return nil
		}),
	}
	add.Flags().StringVar(&id, "id", "", "question id (generated when empty)")
	add.Flags().StringVar(&prompt, "prompt", "", "question text")
	add.Flags().StringVar(&answer, "answer", "", "correct answer")
	add.Flags().StringArrayVar(&options, "option", nil, "multiple choice option (repeatable)")
	_ = add.MarkFlagRequired("prompt")
	_ = add.MarkFlagRequired("answer")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "edit <id> <prompt>",
		Short: "Change the prompt of a question",
		Args:  cobra.ExactArgs(2),
		RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, args []string) error {
			return svc.UpdatePrompt(cmd.Context(), args[0], args[1])
		}),
	})

	byID := func(use, short string, op func(*app.QuestionService) func(ctx context.Context, id string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, args []string) error {
				return op(svc)(cmd.Context(), args[0])
			}),
		}
	}
	cmd.AddCommand(byID("remove", "Remove a question", func(s *app.QuestionService) func(context.Context, string) error { return s.Remove }))
	cmd.AddCommand(byID("enable", "Include a question in sessions", func(s *app.QuestionService) func(context.Context, string) error { return s.Enable }))
	cmd.AddCommand(byID("disable", "Exclude a question from sessions", func(s *app.QuestionService) func(context.Context, string) error { return s.Disable }))

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show how often each question was shown and answered correctly",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, _ []string) error {
			stats, err := svc.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSHOWN\tCORRECT\tACCURACY")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.ID, s.TimesShown, s.TimesCorrect, accuracy(s))
			}
			return w.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Add a small set of sample questions",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.QuestionService, _ []string) error {
			for _, rec := range sampleQuestions() {
				if _, err := svc.Add(cmd.Context(), rec.ID, rec.Prompt, rec.Answer, rec.Options); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d questions\n", len(sampleQuestions()))
			return nil
		}),
	})
	return cmd
}

func accuracy(s domain.QuestionStat) string {
	if s.TimesShown == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", float64(s.TimesCorrect)*100/float64(s.TimesShown))
}

func sampleQuestions() []domain.QuestionRecord {
	return []domain.QuestionRecord{
		{ID: "q1", Prompt: "What is 2 + 2?", Answer: "4", Options: []string{"3", "4", "5"}},
		{ID: "q2", Prompt: "Capital of France?", Answer: "Paris"},
		{ID: "q3", Prompt: "Which planet is known as the red planet?", Answer: "Mars", Options: []string{"Venus", "Mars", "Jupiter"}},
	}
}
