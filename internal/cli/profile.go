package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"quiz-trainer/internal/app"
	"quiz-trainer/internal/domain"
)

// NewProfileCmd groups user profile commands.
func NewProfileCmd(configPath *string) *cobra.Command {
	var (
		user     string
		email    string
		age      int
		password string
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Register users and inspect their progress",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "username")
	_ = cmd.MarkPersistentFlagRequired("user")

	withService := func(run func(cmd *cobra.Command, svc *app.ProfileService, in *bufio.Reader) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			svc := app.NewProfileService(rt.profiles, rt.stats, rt.logger)
			return run(cmd, svc, bufio.NewReader(cmd.InOrStdin()))
		}
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Create a profile",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, in *bufio.Reader) error {
			pw, err := secret(cmd.OutOrStdout(), in, password, "Password: ")
			if err != nil {
				return err
			}
			profile, err := svc.Register(cmd.Context(), user, email, pw, age)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s <%s>\n", profile.Username, profile.Email)
			return nil
		}),
	}
	register.Flags().StringVar(&email, "email", "", "email address")
	register.Flags().IntVar(&age, "age", 0, "age (optional)")
	register.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = register.MarkFlagRequired("email")
	cmd.AddCommand(register)

	login := &cobra.Command{
		Use:   "login",
		Short: "Check credentials",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, in *bufio.Reader) error {
			pw, err := secret(cmd.OutOrStdout(), in, password, "Password: ")
			if err != nil {
				return err
			}
			profile, err := svc.Login(cmd.Context(), user, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome back, %s\n", profile.Username)
			return nil
		}),
	}
	login.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.AddCommand(login)

	var newPassword string
	passwd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, in *bufio.Reader) error {
			oldPw, err := secret(cmd.OutOrStdout(), in, password, "Current password: ")
			if err != nil {
				return err
			}
			newPw, err := secret(cmd.OutOrStdout(), in, newPassword, "New password: ")
			if err != nil {
				return err
			}
			if err := svc.ChangePassword(cmd.Context(), user, oldPw, newPw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "password changed")
			return nil
		}),
	}
	passwd.Flags().StringVar(&password, "password", "", "current password (prompted when empty)")
	passwd.Flags().StringVar(&newPassword, "new-password", "", "new password (prompted when empty)")
	cmd.AddCommand(passwd)

	update := &cobra.Command{
		Use:   "update",
		Short: "Change email or age",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, _ *bufio.Reader) error {
			var u domain.ProfileUpdate
			if cmd.Flags().Changed("email") {
				u.Email = &email
			}
			if cmd.Flags().Changed("age") {
				u.Age = &age
			}
			profile, err := svc.UpdateProfile(cmd.Context(), user, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s <%s>\n", profile.Username, profile.Email)
			return nil
		}),
	}
	update.Flags().StringVar(&email, "email", "", "new email address")
	update.Flags().IntVar(&age, "age", 0, "new age")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show answered questions and accuracy",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, _ *bufio.Reader) error {
			stats, err := svc.Statistics(cmd.Context(), user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "answered: %d\ncorrect: %d\naccuracy: %.1f%%\nsessions: %d\n",
				stats.TotalAnswered, stats.TotalCorrect, stats.Percentage(), len(stats.History))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the score history",
		Args:  cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, svc *app.ProfileService, _ *bufio.Reader) error {
			if err := svc.ResetProgress(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "progress of %s reset\n", user)
			return nil
		}),
	})
	return cmd
}

// secret returns value, or reads one line from in after printing prompt.
func secret(out io.Writer, in *bufio.Reader, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password required")
	}
	return line, nil
}
