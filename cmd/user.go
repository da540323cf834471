package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/migrate"
	"github.com/example/englishschool/internal/placement"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserSetLevelCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, email, password, role string

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a user, skipping the teacher registration code",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := auth.ParseRole(role)
			if !ok {
				return fmt.Errorf("invalid --role %q (want student or teacher)", role)
			}
			if !auth.StrongPassword(password) {
				return errors.New("--password must be at least 8 characters with upper, lower, digit and special characters")
			}

			ctx := context.Background()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := migrate.Up(ctx, rt.db, rt.logger); err != nil {
				return err
			}

			u, err := auth.NewStore(rt.db).CreateUser(ctx, auth.NewUser{
				Username: username,
				Email:    email,
				Password: password,
				Role:     r,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q id=%d\n", u.Role, u.Username, u.ID)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&role, "role", string(auth.RoleStudent), "student or teacher")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}

func newUserSetLevelCmd() *cobra.Command {
	var username, level string

	c := &cobra.Command{
		Use:   "set-level",
		Short: "Record a student's assessed level",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := placement.ParseLevel(level)
			if !ok {
				return fmt.Errorf("invalid --level %q", level)
			}

			ctx := context.Background()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			users := auth.NewStore(rt.db)
			u, err := users.GetUserByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}
			if err := users.SetLevel(ctx, u.ID, string(l)); err != nil {
				return fmt.Errorf("user %q is not a student: %w", username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Username, l)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "student username")
	c.Flags().StringVar(&level, "level", "", `one of "Beginner", "Elementary", "Intermediate", "Upper Intermediate", "Advanced"`)
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("level")
	return c
}
