package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdsantisteban/todo-frontend/internal/gateway"
)

func newRegisterCmd(app *App) *cobra.Command {
	var r gateway.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  exactArgs(0, "todo register --username <name> --email <email> --password <password>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
				return errUsage("register: --username, --email and --password are required")
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			if err := c.Register(cmd.Context(), r); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			pal := app.palette()
			pal.OK(cmd.OutOrStdout(), "registered "+r.Username)
			pal.Hint(cmd.OutOrStdout(), "Next: todo login --email "+r.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Username, "username", "", "Display name")
	cmd.Flags().StringVar(&r.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&r.Password, "password", envOr("TADA_PASSWORD", ""), "Password (or TADA_PASSWORD)")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  exactArgs(0, "todo login --email <email> --password <password>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errUsage("login: --email and --password are required")
			}
			c, err := app.client()
			if err != nil {
				return err
			}
			cred, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := app.creds.Save(cred); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			app.logger.Info("logged in", "username", cred.Username)
			app.palette().OK(cmd.OutOrStdout(), "logged in as "+displayName(cred.Username))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("TADA_PASSWORD", ""), "Password (or TADA_PASSWORD)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  exactArgs(0, "todo logout"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.creds.Clear(); err != nil {
				return err
			}
			app.palette().OK(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  exactArgs(0, "todo whoami"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := app.credential()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, displayName(cred.Username))
			app.palette().Hint(out, fmt.Sprintf("api %s, token from %s", app.APIURL, cred.Source))
			return nil
		},
	}
}

func displayName(username string) string {
	if username == "" {
		return "(unnamed user)"
	}
	return username
}
