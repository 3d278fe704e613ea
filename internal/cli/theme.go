package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdsantisteban/todo-frontend/internal/config"
	"github.com/jdsantisteban/todo-frontend/internal/engine"
	"github.com/jdsantisteban/todo-frontend/internal/notify"
	"github.com/jdsantisteban/todo-frontend/internal/tui"
)

func newThemeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the colour theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, themeName(app.cfg.DarkMode))
				return nil
			}
			var (
				dark bool
				err  error
			)
			switch args[0] {
			case "dark":
				dark, err = true, config.SetDarkMode(true)
			case "light":
				dark, err = false, config.SetDarkMode(false)
			case "toggle":
				dark, err = config.ToggleDarkMode(app.cfg.DarkMode)
			}
			if err != nil {
				return err
			}
			app.cfg.DarkMode = dark
			app.palette().OK(out, "theme set to "+themeName(dark))
			return nil
		},
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive list",
		Args:  exactArgs(0, "todo ui"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	cred, err := app.credential()
	if err != nil {
		return err
	}
	gw, err := app.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	toasts := notify.NewChannel(32)
	// the file is re-read per operation so a logout elsewhere takes effect
	e := engine.New(ctx, gw, app.creds,
		engine.WithNotifier(notify.Multi(toasts, notify.Log(app.logger))),
		engine.WithLogger(app.logger),
	)
	res, err := tui.Run(tui.Options{
		Engine:     e,
		Toasts:     toasts.C,
		Username:   cred.Username,
		Dark:       app.cfg.DarkMode,
		ToggleDark: config.ToggleDarkMode,
		Logout:     app.creds.Clear,
	})
	if err != nil {
		return err
	}

	pal := app.palette()
	switch {
	case res.NeedsLogin:
		return errNotLoggedIn
	case res.LoggedOut:
		pal.OK(cmd.OutOrStdout(), "logged out")
	}
	return nil
}
