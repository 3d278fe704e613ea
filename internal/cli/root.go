// Package cli is the cobra command tree of the todo client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdsantisteban/todo-frontend/internal/config"
	"github.com/jdsantisteban/todo-frontend/internal/engine"
	"github.com/jdsantisteban/todo-frontend/internal/gateway"
	"github.com/jdsantisteban/todo-frontend/internal/logging"
	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/notify"
	"github.com/jdsantisteban/todo-frontend/internal/session"
	"github.com/jdsantisteban/todo-frontend/internal/ui"
)

type App struct {
	APIURL  string
	Timeout time.Duration
	Verbose bool

	cfg      *config.Config
	creds    session.File
	logger   *slog.Logger
	logClose io.Closer
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo list client for the tada API (CLI + TUI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive list
  todo

  # Scriptable commands
  todo login --email me@example.com --password secret
  todo add "Buy milk"
  todo ls --group
  todo done 2
  todo rename 1 "Buy oat milk"
  todo rm 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logClose != nil {
			return app.logClose.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", envOr("TADA_API_URL", ""), "Base URL of the todo API (default from config.yaml)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default from config.yaml)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Also print progress messages")

	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newUICmd(app))

	return cmd
}

// Execute runs the command tree on os.Args and returns the process exit code.
func Execute() int {
	app := &App{}
	cmd := newRootCmd(app)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	app.report(cmd.ErrOrStderr(), err)
	return ExitCode(err)
}

// setup loads config and opens the log file. Flags win over config.yaml.
func (a *App) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	if strings.TrimSpace(a.APIURL) == "" {
		a.APIURL = cfg.APIURL
	}
	if a.Timeout <= 0 {
		a.Timeout = cfg.RequestTimeout()
	}

	a.logger = logging.Discard()
	if dir, err := config.Dir(); err == nil {
		if l, c, err := logging.Open(dir, cfg.LogLevel); err == nil {
			a.logger, a.logClose = l, c
		}
	}
	return nil
}

func (a *App) palette() ui.Palette {
	return ui.NewPalette(a.cfg != nil && a.cfg.DarkMode)
}

func (a *App) client() (*gateway.HTTPClient, error) {
	return gateway.NewHTTPClient(a.APIURL,
		gateway.WithTimeout(a.Timeout),
		gateway.WithLogger(a.logger),
	)
}

// credential returns the stored credential or errNotLoggedIn.
func (a *App) credential() (model.Credential, error) {
	cred, err := a.creds.Load()
	if err != nil {
		return model.Credential{}, err
	}
	if !cred.Valid() {
		return model.Credential{}, errNotLoggedIn
	}
	return cred, nil
}

// newEngine builds a one-shot engine whose notifications go to the console.
func (a *App) newEngine(ctx context.Context, cmd *cobra.Command) (*engine.Engine, model.Credential, error) {
	cred, err := a.credential()
	if err != nil {
		return nil, model.Credential{}, err
	}
	gw, err := a.client()
	if err != nil {
		return nil, model.Credential{}, err
	}
	console := notify.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
	console.Verbose = a.Verbose
	e := engine.New(ctx, gw, session.Static(cred),
		engine.WithNotifier(notify.Multi(console, notify.Log(a.logger))),
		engine.WithLogger(a.logger),
	)
	return e, cred, nil
}

// loaded is newEngine followed by Load; every command that addresses an
// item by reference needs the current list first.
func (a *App) loaded(cmd *cobra.Command) (*engine.Engine, model.Credential, error) {
	ctx := cmd.Context()
	e, cred, err := a.newEngine(ctx, cmd)
	if err != nil {
		return nil, model.Credential{}, err
	}
	if err := e.Load(ctx); err != nil {
		e.Close()
		return nil, model.Credential{}, reported(err)
	}
	return e, cred, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// report prints err unless a notification already did. Before config is
// loaded the light palette is used.
func (a *App) report(w io.Writer, err error) {
	pal := a.palette()
	var (
		rep *reportedError
		use *usageError
		re  *gateway.RemoteError
	)
	switch {
	case errors.As(err, &rep):
		if !engine.IsValidation(err) {
			pal.Hint(w, rep.Err.Error())
		}
	case errors.As(err, &use):
		pal.Fail(w, use.msg)
		if use.hint != "" {
			pal.Hint(w, use.hint)
		}
	default:
		pal.Fail(w, err.Error())
	}
	if errors.As(err, &re) && re.Unauthorized() && re.Op != "login" {
		pal.Hint(w, "Hint: your session may have expired. Run: todo login")
	}
	fmt.Fprintln(w)
}
