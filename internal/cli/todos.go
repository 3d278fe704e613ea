package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    exactArgs(0, "todo ls [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cred, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			pal := app.palette()
			items := e.Items()
			d, p := e.Stats()

			lines := []string{
				pal.Header(cred.Username, d, p),
				pal.Muted.Render(ui.ProgressBar(d, d+p, 28)),
				"",
			}
			if group {
				lines = append(lines, pal.GroupedLines(items)...)
			} else {
				lines = append(lines, pal.ItemLines(items)...)
			}
			lines = append(lines, "", pal.Muted.Render("Tip: add with `todo add <text...>`"))
			fmt.Fprintln(cmd.OutOrStdout(), pal.Panel(lines))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "Group output by pending/done")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a todo (text can be multiple words)",
		Args:  minArgs(1, "todo add <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, _, err := app.newEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			_, err = e.Create(ctx, strings.Join(args, " "))
			return reported(err)
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <ref>",
		Short: "Toggle completion of a todo (1-based index or id)",
		Args:  exactArgs(1, "todo done <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			it, err := resolveRef(e.Items(), args[0])
			if err != nil {
				return err
			}
			_, err = e.Toggle(cmd.Context(), it.ID)
			return reported(err)
		},
	}
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <ref> <text...>",
		Short: "Change the text of a todo",
		Args:  minArgs(2, "todo rename <index|id> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			it, err := resolveRef(e.Items(), args[0])
			if err != nil {
				return err
			}
			if err := e.BeginEdit(it.ID); err != nil {
				return err
			}
			if err := e.SetDraft(strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return reported(e.Commit(cmd.Context()))
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    exactArgs(1, "todo rm <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := app.loaded(cmd)
			if err != nil {
				return err
			}
			defer e.Close()
			it, err := resolveRef(e.Items(), args[0])
			if err != nil {
				return err
			}
			return reported(e.Delete(cmd.Context(), it.ID))
		},
	}
}

// resolveRef accepts a 1-based index into items or an item id.
func resolveRef(items []model.Item, ref string) (model.Item, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return model.Item{}, &usageError{
				msg:  fmt.Sprintf("index out of range: have %d, got %d", len(items), n),
				hint: "Hint: run `todo ls` to see valid indexes",
			}
		}
		return items[n-1], nil
	}
	for _, it := range items {
		if it.ID == ref {
			return it, nil
		}
	}
	return model.Item{}, &usageError{
		msg:  "no todo with id " + ref,
		hint: "Hint: run `todo ls` to see ids",
	}
}
