package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	model.Item
}

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// itemDelegate renders single-line rows. pal is shared with the model so a
// theme switch repaints without rebuilding the list.
type itemDelegate struct {
	pal *ui.Palette
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	p := d.pal
	box := p.Muted.Render(p.BoxUnchecked)
	text := ui.Clip(it.Text, m.Width()-6)
	if it.Completed {
		box = p.Success.Render(p.BoxChecked)
		text = p.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = p.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}
