// Package tui is the interactive list view. Every engine call runs as a
// tea.Cmd so the UI never waits on the network; the view re-reads the
// engine's list whenever a call settles.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jdsantisteban/todo-frontend/internal/engine"
	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/notify"
	"github.com/jdsantisteban/todo-frontend/internal/ui"
)

const defaultToastTTL = 3 * time.Second

// Options wires the view to its collaborators.
type Options struct {
	Engine   *engine.Engine
	Toasts   <-chan notify.Event // nil disables toasts
	Username string
	Dark     bool

	// ToggleDark persists the opposite of the shown mode and returns it.
	ToggleDark func(shown bool) (bool, error)
	// Logout clears the stored credential.
	Logout func() error

	// ToastTTL controls how long a toast stays; negative keeps it until replaced.
	ToastTTL time.Duration
}

// Result tells the caller why the view ended.
type Result struct {
	LoggedOut  bool
	NeedsLogin bool
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type (
	settledMsg struct {
		op  string
		err error
	}
	toastMsg        notify.Event
	toastExpiredMsg struct{ seq int }
)

// Model is the Bubble Tea model.
type Model struct {
	opt  Options
	eng  *engine.Engine
	pal  *ui.Palette
	list list.Model
	ti   textinput.Model
	spin spinner.Model
	help help.Model

	mode     mode
	inflight int
	toast    notify.Event
	toastSeq int
	hasToast bool
	width    int
	height   int
	result   Result
}

// New builds the model; Init triggers the first load.
func New(opt Options) Model {
	pal := ui.NewPalette(opt.Dark)
	m := Model{
		opt: opt,
		eng: opt.Engine,
		pal: &pal,
	}
	if m.opt.ToastTTL == 0 {
		m.opt.ToastTTL = defaultToastTTL
	}

	l := list.New(nil, itemDelegate{pal: m.pal}, 0, 0)
	l.Title = "Todos"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	m.list = l

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.CharLimit = 200
	m.ti.Cursor.SetMode(cursor.CursorStatic)

	m.spin = spinner.New(spinner.WithSpinner(spinner.MiniDot))
	m.help = help.New()
	m.width, m.height = 80, 24
	// the first load is issued by Init
	m.inflight = 1
	return m
}

// Run starts the program and blocks until the user quits. The engine is
// closed on exit so no late response lands after the view is gone.
func Run(opt Options) (Result, error) {
	defer opt.Engine.Close()
	p := tea.NewProgram(New(opt), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{}, err
	}
	if fm, ok := final.(Model); ok {
		return fm.result, nil
	}
	return Result{}, nil
}

func (m Model) Init() tea.Cmd {
	eng := m.eng
	load := func() tea.Msg {
		return settledMsg{op: "load", err: eng.Load(context.Background())}
	}
	return tea.Batch(m.waitToast(), load, m.spin.Tick)
}

func (m Model) waitToast() tea.Cmd {
	if m.opt.Toasts == nil {
		return nil
	}
	ch := m.opt.Toasts
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(ev)
	}
}

// call runs one engine operation off the UI loop.
func (m *Model) call(op string, fn func(context.Context) error) tea.Cmd {
	m.inflight++
	cmd := func() tea.Msg {
		return settledMsg{op: op, err: fn(context.Background())}
	}
	if m.inflight == 1 {
		return tea.Batch(cmd, m.spin.Tick)
	}
	return cmd
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.Item, ok
}

// refresh mirrors the engine's list into the list widget.
func (m *Model) refresh() {
	items := m.eng.Items()
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{it})
	}
	idx := m.list.Index()
	m.list.SetItems(li)
	if idx >= len(li) {
		idx = len(li) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	if m.mode == modeEdit {
		if _, ok := m.eng.Editing(); !ok {
			m.leaveInput()
		}
	}
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case settledMsg:
		m.inflight--
		return m.settled(msg)

	case toastMsg:
		m.toast = notify.Event(msg)
		m.hasToast = true
		m.toastSeq++
		cmds := []tea.Cmd{m.waitToast()}
		if m.opt.ToastTTL > 0 {
			seq := m.toastSeq
			cmds = append(cmds, tea.Tick(m.opt.ToastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq} }))
		}
		return m, tea.Batch(cmds...)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.hasToast = false
		}
		return m, nil

	case spinner.TickMsg:
		if m.inflight <= 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) settled(msg settledMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, engine.ErrUnauthenticated) {
		m.result.NeedsLogin = true
		return m, tea.Quit
	}
	m.refresh()
	if msg.err != nil {
		return m, nil
	}
	switch msg.op {
	case "create":
		if m.mode == modeAdd {
			m.leaveInput()
		}
	case "commit":
		if _, editing := m.eng.Editing(); !editing && m.mode == modeEdit {
			m.leaveInput()
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eng := m.eng
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Add):
		m.mode = modeAdd
		m.ti.SetValue(m.eng.Input())
		m.ti.CursorEnd()
		m.ti.Placeholder = "Enter todo"
		cmd := m.ti.Focus()
		return m, cmd

	case key.Matches(msg, keys.Edit):
		it, ok := m.selected()
		if !ok || m.eng.BeginEdit(it.ID) != nil {
			return m, nil
		}
		s, _ := m.eng.Editing()
		m.mode = modeEdit
		m.ti.SetValue(s.Draft)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit todo"
		cmd := m.ti.Focus()
		return m, cmd

	case key.Matches(msg, keys.Toggle):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.call("toggle", func(ctx context.Context) error {
			_, err := eng.Toggle(ctx, it.ID)
			return err
		})
		return m, cmd

	case key.Matches(msg, keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.call("delete", func(ctx context.Context) error {
			return eng.Delete(ctx, it.ID)
		})
		return m, cmd

	case key.Matches(msg, keys.Reload):
		cmd := m.call("load", func(ctx context.Context) error {
			return eng.Load(ctx)
		})
		return m, cmd

	case key.Matches(msg, keys.Theme):
		if m.opt.ToggleDark == nil {
			return m, nil
		}
		dark, err := m.opt.ToggleDark(m.pal.Dark)
		if err != nil {
			m.toast = notify.Event{Level: notify.Error, Message: "Could not save theme"}
			m.hasToast = true
			return m, nil
		}
		*m.pal = ui.NewPalette(dark)
		return m, nil

	case key.Matches(msg, keys.Logout):
		if m.opt.Logout != nil {
			if err := m.opt.Logout(); err != nil {
				m.toast = notify.Event{Level: notify.Error, Message: "Logout failed: " + err.Error()}
				m.hasToast = true
				return m, nil
			}
		}
		m.eng.Close()
		m.result.LoggedOut = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eng := m.eng
	switch {
	case key.Matches(msg, keys.Confirm):
		cmd := m.call("create", func(ctx context.Context) error {
			_, err := eng.SubmitInput(ctx)
			return err
		})
		return m, cmd
	case key.Matches(msg, keys.Discard):
		m.eng.SetInput("")
		m.leaveInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.eng.SetInput(m.ti.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eng := m.eng
	switch {
	case key.Matches(msg, keys.Confirm):
		cmd := m.call("commit", func(ctx context.Context) error {
			return eng.Commit(ctx)
		})
		return m, cmd
	case key.Matches(msg, keys.Discard):
		m.eng.Cancel()
		m.leaveInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	_ = m.eng.SetDraft(m.ti.Value())
	return m, cmd
}

func (m Model) View() string {
	p := m.pal
	done, pending := m.eng.Stats()

	header := p.Header(m.opt.Username, done, pending)
	if m.inflight > 0 {
		header += "  " + m.spin.View()
	}
	bar := p.Muted.Render(ui.ProgressBar(done, done+pending, 28))

	listHeight := m.height - 10
	if m.mode != modeList {
		listHeight -= 3
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = p.Muted.Render("no items, press a to add one")
	}

	parts := []string{header, bar, "", body}
	if m.mode != modeList {
		title := "Add todo"
		if m.mode == modeEdit {
			title = "Edit todo"
		}
		box := p.Border.Render(title + "\n" + m.ti.View())
		parts = append(parts, box)
	}
	if m.hasToast {
		parts = append(parts, m.renderToast())
	}
	parts = append(parts, m.renderHelp())
	return p.Panel([]string{lipgloss.JoinVertical(lipgloss.Left, parts...)})
}

func (m Model) renderToast() string {
	p := m.pal
	switch m.toast.Level {
	case notify.Success:
		return p.Toast.Render(p.Success.Render(p.SymDone) + " " + m.toast.Message)
	case notify.Error:
		return p.Toast.Render(p.Error.Render("✖") + " " + m.toast.Message)
	}
	return p.Toast.Render(m.toast.Message)
}

func (m Model) renderHelp() string {
	if m.mode != modeList {
		return m.help.ShortHelpView([]key.Binding{keys.Confirm, keys.Discard})
	}
	theme := key.NewBinding(key.WithKeys("t"), key.WithHelp("t", strings.ToLower(m.pal.ModeLabel())))
	return m.help.ShortHelpView(append(keys.listHelp(), theme, keys.Quit))
}
