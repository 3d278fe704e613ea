// Package notify carries user-facing progress, success and failure events
// from the sync engine to whatever presents them.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level classifies an event.
type Level int

const (
	Progress Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Progress:
		return "progress"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Event is one toast. Err holds the structured cause for Error events.
type Event struct {
	Op      string
	Level   Level
	Message string
	Err     error
}

// Sink presents events. Notify must not block the caller for long.
type Sink interface {
	Notify(Event)
}

// Func adapts a function to Sink.
type Func func(Event)

func (f Func) Notify(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = Func(func(Event) {})

// Multi fans an event out to several sinks.
func Multi(sinks ...Sink) Sink {
	return Func(func(e Event) {
		for _, s := range sinks {
			s.Notify(e)
		}
	})
}

// Log records every event shown to the user at debug level.
func Log(l *slog.Logger) Sink {
	return Func(func(e Event) {
		attrs := []any{"op", e.Op, "level", e.Level.String(), "message", e.Message}
		if e.Err != nil {
			attrs = append(attrs, "err", e.Err)
		}
		l.Debug("notification", attrs...)
	})
}

// Channel delivers events to a buffered channel, dropping them when full so
// the engine never waits on the UI.
type Channel struct {
	C chan Event
}

func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{C: make(chan Event, size)}
}

func (c *Channel) Notify(e Event) {
	select {
	case c.C <- e:
	default:
	}
}

// Console writes events as single styled lines, errors to Err.
type Console struct {
	mu      sync.Mutex
	Out     io.Writer
	Err     io.Writer
	Verbose bool // also print progress events

	success, failure, muted lipgloss.Style
}

func NewConsole(out, errw io.Writer) *Console {
	return &Console{
		Out:     out,
		Err:     errw,
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		muted:   lipgloss.NewStyle().Faint(true),
	}
}

func (c *Console) Notify(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e.Level {
	case Success:
		fmt.Fprintln(c.Out, c.success.Render("✔ "+e.Message))
	case Error:
		fmt.Fprintln(c.Err, c.failure.Render("✖ "+e.Message))
	case Progress:
		if c.Verbose {
			fmt.Fprintln(c.Out, c.muted.Render("… "+e.Message))
		}
	}
}

// Recorder keeps every event; handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of what was recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}
