// Package engine keeps the in-memory todo list consistent with the remote
// store and owns the single edit focus.
//
// The list only ever reflects successful server responses: a failed call
// leaves it exactly as it was. Mutations on the same id run one at a time in
// arrival order; mutations on different ids run and settle independently.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jdsantisteban/todo-frontend/internal/gateway"
	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/notify"
	"github.com/jdsantisteban/todo-frontend/internal/session"
)

// EditSession is the item currently in text-edit mode.
type EditSession struct {
	TargetID string
	Draft    string
}

// Engine is safe for concurrent use.
type Engine struct {
	gw     gateway.Gateway
	creds  session.Source
	sink   notify.Sink
	logger *slog.Logger

	life context.Context
	stop context.CancelFunc

	mu    sync.Mutex
	items []model.Item
	edit  *EditSession
	input string
	slots map[string]*slot

	// epoch counts applied mutations; while loads are in flight, touched
	// records the epoch at which each id was last mutated.
	epoch   uint64
	loads   int
	touched map[string]uint64
}

// slot serializes mutations on one id; refs counts holders and waiters.
type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets the sink that receives user-facing events.
func WithNotifier(s notify.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine whose requests live no longer than ctx or Close.
func New(ctx context.Context, gw gateway.Gateway, creds session.Source, opts ...Option) *Engine {
	life, stop := context.WithCancel(ctx)
	e := &Engine{
		gw:     gw,
		creds:  creds,
		sink:   notify.Discard,
		logger: slog.New(slog.DiscardHandler),
		life:   life,
		stop:   stop,
		items:  []model.Item{},
		slots:  make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close cancels every in-flight request. Responses that arrive afterwards
// are discarded and never touch the list.
func (e *Engine) Close() {
	e.stop()
}

// Closed reports whether Close was called or the parent context ended.
func (e *Engine) Closed() bool {
	return e.life.Err() != nil
}

// Items returns a copy of the list in display order.
func (e *Engine) Items() []model.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Item, len(e.items))
	copy(out, e.items)
	return out
}

// Item looks up one item by id.
func (e *Engine) Item(id string) (model.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(id); i >= 0 {
		return e.items[i], true
	}
	return model.Item{}, false
}

// Stats counts completed and pending items.
func (e *Engine) Stats() (done, pending int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, it := range e.items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Input returns the pending new-item text.
func (e *Engine) Input() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.input
}

// SetInput replaces the pending new-item text.
func (e *Engine) SetInput(text string) {
	e.mu.Lock()
	e.input = text
	e.mu.Unlock()
}

func (e *Engine) indexLocked(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

// markLocked records a successful mutation of id.
func (e *Engine) markLocked(id string) {
	e.epoch++
	if e.loads == 0 {
		return
	}
	if e.touched == nil {
		e.touched = make(map[string]uint64)
	}
	e.touched[id] = e.epoch
}

// token reads the credential for one operation.
func (e *Engine) token(op Op) (string, error) {
	c := e.creds.Credential()
	if !c.Valid() {
		e.logger.Info("operation without credential", "op", op)
		e.sink.Notify(notify.Event{Op: string(op), Level: notify.Error, Message: "Please log in", Err: ErrUnauthenticated})
		return "", ErrUnauthenticated
	}
	return c.Token, nil
}

// bind ties a request context to the engine lifetime.
func (e *Engine) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// acquire waits for exclusive use of id.
func (e *Engine) acquire(ctx context.Context, id string) (func(), error) {
	e.mu.Lock()
	s, ok := e.slots[id]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		e.slots[id] = s
	}
	s.refs++
	e.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		e.releaseSlot(id, s, false)
		if e.Closed() {
			return nil, ErrSessionClosed
		}
		return nil, err
	}
	return func() { e.releaseSlot(id, s, true) }, nil
}

func (e *Engine) releaseSlot(id string, s *slot, held bool) {
	if held {
		s.sem.Release(1)
	}
	e.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(e.slots, id)
	}
	e.mu.Unlock()
}

func (e *Engine) progress(op Op, msg string) {
	e.sink.Notify(notify.Event{Op: string(op), Level: notify.Progress, Message: msg})
}

func (e *Engine) success(op Op, msg string) {
	e.sink.Notify(notify.Event{Op: string(op), Level: notify.Success, Message: msg})
}

func (e *Engine) invalid(op Op, msg string) error {
	err := &ValidationError{Op: op, Message: msg}
	e.sink.Notify(notify.Event{Op: string(op), Level: notify.Error, Message: msg, Err: err})
	return err
}

func (e *Engine) fail(op Op, id, msg string, cause error) error {
	err := &OperationError{Op: op, ID: id, Err: cause}
	e.logger.Warn("remote operation failed", "op", op, "id", id, "err", cause)
	e.sink.Notify(notify.Event{Op: string(op), Level: notify.Error, Message: msg, Err: err})
	return err
}
