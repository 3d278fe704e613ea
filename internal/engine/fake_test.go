package engine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/notify"
	"github.com/jdsantisteban/todo-frontend/internal/session"
)

var errBoom = errors.New("boom")

// fakeGateway is an in-memory remote store with hooks for failures and for
// holding calls open.
type fakeGateway struct {
	mu        sync.Mutex
	order     []string
	items     map[string]model.Item
	nextID    int
	calls     []Op
	fail      map[Op]error
	hold      map[string]chan struct{}
	entered   chan string
	ignoreCtx bool
}

func newFakeGateway(items ...model.Item) *fakeGateway {
	f := &fakeGateway{
		items:   make(map[string]model.Item),
		fail:    make(map[Op]error),
		hold:    make(map[string]chan struct{}),
		entered: make(chan string, 32),
		nextID:  100,
	}
	for _, it := range items {
		f.order = append(f.order, it.ID)
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeGateway) setFail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

func (f *fakeGateway) setHold(id string, gate chan struct{}) {
	f.mu.Lock()
	f.hold[id] = gate
	f.mu.Unlock()
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) snapshot() []model.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Item, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.items[id])
	}
	return out
}

func (f *fakeGateway) enter(ctx context.Context, op Op, id string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	err := f.fail[op]
	gate := f.hold[id]
	ignore := f.ignoreCtx
	f.mu.Unlock()

	select {
	case f.entered <- id:
	default:
	}
	if gate != nil {
		if ignore {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// List reads the server state before it can be held under the id "list",
// so a held load answers with a snapshot older than later mutations.
func (f *fakeGateway) List(ctx context.Context, token string) ([]model.Item, error) {
	snap := f.snapshot()
	if err := f.enter(ctx, OpLoad, "list"); err != nil {
		return nil, err
	}
	return snap, nil
}

func (f *fakeGateway) Create(ctx context.Context, token, text string) (model.Item, error) {
	if err := f.enter(ctx, OpCreate, ""); err != nil {
		return model.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it := model.Item{ID: strconv.Itoa(f.nextID), Text: text}
	f.order = append(f.order, it.ID)
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeGateway) Update(ctx context.Context, token, id string, p model.Patch) (model.Item, error) {
	if err := f.enter(ctx, OpUpdate, id); err != nil {
		return model.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return model.Item{}, errors.New("not found")
	}
	if p.Text != nil {
		it.Text = *p.Text
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	f.items[id] = it
	return it, nil
}

func (f *fakeGateway) Delete(ctx context.Context, token, id string) error {
	if err := f.enter(ctx, OpDelete, id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func setupTestEngine(t *testing.T, f *fakeGateway) (*Engine, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	e := New(context.Background(), f, session.Static{Token: "tok", Username: "ana"}, WithNotifier(rec))
	t.Cleanup(e.Close)
	return e, rec
}

func mustLoad(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func waitEntered(t *testing.T, f *fakeGateway, id string) {
	t.Helper()
	select {
	case got := <-f.entered:
		if got != id {
			t.Fatalf("expected call for %q, got %q", id, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for call on %q", id)
	}
}

// drain discards entered signals from calls that are not being watched.
func drain(f *fakeGateway) {
	for {
		select {
		case <-f.entered:
		default:
			return
		}
	}
}
