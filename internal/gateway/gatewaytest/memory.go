// Package gatewaytest provides an in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"strconv"
	"sync"

	"github.com/jdsantisteban/todo-frontend/internal/gateway"
	"github.com/jdsantisteban/todo-frontend/internal/model"
)

// Memory is a Gateway backed by a slice. Fail makes the named op
// ("list", "create", "update", "delete") return a RemoteError with status 500.
type Memory struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int
	Fail   map[string]bool
	Calls  int
}

var _ gateway.Gateway = (*Memory)(nil)

func NewMemory(items ...model.Item) *Memory {
	return &Memory{items: append([]model.Item(nil), items...), Fail: map[string]bool{}}
}

// Items returns the server-side list.
func (m *Memory) Items() []model.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Item(nil), m.items...)
}

// SetFail toggles failure for op.
func (m *Memory) SetFail(op string, fail bool) {
	m.mu.Lock()
	m.Fail[op] = fail
	m.mu.Unlock()
}

// CallCount returns how many calls reached the gateway.
func (m *Memory) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

func (m *Memory) begin(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Fail[op] {
		return &gateway.RemoteError{Op: op, Status: 500, Body: "injected failure"}
	}
	return nil
}

func (m *Memory) index(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) List(ctx context.Context, token string) ([]model.Item, error) {
	if err := m.begin("list"); err != nil {
		return nil, err
	}
	return m.Items(), nil
}

func (m *Memory) Create(ctx context.Context, token, text string) (model.Item, error) {
	if err := m.begin("create"); err != nil {
		return model.Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	it := model.Item{ID: "m" + strconv.Itoa(m.nextID), Text: text}
	m.items = append(m.items, it)
	return it, nil
}

func (m *Memory) Update(ctx context.Context, token, id string, p model.Patch) (model.Item, error) {
	if err := m.begin("update"); err != nil {
		return model.Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return model.Item{}, &gateway.RemoteError{Op: "update", Status: 404, Body: "not found"}
	}
	if p.Text != nil {
		m.items[i].Text = *p.Text
	}
	if p.Completed != nil {
		m.items[i].Completed = *p.Completed
	}
	return m.items[i], nil
}

func (m *Memory) Delete(ctx context.Context, token, id string) error {
	if err := m.begin("delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return &gateway.RemoteError{Op: "delete", Status: 404, Body: "not found"}
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}
