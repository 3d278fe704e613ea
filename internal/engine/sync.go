package engine

import (
	"context"
	"strings"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

const (
	msgEmptyTodo = "Todo cannot be empty"
	msgEmptyText = "Todo text cannot be empty"
)

// Load replaces the whole list with the server's, in server order.
// Items mutated locally while the request was in flight keep their newer
// local state. On failure the list is left as it was.
func (e *Engine) Load(ctx context.Context) error {
	tok, err := e.token(OpLoad)
	if err != nil {
		return err
	}
	ctx, done := e.bind(ctx)
	defer done()

	e.mu.Lock()
	e.loads++
	since := e.epoch
	e.mu.Unlock()

	items, err := e.gw.List(ctx, tok)

	e.mu.Lock()
	e.loads--
	touched := e.touched
	if e.loads == 0 {
		e.touched = nil
	}
	if e.Closed() {
		e.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		e.mu.Unlock()
		return e.fail(OpLoad, "", "Failed to fetch todos", err)
	}
	e.items = e.mergeLocked(dedupe(items), since, touched)
	if e.edit != nil && e.indexLocked(e.edit.TargetID) < 0 {
		e.edit = nil
	}
	n := len(e.items)
	e.mu.Unlock()

	e.logger.Info("todos loaded", "count", n)
	return nil
}

// mergeLocked reconciles a list fetched at epoch since with mutations that
// settled after it was requested.
func (e *Engine) mergeLocked(fresh []model.Item, since uint64, touched map[string]uint64) []model.Item {
	if e.epoch == since {
		return fresh
	}
	newer := func(id string) bool { return touched[id] > since }

	out := make([]model.Item, 0, len(fresh))
	inFresh := make(map[string]bool, len(fresh))
	for _, it := range fresh {
		inFresh[it.ID] = true
		if !newer(it.ID) {
			out = append(out, it)
			continue
		}
		// deleted locally after the snapshot: stays deleted
		if i := e.indexLocked(it.ID); i >= 0 {
			out = append(out, e.items[i])
		}
	}
	// created after the snapshot
	for _, it := range e.items {
		if newer(it.ID) && !inFresh[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// dedupe keeps the first occurrence of every id.
func dedupe(items []model.Item) []model.Item {
	seen := make(map[string]bool, len(items))
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// Create adds an item with the trimmed text and appends the server's copy.
func (e *Engine) Create(ctx context.Context, text string) (model.Item, error) {
	tok, err := e.token(OpCreate)
	if err != nil {
		return model.Item{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Item{}, e.invalid(OpCreate, msgEmptyTodo)
	}
	ctx, done := e.bind(ctx)
	defer done()

	e.progress(OpCreate, "Adding todo...")
	it, err := e.gw.Create(ctx, tok, text)

	e.mu.Lock()
	if e.Closed() {
		e.mu.Unlock()
		return model.Item{}, ErrSessionClosed
	}
	if err != nil {
		e.mu.Unlock()
		return model.Item{}, e.fail(OpCreate, "", "Failed to add todo", err)
	}
	if i := e.indexLocked(it.ID); i >= 0 {
		// a reload already picked it up
		e.items[i] = it
	} else {
		e.items = append(e.items, it)
	}
	e.markLocked(it.ID)
	e.mu.Unlock()

	e.logger.Info("todo created", "id", it.ID)
	e.success(OpCreate, "Todo added")
	return it, nil
}

// SubmitInput creates an item from the pending input. The input is cleared
// on success unless it was edited while the request was in flight.
func (e *Engine) SubmitInput(ctx context.Context) (model.Item, error) {
	text := e.Input()
	it, err := e.Create(ctx, text)
	if err != nil {
		return it, err
	}
	e.mu.Lock()
	if e.input == text {
		e.input = ""
	}
	e.mu.Unlock()
	return it, nil
}

// Update applies a partial change to one item and replaces it in place with
// the server's representation.
func (e *Engine) Update(ctx context.Context, id string, patch model.Patch) (model.Item, error) {
	tok, err := e.token(OpUpdate)
	if err != nil {
		return model.Item{}, err
	}
	if patch.Empty() {
		return model.Item{}, e.invalid(OpUpdate, "Nothing to update")
	}
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return model.Item{}, e.invalid(OpUpdate, msgEmptyText)
		}
		patch.Text = &text
	}
	ctx, done := e.bind(ctx)
	defer done()

	release, err := e.acquire(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	defer release()

	if _, ok := e.Item(id); !ok {
		return model.Item{}, ErrUnknownItem
	}
	return e.update(ctx, tok, id, patch, "Todo updated")
}

// Toggle flips completion. The current value is read from memory once the
// item's earlier mutations have settled, so two toggles always cancel out.
func (e *Engine) Toggle(ctx context.Context, id string) (model.Item, error) {
	tok, err := e.token(OpUpdate)
	if err != nil {
		return model.Item{}, err
	}
	ctx, done := e.bind(ctx)
	defer done()

	release, err := e.acquire(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	defer release()

	cur, ok := e.Item(id)
	if !ok {
		return model.Item{}, ErrUnknownItem
	}
	msg := "Todo marked as done"
	if cur.Completed {
		msg = "Todo marked as not done"
	}
	return e.update(ctx, tok, id, model.CompletedPatch(!cur.Completed), msg)
}

// Rename changes an item's text.
func (e *Engine) Rename(ctx context.Context, id, text string) (model.Item, error) {
	return e.Update(ctx, id, model.TextPatch(text))
}

// update runs with the id's slot held.
func (e *Engine) update(ctx context.Context, tok, id string, patch model.Patch, okMsg string) (model.Item, error) {
	e.progress(OpUpdate, "Updating todo...")
	it, err := e.gw.Update(ctx, tok, id, patch)

	e.mu.Lock()
	if e.Closed() {
		e.mu.Unlock()
		return model.Item{}, ErrSessionClosed
	}
	if err != nil {
		e.mu.Unlock()
		return model.Item{}, e.fail(OpUpdate, id, "Failed to update todo", err)
	}
	if it.ID == "" {
		it.ID = id
	}
	// a concurrent reload may have dropped the item; never resurrect it
	if i := e.indexLocked(id); i >= 0 {
		e.items[i] = it
	}
	e.markLocked(id)
	e.mu.Unlock()

	e.logger.Info("todo updated", "id", id)
	e.success(OpUpdate, okMsg)
	return it, nil
}

// Delete removes an item. Deleting the item being edited ends the edit.
func (e *Engine) Delete(ctx context.Context, id string) error {
	tok, err := e.token(OpDelete)
	if err != nil {
		return err
	}
	ctx, done := e.bind(ctx)
	defer done()

	release, err := e.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if _, ok := e.Item(id); !ok {
		return ErrUnknownItem
	}

	e.progress(OpDelete, "Deleting todo...")
	err = e.gw.Delete(ctx, tok, id)

	e.mu.Lock()
	if e.Closed() {
		e.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		e.mu.Unlock()
		return e.fail(OpDelete, id, "Failed to delete todo", err)
	}
	if i := e.indexLocked(id); i >= 0 {
		e.items = append(e.items[:i:i], e.items[i+1:]...)
	}
	e.markLocked(id)
	if e.edit != nil && e.edit.TargetID == id {
		e.edit = nil
	}
	e.mu.Unlock()

	e.logger.Info("todo deleted", "id", id)
	e.success(OpDelete, "Todo deleted")
	return nil
}
