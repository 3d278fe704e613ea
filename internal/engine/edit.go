package engine

import "context"

// BeginEdit puts id in edit mode with its current text as the draft.
// Any other edit in progress is dropped.
func (e *Engine) BeginEdit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexLocked(id)
	if i < 0 {
		return ErrUnknownItem
	}
	e.edit = &EditSession{TargetID: id, Draft: e.items[i].Text}
	return nil
}

// SetDraft replaces the working text of the open edit.
func (e *Engine) SetDraft(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.edit == nil {
		return ErrNotEditing
	}
	e.edit.Draft = text
	return nil
}

// Editing returns the open edit, if any.
func (e *Engine) Editing() (EditSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.edit == nil {
		return EditSession{}, false
	}
	return *e.edit, true
}

// Cancel discards the draft and returns to idle.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.edit = nil
	e.mu.Unlock()
}

// Commit renames the edited item to the draft. The edit stays open on a
// validation or remote failure so the draft is not lost, and closes on
// success unless the user has moved on to something else meanwhile.
func (e *Engine) Commit(ctx context.Context) error {
	s, ok := e.Editing()
	if !ok {
		return ErrNotEditing
	}
	if _, err := e.Rename(ctx, s.TargetID, s.Draft); err != nil {
		return err
	}
	e.mu.Lock()
	if e.edit != nil && *e.edit == s {
		e.edit = nil
	}
	e.mu.Unlock()
	return nil
}
