package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

func TestBeginEditThenCancel(t *testing.T) {
	f := newFakeGateway(model.Item{ID: "1", Text: "buy milk"})
	e, _ := setupTestEngine(t, f)
	mustLoad(t, e)
	before := e.Items()
	calls := f.callCount()

	if err := e.BeginEdit("1"); err != nil {
		t.Fatal(err)
	}
	s, ok := e.Editing()
	if !ok || s.TargetID != "1" || s.Draft != "buy milk" {
		t.Fatalf("expected draft seeded from item, got %+v", s)
	}
	if err := e.SetDraft("buy oat milk"); err != nil {
		t.Fatal(err)
	}

	e.Cancel()
	if s, ok := e.Editing(); ok || s != (EditSession{}) {
		t.Fatalf("expected idle with no residual draft, got %+v", s)
	}
	if got := e.Items(); got[0] != before[0] {
		t.Fatalf("cancel must not change the list: %+v", got)
	}
	if f.callCount() != calls {
		t.Fatal("cancel must not reach the gateway")
	}
}

func TestCommit_SuccessReturnsToIdle(t *testing.T) {
	f := newFakeGateway(model.Item{ID: "1", Text: "buy milk"})
	e, rec := setupTestEngine(t, f)
	mustLoad(t, e)

	if err := e.BeginEdit("1"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetDraft("buy bread"); err != nil {
		t.Fatal(err)
	}
	if err := e.Commit(context.Background()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, ok := e.Editing(); ok {
		t.Fatal("expected idle after successful commit")
	}
	if it, _ := e.Item("1"); it.Text != "buy bread" {
		t.Fatalf("expected renamed item, got %+v", it)
	}
	if last, _ := rec.Last(); last.Message != "Todo updated" {
		t.Fatalf("unexpected notification %+v", last)
	}
}

func TestCommit_RemoteFailureKeepsDraft(t *testing.T) {
	f := newFakeGateway(model.Item{ID: "1", Text: "buy milk"})
	e, _ := setupTestEngine(t, f)
	mustLoad(t, e)

	if err := e.BeginEdit("1"); err != nil {
		t.Fatal(err)
	}
	_ = e.SetDraft("buy bread")
	f.setFail(OpUpdate, errBoom)

	if err := e.Commit(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("expected remote failure, got %v", err)
	}
	s, ok := e.Editing()
	if !ok || s.Draft != "buy bread" {
		t.Fatalf("expected edit kept open with draft, got %+v %v", s, ok)
	}
	if it, _ := e.Item("1"); it.Text != "buy milk" {
		t.Fatalf("item must be untouched, got %+v", it)
	}

	// retry succeeds
	f.setFail(OpUpdate, nil)
	if err := e.Commit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, ok := e.Editing(); ok {
		t.Fatal("expected idle after retry")
	}
}

func TestBeginEdit_ReplacesPreviousSession(t *testing.T) {
	f := newFakeGateway(model.Item{ID: "1", Text: "a"}, model.Item{ID: "2", Text: "b"})
	e, _ := setupTestEngine(t, f)
	mustLoad(t, e)

	_ = e.BeginEdit("1")
	_ = e.SetDraft("half typed")
	if err := e.BeginEdit("2"); err != nil {
		t.Fatal(err)
	}
	s, _ := e.Editing()
	if s.TargetID != "2" || s.Draft != "b" {
		t.Fatalf("expected new session on item 2, got %+v", s)
	}
	if it, _ := e.Item("1"); it.Text != "a" {
		t.Fatal("abandoned draft must not be applied")
	}
}

func TestEdit_IdleErrors(t *testing.T) {
	f := newFakeGateway()
	e, _ := setupTestEngine(t, f)

	if err := e.SetDraft("x"); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("SetDraft: expected ErrNotEditing, got %v", err)
	}
	if err := e.Commit(context.Background()); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("Commit: expected ErrNotEditing, got %v", err)
	}
	e.Cancel() // no-op while idle
}

func TestCommit_KeepsNewerSession(t *testing.T) {
	f := newFakeGateway(model.Item{ID: "1", Text: "a"}, model.Item{ID: "2", Text: "b"})
	e, _ := setupTestEngine(t, f)
	mustLoad(t, e)
	drain(f)

	gate := make(chan struct{})
	f.setHold("1", gate)
	_ = e.BeginEdit("1")
	_ = e.SetDraft("aa")

	done := make(chan error, 1)
	go func() { done <- e.Commit(context.Background()) }()
	waitEntered(t, f, "1")

	if err := e.BeginEdit("2"); err != nil {
		t.Fatal(err)
	}
	close(gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	s, ok := e.Editing()
	if !ok || s.TargetID != "2" {
		t.Fatalf("commit of item 1 must not close the edit of item 2, got %+v %v", s, ok)
	}
}
