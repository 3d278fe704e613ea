package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

func newFile(t *testing.T) File {
	t.Helper()
	t.Setenv("TADA_TOKEN", "")
	t.Setenv("TADA_USERNAME", "")
	return File{Dir: t.TempDir()}
}

func TestLoad_NotLoggedIn(t *testing.T) {
	f := newFile(t)

	c, err := f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Valid() {
		t.Fatalf("expected no credential, got %+v", c)
	}
}

func TestSaveLoadClear(t *testing.T) {
	f := newFile(t)

	if err := f.Save(model.Credential{Token: "Bearer abc123", Username: "ana"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(f.Dir, credFileName))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	c, err := f.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Token != "abc123" {
		t.Errorf("expected bearer prefix stripped, got %q", c.Token)
	}
	if c.Username != "ana" || c.Source != "file" {
		t.Errorf("unexpected credential %+v", c)
	}

	if err := f.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := f.Clear(); err != nil {
		t.Fatalf("second Clear should be a no-op: %v", err)
	}
	if f.Credential().Valid() {
		t.Error("expected logged out after Clear")
	}
}

func TestSave_RejectsEmptyToken(t *testing.T) {
	f := newFile(t)
	if err := f.Save(model.Credential{Token: "  "}); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	f := newFile(t)
	if err := f.Save(model.Credential{Token: "from-file"}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TADA_TOKEN", "bearer from-env")
	t.Setenv("TADA_USERNAME", "env-user")

	c := f.Credential()
	if c.Token != "from-env" || c.Source != "env" || c.Username != "env-user" {
		t.Fatalf("expected env credential, got %+v", c)
	}
}

func TestStatic(t *testing.T) {
	var src Source = Static{Token: "t", Username: "u"}
	if got := src.Credential(); got.Token != "t" || got.Username != "u" {
		t.Fatalf("unexpected credential %+v", got)
	}
}
