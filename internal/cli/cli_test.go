package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jdsantisteban/todo-frontend/internal/config"
	"github.com/jdsantisteban/todo-frontend/internal/devserver"
	"github.com/jdsantisteban/todo-frontend/internal/model"
	"github.com/jdsantisteban/todo-frontend/internal/ui"
)

// setupTestEnv points the client at a fresh devserver and an isolated
// state directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	s, err := devserver.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	srv := httptest.NewServer(devserver.New(s, nil).Routes())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("TADA_CONFIG_DIR", dir)
	t.Setenv("TADA_API_URL", srv.URL+"/api")
	t.Setenv("TADA_TOKEN", "")
	t.Setenv("TADA_PASSWORD", "")
	t.Setenv("TADA_DARK_MODE", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	app := &App{}
	cmd := newRootCmd(app)
	var out, errb bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errb)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	if err != nil {
		app.report(&errb, err)
	}
	return out.String(), errb.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("todo %v failed: %v\nstderr:\n%s\nstdout:\n%s", args, err, errOut, out)
	}
	return out
}

func loginAs(t *testing.T, name string) {
	t.Helper()
	email := name + "@example.com"
	mustRun(t, "register", "--username", name, "--email", email, "--password", "pw")
	mustRun(t, "login", "--email", email, "--password", "pw")
}

func TestNotLoggedIn_ExitsTwo(t *testing.T) {
	setupTestEnv(t)

	for _, args := range [][]string{{"ls"}, {"add", "milk"}, {"whoami"}, {"ui"}} {
		_, errOut, err := runCLI(t, args...)
		if ExitCode(err) != 2 {
			t.Errorf("todo %v: expected exit 2, got %d (%v)", args, ExitCode(err), err)
		}
		if !strings.Contains(errOut, "not logged in. Run: todo login") {
			t.Errorf("todo %v: expected login hint, got %q", args, errOut)
		}
	}
}

func TestLoginStoresCredential(t *testing.T) {
	dir := setupTestEnv(t)
	loginAs(t, "ana")

	b, err := os.ReadFile(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatalf("expected credentials file: %v", err)
	}
	if !strings.Contains(string(b), `"username": "ana"`) {
		t.Errorf("unexpected credentials file %s", b)
	}
	if out := mustRun(t, "whoami"); !strings.HasPrefix(out, "ana\n") {
		t.Errorf("whoami printed %q", out)
	}

	mustRun(t, "logout")
	if _, _, err := runCLI(t, "whoami"); ExitCode(err) != 2 {
		t.Errorf("expected whoami to fail after logout, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	setupTestEnv(t)
	mustRun(t, "register", "--username", "ana", "--email", "ana@example.com", "--password", "pw")

	_, errOut, err := runCLI(t, "login", "--email", "ana@example.com", "--password", "nope")
	if ExitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %d (%v)", ExitCode(err), err)
	}
	if !strings.Contains(errOut, "invalid email or password") {
		t.Errorf("expected server message, got %q", errOut)
	}
}

func TestTodoLifecycle(t *testing.T) {
	setupTestEnv(t)
	loginAs(t, "ana")

	if out := mustRun(t, "add", "Buy", "milk"); !strings.Contains(out, "Todo added") {
		t.Errorf("add printed %q", out)
	}
	mustRun(t, "add", "Walk dog")

	out := mustRun(t, "ls")
	// each item is rendered exactly once and nothing else repeats its text
	if strings.Count(out, "Buy milk") != 1 || strings.Count(out, "Walk dog") != 1 {
		t.Fatalf("ls should list each item once:\n%s", out)
	}
	if strings.Index(out, "Buy milk") > strings.Index(out, "Walk dog") {
		t.Errorf("ls lost creation order:\n%s", out)
	}

	if out := mustRun(t, "done", "1"); !strings.Contains(out, "Todo marked as done") {
		t.Errorf("done printed %q", out)
	}
	if out := mustRun(t, "done", "1"); !strings.Contains(out, "Todo marked as not done") {
		t.Errorf("second done printed %q", out)
	}
	if out := mustRun(t, "rename", "2", "Walk", "the", "dog"); !strings.Contains(out, "Todo updated") {
		t.Errorf("rename printed %q", out)
	}
	if out := mustRun(t, "rm", "1"); !strings.Contains(out, "Todo deleted") {
		t.Errorf("rm printed %q", out)
	}

	out = mustRun(t, "ls", "--group")
	if strings.Contains(out, "Buy milk") || strings.Count(out, "Walk the dog") != 1 {
		t.Fatalf("unexpected list after edits:\n%s", out)
	}
	if !strings.Contains(out, "Pending") || !strings.Contains(out, "Done") {
		t.Errorf("expected grouped sections:\n%s", out)
	}
}

func TestRefByID(t *testing.T) {
	setupTestEnv(t)
	loginAs(t, "ana")
	mustRun(t, "add", "milk")

	// ls prints the id next to each item
	out := mustRun(t, "ls")
	var id string
	for _, f := range strings.Fields(out) {
		if len(f) == 36 && strings.Count(f, "-") == 4 {
			id = f
		}
	}
	if id == "" {
		t.Fatalf("no id in ls output:\n%s", out)
	}
	if out := mustRun(t, "done", id); !strings.Contains(out, "Todo marked as done") {
		t.Errorf("done by id printed %q", out)
	}
}

func TestBadRefs_ExitTwo(t *testing.T) {
	setupTestEnv(t)
	loginAs(t, "ana")
	mustRun(t, "add", "milk")

	_, errOut, err := runCLI(t, "done", "5")
	if ExitCode(err) != 2 || !strings.Contains(errOut, "index out of range: have 1, got 5") {
		t.Errorf("expected index error, got %d %q", ExitCode(err), errOut)
	}
	_, errOut, err = runCLI(t, "rm", "nope")
	if ExitCode(err) != 2 || !strings.Contains(errOut, "no todo with id nope") {
		t.Errorf("expected id error, got %d %q", ExitCode(err), errOut)
	}
	if _, _, err := runCLI(t, "done"); ExitCode(err) != 2 {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestAdd_BlankIsValidationError(t *testing.T) {
	setupTestEnv(t)
	loginAs(t, "ana")

	_, errOut, err := runCLI(t, "add", "   ")
	if ExitCode(err) != 2 {
		t.Fatalf("expected exit 2, got %d (%v)", ExitCode(err), err)
	}
	if strings.Count(errOut, "Todo cannot be empty") != 1 {
		t.Errorf("expected the message exactly once, got %q", errOut)
	}
}

func TestRemoteFailure_ExitsOne(t *testing.T) {
	setupTestEnv(t)
	loginAs(t, "ana")
	// a token the server does not know
	t.Setenv("TADA_TOKEN", "stale")

	_, errOut, err := runCLI(t, "ls")
	if ExitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %d (%v)", ExitCode(err), err)
	}
	if !strings.Contains(errOut, "Failed to fetch todos") || !strings.Contains(errOut, "session may have expired") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestTheme(t *testing.T) {
	setupTestEnv(t)

	if out := mustRun(t, "theme"); strings.TrimSpace(out) != "light" {
		t.Errorf("default theme = %q", out)
	}
	mustRun(t, "theme", "toggle")
	if out := mustRun(t, "theme"); strings.TrimSpace(out) != "dark" {
		t.Errorf("after toggle theme = %q", out)
	}
	mustRun(t, "theme", "light")
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DarkMode {
		t.Error("expected light mode persisted")
	}
	if _, _, err := runCLI(t, "theme", "purple"); err == nil {
		t.Error("expected invalid theme to fail")
	}
}

func TestThemeToggle_FollowsEnvOverride(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("TADA_DARK_MODE", "true")

	if out := mustRun(t, "theme"); strings.TrimSpace(out) != "dark" {
		t.Fatalf("expected env to force dark, got %q", out)
	}
	if out := mustRun(t, "theme", "toggle"); !strings.Contains(out, "theme set to light") {
		t.Fatalf("toggle from dark must give light, got %q", out)
	}
	t.Setenv("TADA_DARK_MODE", "")
	if out := mustRun(t, "theme"); strings.TrimSpace(out) != "light" {
		t.Errorf("expected light persisted, got %q", out)
	}
}

func TestNotifications_RecordedInLog(t *testing.T) {
	dir := setupTestEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	loginAs(t, "ana")
	mustRun(t, "add", "milk")

	b, err := os.ReadFile(filepath.Join(dir, "tada.log"))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(b), `message="Todo added"`) {
		t.Errorf("expected the notification in the log:\n%s", b)
	}
}

func TestResolveRef(t *testing.T) {
	items := []model.Item{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}}
	if it, err := resolveRef(items, "2"); err != nil || it.ID != "b" {
		t.Errorf("index ref = %+v, %v", it, err)
	}
	if it, err := resolveRef(items, " a "); err != nil || it.ID != "a" {
		t.Errorf("id ref = %+v, %v", it, err)
	}
	if _, err := resolveRef(items, "0"); ExitCode(err) != 2 {
		t.Errorf("expected usage error for 0, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil should be 0")
	}
	if ExitCode(errNotLoggedIn) != 2 {
		t.Error("not logged in should be 2")
	}
	if ExitCode(reported(os.ErrPermission)) != 1 {
		t.Error("other errors should be 1")
	}
}

func TestReport_UsesConfiguredPalette(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	err := errUsage("usage: todo done <index|id>")
	render := func(dark bool) string {
		var buf bytes.Buffer
		app := &App{cfg: &config.Config{DarkMode: dark}}
		app.report(&buf, err)
		return buf.String()
	}

	var want bytes.Buffer
	ui.NewPalette(true).Fail(&want, err.Error())
	got := render(true)
	if !strings.HasPrefix(got, want.String()) {
		t.Fatalf("expected dark palette output %q, got %q", want.String(), got)
	}
	if got == render(false) {
		t.Fatal("dark and light reports must differ")
	}
}
