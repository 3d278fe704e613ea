package ui

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0, 0, 10); !strings.HasSuffix(got, "  0%") {
		t.Errorf("empty list: %q", got)
	}
	if got := ProgressBar(1, 2, 10); !strings.HasPrefix(got, "█████░░░░░") || !strings.HasSuffix(got, " 50%") {
		t.Errorf("half done: %q", got)
	}
	if got := ProgressBar(3, 3, 2); strings.Count(got, "█") != 5 {
		t.Errorf("width must be clamped to 5: %q", got)
	}
}

func TestItemLines(t *testing.T) {
	p := NewPalette(false)
	items := []model.Item{{ID: "a1", Text: "buy milk"}, {ID: "b2", Text: "walk dog", Completed: true}}

	lines := p.ItemLines(items)
	if len(lines) != 2 || !strings.Contains(lines[0], "buy milk") || !strings.Contains(lines[1], "b2") {
		t.Fatalf("unexpected lines %q", lines)
	}
	if got := p.ItemLines(nil); len(got) != 1 || !strings.Contains(got[0], "no items") {
		t.Fatalf("unexpected empty rendering %q", got)
	}

	grouped := strings.Join(p.GroupedLines(items), "\n")
	if strings.Index(grouped, "Pending") > strings.Index(grouped, "Done") {
		t.Fatalf("pending group must come first: %q", grouped)
	}
	if !strings.Contains(grouped, " 2.") {
		t.Fatalf("grouped lines must keep list numbering: %q", grouped)
	}
}

func TestPaletteModes(t *testing.T) {
	if NewPalette(true).ModeLabel() != "Light Mode" || NewPalette(false).ModeLabel() != "Dark Mode" {
		t.Fatal("mode label should name the other mode")
	}
	var buf bytes.Buffer
	NewPalette(true).OK(&buf, "saved")
	if !strings.Contains(buf.String(), "saved") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestItemLine_ClipsLongNonASCIIText(t *testing.T) {
	p := NewPalette(false)
	text := strings.Repeat("a", 76) + "ééééé"

	line := p.ItemLine(1, model.Item{ID: "x", Text: text})
	if !utf8.ValidString(line) {
		t.Fatalf("line is not valid UTF-8: %q", line)
	}
	if !strings.Contains(line, strings.Repeat("a", 76)+"é...") {
		t.Fatalf("expected text clipped to 80 cells, got %q", line)
	}

	clipped := Clip("日本語のタスクをたくさん書く", 10)
	if !utf8.ValidString(clipped) || ansi.StringWidth(clipped) > 10 || !strings.HasSuffix(clipped, "...") {
		t.Fatalf("unexpected wide clip %q", clipped)
	}
	if Clip("short", 80) != "short" || Clip("anything", 0) != "anything" {
		t.Fatal("short text and unbounded width must be left alone")
	}
}
