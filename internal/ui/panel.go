package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jdsantisteban/todo-frontend/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Clip shortens text to width terminal cells, ending in "...". A
// non-positive width leaves text alone.
func Clip(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "...")
}

// Panel frames lines with the palette border.
func (p Palette) Panel(lines []string) string {
	return p.Border.Render(strings.Join(lines, "\n"))
}

// Header is the "Todos ✔ 1 • 2 Total 3" line.
func (p Palette) Header(who string, done, pending int) string {
	h := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		p.Title.Render("Todos"),
		p.Success.Render(p.SymDone), done,
		p.Pending.Render(p.SymPending), pending,
		p.Accent.Render("Total"), done+pending,
	)
	if who != "" {
		h += p.Muted.Render("   Hi, " + who)
	}
	return h
}

// ItemLine renders one numbered item.
func (p Palette) ItemLine(n int, it model.Item) string {
	box := p.Muted.Render(p.BoxUnchecked)
	text := Clip(it.Text, 80)
	if it.Completed {
		box = p.Success.Render(p.BoxChecked)
		text = p.Done.Render(text)
	}
	return fmt.Sprintf("%s %s %s %s", p.Muted.Render(fmt.Sprintf("%2d.", n)), box, text, p.Muted.Render(it.ID))
}

// ItemLines renders a flat list, numbering from 1.
func (p Palette) ItemLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{p.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, p.ItemLine(i+1, it))
	}
	return out
}

// GroupedLines renders pending then done, keeping list numbering.
func (p Palette) GroupedLines(items []model.Item) []string {
	var pend, done []string
	for i, it := range items {
		if it.Completed {
			done = append(done, p.ItemLine(i+1, it))
		} else {
			pend = append(pend, p.ItemLine(i+1, it))
		}
	}
	none := []string{p.Muted.Render("(none)")}
	if len(pend) == 0 {
		pend = none
	}
	if len(done) == 0 {
		done = none
	}
	lines := []string{p.Accent.Render("Pending")}
	lines = append(lines, pend...)
	lines = append(lines, "", p.Accent.Render("Done"))
	return append(lines, done...)
}
