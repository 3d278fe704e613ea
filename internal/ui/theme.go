package ui

import "github.com/charmbracelet/lipgloss"

// Palette bundles the styles and glyphs every renderer pulls from.
type Palette struct {
	Dark bool

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help, Border, Toast           lipgloss.Style

	BoxChecked, BoxUnchecked string
	SymDone, SymPending      string
}

// NewPalette returns the light or dark palette.
func NewPalette(dark bool) Palette {
	p := Palette{
		Dark:         dark,
		BoxChecked:   "☑",
		BoxUnchecked: "☐",
		SymDone:      "✔",
		SymPending:   "•",
	}
	if dark {
		p.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
		p.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		p.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
		p.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
		p.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
		p.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
		p.Selected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238"))
		p.Done = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)
		p.Help = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		p.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1)
		p.Toast = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
		return p
	}
	p.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("27"))
	p.Muted = lipgloss.NewStyle().Faint(true)
	p.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	p.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	p.Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	p.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	p.Selected = lipgloss.NewStyle().Bold(true).Reverse(true)
	p.Done = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	p.Help = lipgloss.NewStyle().Faint(true)
	p.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	p.Toast = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("254")).Padding(0, 1)
	return p
}

// ModeLabel is the label of the button that switches to the other mode.
func (p Palette) ModeLabel() string {
	if p.Dark {
		return "Light Mode"
	}
	return "Dark Mode"
}
