package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the palette of the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header, tabs and status bar
	SurfaceAlt string // Column header row

	// Table colors
	SelectionBg   string // Cursor row background
	SelectionText string
	CursorBg      string // Cursor cell background
	DirtyBg       string // Cells with unsaved edits

	Border string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Chrome
	Header      lipgloss.Style
	Footer      lipgloss.Style
	Logo        lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Modal       lipgloss.Style

	// Table
	ColumnHeader lipgloss.Style
	Cell         lipgloss.Style
	LockedCell   lipgloss.Style
	SelectedRow  lipgloss.Style
	CursorCell   lipgloss.Style
	DirtyCell    lipgloss.Style
	ActionCell   lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Logo: fg(t.Warning).Bold(true),
		TabActive: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Accent)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(1, 2),

		ColumnHeader: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)).
			Bold(true),
		Cell:       fg(t.Text),
		LockedCell: fg(t.Muted),
		SelectedRow: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
		CursorCell: lipgloss.NewStyle().
			Background(lipgloss.Color(t.CursorBg)).
			Foreground(lipgloss.Color(t.SelectionText)).
			Bold(true),
		DirtyCell: lipgloss.NewStyle().
			Background(lipgloss.Color(t.DirtyBg)).
			Foreground(lipgloss.Color(t.Warning)),
		ActionCell: fg(t.Danger),
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Slate":    slateTheme(),
	"Paper":    paperTheme(),
}

var themeOrder = []string{"Nightfox", "Slate", "Paper"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1
		CursorBg:      "#39506d", // bg4
		DirtyBg:       "#3a3226",

		Border: "#39506d",

		Text:    "#cdcecf",
		Muted:   "#738091",
		Faint:   "#71839b",
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",
		Info:    "#63cdcf",
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#1e3a5f",
		SelectionText: "#f8fafc", // slate-50
		CursorBg:      "#0284c7", // sky-600
		DirtyBg:       "#422006", // amber-950

		Border: "#334155", // slate-700

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500
	}
}

func paperTheme() Theme {
	// Light palette for bright terminals.
	return Theme{
		Name: "Paper",

		Background: "#fafaf9", // stone-50
		Surface:    "#e7e5e4", // stone-200
		SurfaceAlt: "#d6d3d1", // stone-300

		SelectionBg:   "#dbeafe", // blue-100
		SelectionText: "#1c1917", // stone-900
		CursorBg:      "#93c5fd", // blue-300
		DirtyBg:       "#fef3c7", // amber-100

		Border: "#a8a29e", // stone-400

		Text:    "#1c1917",
		Muted:   "#57534e", // stone-600
		Faint:   "#78716c", // stone-500
		Accent:  "#1d4ed8", // blue-700
		Success: "#15803d", // green-700
		Warning: "#b45309", // amber-700
		Danger:  "#b91c1c", // red-700
		Info:    "#0e7490", // cyan-700
	}
}
