// Package styles holds the color themes and lipgloss styles of the history
// view.
package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
}

// MessageColors defines colors for message parts.
type MessageColors struct {
	Body    string
	Time    string
	Link    string
	Service string
	Photo   string
}

// SelectionColors defines how selected content is painted.
type SelectionColors struct {
	TextBackground string
	TextForeground string
	ItemBackground string
	Check          string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header   string
	Footer   string
	DatePill string
	DateText string
}

// Theme is a named set of color tokens.
type Theme struct {
	Name          string
	AuthorPalette []string // ANSI-256 codes for author identity colors

	Base      BaseColors
	Message   MessageColors
	Selection SelectionColors
	Chrome    ChromeColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default": DefaultTheme,
	"dark":    DarkTheme,
	"light":   LightTheme,
}

// ThemeByName returns the named theme, DefaultTheme when unknown.
func ThemeByName(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

func color(code string) lipgloss.Color {
	return lipgloss.Color(code)
}
