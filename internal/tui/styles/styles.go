package styles

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Theme   Theme
	Authors *AuthorColorMapper

	Body         lipgloss.Style
	Time         lipgloss.Style
	Link         lipgloss.Style
	Service      lipgloss.Style
	Photo        lipgloss.Style
	TextSelected lipgloss.Style
	ItemSelected lipgloss.Style
	Check        lipgloss.Style
	Muted        lipgloss.Style
	DatePill     lipgloss.Style
	Header       lipgloss.Style
	Footer       lipgloss.Style
}

// New builds the styles of theme.
func New(theme Theme) *Styles {
	return &Styles{
		Theme:        theme,
		Authors:      NewAuthorColorMapper(theme.AuthorPalette),
		Body:         lipgloss.NewStyle().Foreground(color(theme.Message.Body)),
		Time:         lipgloss.NewStyle().Foreground(color(theme.Message.Time)),
		Link:         lipgloss.NewStyle().Foreground(color(theme.Message.Link)).Underline(true),
		Service:      lipgloss.NewStyle().Foreground(color(theme.Message.Service)).Italic(true),
		Photo:        lipgloss.NewStyle().Foreground(color(theme.Message.Photo)),
		TextSelected: lipgloss.NewStyle().Foreground(color(theme.Selection.TextForeground)).Background(color(theme.Selection.TextBackground)),
		ItemSelected: lipgloss.NewStyle().Background(color(theme.Selection.ItemBackground)),
		Check:        lipgloss.NewStyle().Foreground(color(theme.Selection.Check)).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(color(theme.Base.Muted)),
		DatePill:     lipgloss.NewStyle().Foreground(color(theme.Chrome.DateText)).Background(color(theme.Chrome.DatePill)).Padding(0, 1),
		Header:       lipgloss.NewStyle().Foreground(color(theme.Chrome.Header)).Bold(true),
		Footer:       lipgloss.NewStyle().Foreground(color(theme.Chrome.Footer)),
	}
}
