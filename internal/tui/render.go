package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tOgg1/scrollback/internal/historyview"
)

const dateLayout = "2 January 2006"

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderBody(), m.renderFooter())
}

func (m *Model) renderHeader() string {
	title := m.styles.Header.Render("scrollback")
	info := fmt.Sprintf("%d messages", m.history.Len())
	if st := m.engine.SelectionState(); st.Count > 0 {
		info += fmt.Sprintf(" · %d selected", st.Count)
	}
	if m.engine.ChooseMode() {
		info += " · choose"
	}
	return fitWidth(title+"  "+m.styles.Muted.Render(info), m.width)
}

func (m *Model) renderFooter() string {
	if m.status != "" {
		return fitWidth(m.styles.Footer.Render(m.status), m.width)
	}
	return fitWidth(m.help.ShortHelpView(m.keys.ShortHelp()), m.width)
}

// renderBody paints the engine frame: items into the content column,
// userpics or selection checks into the gutter, floating dates on top.
func (m *Model) renderBody() string {
	height := m.bodyHeight()
	if height == 0 {
		return ""
	}
	frame := m.engine.Frame()
	cw := max(m.width-gutterWidth, 1)
	content := make([]string, height)
	gutter := make([]string, height)
	for i := range content {
		content[i] = strings.Repeat(" ", cw)
		gutter[i] = strings.Repeat(" ", gutterWidth)
	}
	row := func(y int) (int, bool) {
		r := y - frame.Range.Top
		return r, r >= 0 && r < height
	}

	p := paint{styles: m.styles, timeFormat: m.cfg.TUI.TimeFormat}
	for _, fi := range frame.Items {
		r, ok := fi.Item.View.(renderer)
		if !ok || fi.Bottom <= fi.Top {
			continue
		}
		p.sel, p.selected = fi.Selection, fi.Selected
		lines := r.Render(p)
		for i := 0; i < len(lines) && fi.Top+i < fi.Bottom; i++ {
			if y, ok := row(fi.Top + i); ok {
				content[y] = lines[i]
			}
		}
		if frame.InSelectionMode && !fi.Item.IsService() {
			if y, ok := row(fi.Top); ok {
				gutter[y] = m.check(fi)
			}
		}
	}

	if !frame.InSelectionMode && m.cfg.TUI.ShowUserpics {
		for _, u := range frame.Userpics {
			if y, ok := row(u.Top); ok {
				initial := []rune(strings.ToUpper(u.Item.Author + "?"))[0]
				gutter[y] = m.styles.Authors.Badge(u.Item.Author).Render(" "+string(initial)) + " "
			}
		}
	}

	if m.cfg.TUI.ShowDates {
		for _, d := range frame.Dates {
			if y, ok := row(d.Top); ok {
				pill := m.styles.DatePill.Render(d.Date.Local().Format(dateLayout))
				content[y] = overlayRight(content[y], pill, cw)
			}
		}
	}

	rows := make([]string, height)
	for i := range rows {
		rows[i] = gutter[i] + content[i]
	}
	return strings.Join(rows, "\n")
}

func (m *Model) check(fi historyview.FrameItem) string {
	if fi.FullySelected() {
		return m.styles.Check.Render("◉") + "  "
	}
	return m.styles.Muted.Render("○") + "  "
}

// overlayRight draws pill over the right end of a width-cell line.
func overlayRight(line, pill string, width int) string {
	pw := ansi.StringWidth(pill)
	if pw >= width {
		return ansi.Truncate(pill, width, "")
	}
	left := ansi.Truncate(line, width-pw, "")
	return left + strings.Repeat(" ", width-pw-ansi.StringWidth(left)) + pill
}

// fitWidth truncates or pads s to exactly width cells.
func fitWidth(s string, width int) string {
	w := ansi.StringWidth(s)
	switch {
	case w > width:
		return ansi.Truncate(s, width, "")
	case w < width:
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
