package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/tOgg1/scrollback/internal/models"
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/tui/styles"
)

const (
	// gutterWidth is reserved left of every message for the userpic badge
	// or the selection check.
	gutterWidth = 3
	photoRows   = 2
	maxSymbol   = int(^uint16(0)) - 1
)

// span is a wrapped line as rune offsets [start, end) into the item text.
type span struct {
	start int
	end   int
}

// layoutText wraps text to width and maps every wrapped line back onto the
// source runes. Whitespace eaten at a break belongs to no line.
func layoutText(text []rune, width int) []span {
	width = max(width, 1)
	var lines []span
	base := 0
	for _, par := range strings.Split(string(text), "\n") {
		src := []rune(par)
		wrapped := wrap.String(wordwrap.String(par, width), width)
		pos := 0
		for _, w := range strings.Split(wrapped, "\n") {
			wr := []rune(w)
			for pos < len(src) && unicode.IsSpace(src[pos]) && (len(wr) == 0 || src[pos] != wr[0]) {
				pos++
			}
			start := pos
			for _, r := range wr {
				if pos < len(src) && src[pos] == r {
					pos++
				}
			}
			lines = append(lines, span{start: base + start, end: base + pos})
		}
		base += len(src) + 1
	}
	return lines
}

// columnToSymbol finds the rune under cell x. inside is false left of the
// first rune and right of the last one.
func columnToSymbol(runes []rune, x int) (int, bool) {
	if x < 0 {
		return 0, false
	}
	acc := 0
	for i, r := range runes {
		w := runewidth.RuneWidth(r)
		if x < acc+w {
			return i, true
		}
		acc += w
	}
	return len(runes), false
}

func clampSymbol(n int) uint16 {
	return uint16(min(max(n, 0), maxSymbol))
}

// messageView lays out one stored message for the terminal. It answers the
// engine in cells: one column per px horizontally, one row per px
// vertically.
type messageView struct {
	msg  *models.Message
	text []rune
	// linkStart is the rune offset of the link line, -1 without a link.
	linkStart int
	// link is handed out by every hit on the link line; the pointer
	// machine compares links by identity.
	link *timeline.Link

	width int
	lines []span
}

func newMessageView(msg *models.Message) *messageView {
	v := &messageView{msg: msg, linkStart: -1}
	text := msg.Body
	if msg.Link != "" {
		if text != "" {
			text += "\n"
		}
		v.linkStart = len([]rune(text))
		v.link = &timeline.Link{URL: msg.Link}
		text += msg.Link
	}
	v.text = []rune(text)
	return v
}

func (v *messageView) service() bool { return v.msg.IsService() }

// contentWidth is the width available to text right of the gutter.
func (v *messageView) contentWidth() int {
	return max(v.width-gutterWidth, 1)
}

// textTop is the row of the first text line.
func (v *messageView) textTop() int {
	if v.service() {
		return 0
	}
	return 1
}

func (v *messageView) ResizeGetHeight(width int) int {
	v.width = width
	v.lines = nil
	if len(v.text) > 0 || v.service() {
		v.lines = layoutText(v.text, v.contentWidth())
	}
	return v.textTop() + len(v.lines)
}

// lineIndent is the column where line i starts.
func (v *messageView) lineIndent(i int) int {
	if !v.service() {
		return gutterWidth
	}
	ln := v.lines[i]
	w := runewidth.StringWidth(string(v.text[ln.start:ln.end]))
	return gutterWidth + max((v.contentWidth()-w)/2, 0)
}

func (v *messageView) TextState(p timeline.Point, _ timeline.StateRequest) timeline.TextState {
	var st timeline.TextState
	row := p.Y - v.textTop()
	switch {
	case len(v.lines) == 0 || row < 0:
		return st
	case row >= len(v.lines):
		st.Symbol = clampSymbol(len(v.text))
		return st
	}
	ln := v.lines[row]
	symbol, inside := columnToSymbol(v.text[ln.start:ln.end], p.X-v.lineIndent(row))
	st.Symbol = clampSymbol(ln.start + symbol)
	if !inside {
		if p.X >= v.lineIndent(row) {
			st.Symbol = clampSymbol(ln.end)
		}
		return st
	}
	st.Cursor = timeline.CursorText
	if v.linkStart >= 0 && ln.start >= v.linkStart {
		st.Cursor = timeline.CursorLink
		st.Link = v.link
	}
	return st
}

func (v *messageView) Text() string { return string(v.text) }

func (v *messageView) SelectedText(sel timeline.TextSelection) string {
	if sel.IsFull() {
		return string(v.text)
	}
	from := min(int(sel.From), len(v.text))
	to := min(int(sel.To), len(v.text))
	if from >= to {
		return ""
	}
	return string(v.text[from:to])
}

func (v *messageView) AdjustSelection(sel timeline.TextSelection, kind timeline.SelectType) timeline.TextSelection {
	from := min(int(sel.From), len(v.text))
	to := min(int(sel.To), len(v.text))
	var stop func(r rune) bool
	switch kind {
	case timeline.SelectWords:
		stop = unicode.IsSpace
	case timeline.SelectParagraphs:
		stop = func(r rune) bool { return r == '\n' }
	default:
		return sel
	}
	for from > 0 && !stop(v.text[from-1]) {
		from--
	}
	for to < len(v.text) && !stop(v.text[to]) {
		to++
	}
	return timeline.TextSelection{From: clampSymbol(from), To: clampSymbol(to)}
}

// paint is the input of a render pass.
type paint struct {
	styles     *styles.Styles
	sel        timeline.TextSelection
	selected   bool
	timeFormat string
}

// Render draws the item into exactly Height rows of contentWidth cells,
// gutter excluded.
func (v *messageView) Render(p paint) []string {
	var rows []string
	if !v.service() {
		rows = append(rows, v.renderHeader(p))
	}
	rows = append(rows, v.renderText(p)...)
	return v.finish(rows, p)
}

func (v *messageView) renderHeader(p paint) string {
	st := p.styles
	header := st.Authors.Foreground(v.msg.Author).Render(v.msg.Author) + "  " +
		st.Time.Render(v.msg.CreatedAt.Local().Format(p.timeFormat))
	if v.msg.History == models.HistoryMigrated {
		header += st.Muted.Render("  (migrated)")
	}
	return header
}

func (v *messageView) renderText(p paint) []string {
	st := p.styles
	base := st.Body
	if v.service() {
		base = st.Service
	}
	rows := make([]string, 0, len(v.lines))
	for i, ln := range v.lines {
		style := base
		if v.linkStart >= 0 && ln.start >= v.linkStart {
			style = st.Link
		}
		row := v.renderSpan(ln, style, p)
		if pad := v.lineIndent(i) - gutterWidth; pad > 0 {
			row = strings.Repeat(" ", pad) + row
		}
		rows = append(rows, row)
	}
	return rows
}

// renderSpan highlights the part of ln covered by a partial selection.
func (v *messageView) renderSpan(ln span, style lipgloss.Style, p paint) string {
	from, to := ln.start, ln.start
	if p.selected && !p.sel.IsFull() {
		from = min(max(int(p.sel.From), ln.start), ln.end)
		to = min(max(int(p.sel.To), ln.start), ln.end)
	}
	var b strings.Builder
	if pre := v.text[ln.start:from]; len(pre) > 0 {
		b.WriteString(style.Render(string(pre)))
	}
	if mid := v.text[from:to]; len(mid) > 0 {
		b.WriteString(p.styles.TextSelected.Render(string(mid)))
	}
	if post := v.text[to:ln.end]; len(post) > 0 {
		b.WriteString(style.Render(string(post)))
	}
	return b.String()
}

// finish pads or truncates every row to the content width and paints the
// whole-item selection background.
func (v *messageView) finish(rows []string, p paint) []string {
	cw := v.contentWidth()
	for i, row := range rows {
		row = fitWidth(row, cw)
		if p.selected && p.sel.IsFull() {
			row = p.styles.ItemSelected.Render(row)
		}
		rows[i] = row
	}
	return rows
}

// photoView is a message with a picture above its caption. Albums draw as
// one photoView on their leader. The rendered preview is the heavy part.
type photoView struct {
	*messageView
	album   int
	preview []string
	loads   int
}

func newPhotoView(msg *models.Message, album int) *photoView {
	return &photoView{messageView: newMessageView(msg), album: album}
}

func (v *photoView) textTop() int { return 1 + photoRows }

func (v *photoView) ResizeGetHeight(width int) int {
	v.messageView.ResizeGetHeight(width)
	v.preview = nil
	return v.textTop() + len(v.lines)
}

func (v *photoView) TextState(p timeline.Point, req timeline.StateRequest) timeline.TextState {
	return v.messageView.TextState(timeline.Point{X: p.X, Y: p.Y - photoRows}, req)
}

// UnloadHeavyPart drops the rendered preview; the next Render rebuilds it.
func (v *photoView) UnloadHeavyPart() {
	v.preview = nil
}

// Loaded reports whether the preview is resident.
func (v *photoView) Loaded() bool { return v.preview != nil }

func (v *photoView) load(st *styles.Styles) []string {
	if v.preview != nil {
		return v.preview
	}
	v.loads++
	label := "photo " + shortUID(v.msg.UID)
	if v.album > 1 {
		label = fmt.Sprintf("album, %d photos", v.album)
	}
	inner := max(min(v.contentWidth()-2, runewidth.StringWidth(label)+4), 1)
	label = runewidth.Truncate(label, inner, "")
	pad := inner - runewidth.StringWidth(label)
	v.preview = []string{
		st.Photo.Render("┌" + strings.Repeat("─", inner) + "┐"),
		st.Photo.Render("│" + strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2) + "│"),
	}
	return v.preview
}

func (v *photoView) Render(p paint) []string {
	rows := []string{v.renderHeader(p)}
	rows = append(rows, v.load(p.styles)...)
	rows = append(rows, v.renderText(p)...)
	return v.finish(rows, p)
}

func shortUID(uid string) string {
	if len(uid) > 8 {
		return uid[:8]
	}
	return uid
}

// renderer is implemented by every view this host puts into a timeline.
type renderer interface {
	Render(p paint) []string
}

var (
	_ timeline.View      = (*messageView)(nil)
	_ timeline.View      = (*photoView)(nil)
	_ timeline.HeavyView = (*photoView)(nil)
	_ renderer           = (*messageView)(nil)
	_ renderer           = (*photoView)(nil)
)
