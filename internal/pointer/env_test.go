package pointer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/selection"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// textView lays its text out on the first row; columns map to symbols.
type textView struct {
	text   string
	height int
	link   *timeline.Link
}

func (v *textView) ResizeGetHeight(int) int { return v.height }

func (v *textView) TextState(p timeline.Point, _ timeline.StateRequest) timeline.TextState {
	if p.Y < 0 || p.Y >= v.height {
		return timeline.TextState{}
	}
	if v.link != nil {
		return timeline.TextState{Cursor: timeline.CursorLink, Link: v.link}
	}
	if p.X >= len(v.text) {
		return timeline.TextState{Cursor: timeline.CursorText, Symbol: uint16(len(v.text) - 1), AfterSymbol: true}
	}
	return timeline.TextState{Cursor: timeline.CursorText, Symbol: uint16(max(p.X, 0))}
}

func (v *textView) Text() string { return v.text }

func (v *textView) SelectedText(sel timeline.TextSelection) string {
	return v.text[sel.From:min(int(sel.To), len(v.text))]
}

func (v *textView) AdjustSelection(sel timeline.TextSelection, kind timeline.SelectType) timeline.TextSelection {
	switch kind {
	case timeline.SelectParagraphs:
		return timeline.TextSelection{From: 0, To: uint16(len(v.text))}
	case timeline.SelectWords:
		from := strings.LastIndex(v.text[:sel.From], " ") + 1
		to := len(v.text)
		if i := strings.Index(v.text[sel.To:], " "); i >= 0 {
			to = int(sel.To) + i
		}
		return timeline.TextSelection{From: uint16(from), To: uint16(to)}
	}
	return sel
}

type testEnv struct {
	tl     *timeline.Timeline
	sel    *selection.Model
	choose bool
}

func (e *testEnv) Item(id timeline.ItemID) *timeline.Item { return e.tl.Item(id) }
func (e *testEnv) ItemTop(id timeline.ItemID) int         { return e.tl.ItemTop(id) }

func (e *testEnv) Locate(p timeline.Point) (*timeline.Item, bool) {
	last := e.tl.Last()
	for it := e.tl.First(); it != nil; it = e.tl.Next(it) {
		top := it.Top()
		if p.Y < top+it.Height() || it == last {
			return it, p.Y >= top && p.Y < top+it.Height()
		}
	}
	return nil, false
}

func (e *testEnv) Next(it *timeline.Item) *timeline.Item { return e.tl.Next(it) }
func (e *testEnv) Prev(it *timeline.Item) *timeline.Item { return e.tl.Prev(it) }
func (e *testEnv) Selection() *selection.Model           { return e.sel }
func (e *testEnv) ChooseMode() bool                      { return e.choose }

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// newEnv builds n two-row messages with ids 1..n stacked from y=0.
func newEnv(t *testing.T, n int) *testEnv {
	t.Helper()
	tl := timeline.New(timeline.NameLive, timeline.WithBlockSize(2))
	for id := 1; id <= n; id++ {
		tl.Append(&timeline.Item{
			ID:     timeline.ItemID(id),
			Author: "ann",
			Date:   t0.Add(time.Duration(id) * time.Hour),
			Flags:  timeline.FlagRegular,
			View:   &textView{text: "hello world", height: 2},
		})
	}
	tl.ResizeToWidth(40)
	require.Equal(t, 2*n, tl.Height())
	return &testEnv{
		tl:  tl,
		sel: selection.New(selection.DefaultMaxItems, tl.Item, timeline.NoGroups{}),
	}
}

func newMachine() *Machine {
	return New(Config{StartDragDistance: 2, DoubleClickInterval: 400 * time.Millisecond})
}

func pt(x, y int) timeline.Point { return timeline.Point{X: x, Y: y} }
