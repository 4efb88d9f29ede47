package historyview

import (
	"slices"
	"time"

	"github.com/tOgg1/scrollback/internal/enumerate"
	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

// FrameItem is one item to paint.
type FrameItem struct {
	Item      *timeline.Item
	Top       int
	Bottom    int
	Selection timeline.TextSelection
	Selected  bool
}

// FullySelected reports whether the item paints as a selected whole.
func (f FrameItem) FullySelected() bool {
	return f.Selected && f.Selection.IsFull()
}

// Userpic is an author badge to paint.
type Userpic struct {
	Item *timeline.Item
	Top  int
}

// DateMarker is a floating date to paint.
type DateMarker struct {
	Item *timeline.Item
	Date time.Time
	Top  int
}

// Frame is everything visible in the current scroll window, top to bottom.
type Frame struct {
	Range           viewport.VisibleRange
	Items           []FrameItem
	Userpics        []Userpic
	Dates           []DateMarker
	InSelectionMode bool
}

// Frame collects the visible items with their render selection and
// registers heavy views among them.
func (e *Engine) Frame() Frame {
	rng := e.VisibleRange()
	f := Frame{Range: rng, InSelectionMode: e.InSelectionMode()}
	if rng.Empty() {
		return f
	}
	layers := e.layers()
	drawTop := e.HistoryDrawTop()
	hidden := func(it *timeline.Item, top int) bool {
		return it.Timeline() == e.live && top < drawTop
	}

	enumerate.Items(layers, rng, enumerate.TopToBottom, func(it *timeline.Item, top, bottom int) bool {
		if hidden(it, top) {
			return true
		}
		sel, ok := e.renderSelection(it, top)
		f.Items = append(f.Items, FrameItem{Item: it, Top: top, Bottom: bottom, Selection: sel, Selected: ok})
		e.heavy.Register(it.ID, it.View)
		return true
	})

	enumerate.Userpics(layers, rng, e.metrics, func(it *timeline.Item, top int) bool {
		if !hidden(it, e.ItemTop(it.ID)) {
			f.Userpics = append(f.Userpics, Userpic{Item: it, Top: top})
		}
		return true
	})

	enumerate.Dates(layers, rng, drawTop, e.live, e.metrics, func(it *timeline.Item, itemTop, dateTop int) bool {
		if n := len(f.Dates); n > 0 && f.Dates[n-1].Top == dateTop {
			return true
		}
		floating := dateTop != itemTop+e.metrics.DateMarginTop
		if floating && !e.dates {
			return true
		}
		f.Dates = append(f.Dates, DateMarker{Item: it, Date: it.Date, Top: dateTop})
		return true
	})
	slices.Reverse(f.Dates)
	return f
}

// dragPreview is the span covered by an in-progress item drag selection.
func (e *Engine) dragPreview() (int, int, bool) {
	if e.pointer.Action() != pointer.Selecting {
		return 0, 0, false
	}
	return e.pointer.DragRange(e)
}

func (e *Engine) renderSelection(it *timeline.Item, top int) (timeline.TextSelection, bool) {
	if from, to, ok := e.dragPreview(); ok && it.IsRegular() && !it.IsService() && top >= from && top < to {
		if e.pointer.DragSelecting() {
			return timeline.FullSelection, true
		}
		return timeline.TextSelection{}, false
	}
	if group, ok := e.groups.Find(it.ID); ok && group.Leader() == it.ID && e.sel.IsSelectedGroup(group) {
		return timeline.FullSelection, true
	}
	return e.sel.Get(it.ID)
}
