package enumerate

import (
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

// Metrics are the fixed decoration sizes in px.
type Metrics struct {
	PhotoSize            int
	UserpicMinBottomSkip int
	DateHeight           int
	DateMarginTop        int
}

// UserpicVisitor receives the item owning a userpic and the userpic top.
type UserpicVisitor func(it *timeline.Item, userpicTop int) bool

// Userpics emits one userpic per attached run, pinned to the bottom of the
// run and kept on screen while any part of the run is visible.
func Userpics(layers []viewport.Layer, rng viewport.VisibleRange, m Metrics, visit UserpicVisitor) {
	runTop, inRun := 0, false
	Items(layers, rng, TopToBottom, func(it *timeline.Item, top, bottom int) bool {
		if it.IsService() || it.HiddenByGroup() {
			return true
		}
		if !inRun && it.AttachedToNext() {
			runTop, inRun = top, true
		}
		displays := it.HasUserpic() && !it.AttachedToNext()
		if displays || (it.HasUserpic() && bottom >= rng.Bottom) {
			if !inRun {
				runTop, inRun = top, true
			}
			userpicBottom := min(bottom, rng.Bottom-m.UserpicMinBottomSkip)
			userpicBottom = max(userpicBottom, runTop+m.PhotoSize)
			if !visit(it, userpicBottom-m.PhotoSize) {
				return false
			}
		}
		if !it.AttachedToNext() {
			inRun = false
		}
		return true
	})
}

// DateVisitor receives the first item of a day run, its top and the date top.
type DateVisitor func(it *timeline.Item, itemTop, dateTop int) bool

// Dates emits one floating date per calendar-day run, walking bottom to top.
// The date sticks to the viewport top and never drops below the run bottom.
// drawTop is where painting of live starts; a live item above it that is
// still below the viewport top leaves its date to the migrated timeline.
func Dates(layers []viewport.Layer, rng viewport.VisibleRange, drawTop int, live *timeline.Timeline, m Metrics, visit DateVisitor) {
	runBottom, inRun := 0, false
	Items(layers, rng, BottomToTop, func(it *timeline.Item, top, bottom int) bool {
		if !inRun && it.InOneDayWithPrevious() {
			runBottom, inRun = bottom, true
		}
		displays := !it.InOneDayWithPrevious()
		if displays || (!it.HiddenByGroup() && top <= rng.Top) {
			if top < drawTop && it.Timeline() == live && top > rng.Top {
				return false
			}
			if !inRun {
				runBottom, inRun = bottom, true
			}
			dateTop := max(top, rng.Top) + m.DateMarginTop
			dateTop = min(dateTop, runBottom-m.DateHeight)
			if !visit(it, top, dateTop) {
				return false
			}
		}
		if !it.InOneDayWithPrevious() {
			inRun = false
		}
		return true
	})
}

// SkipHeight is the height of the first live item when it duplicates the
// last migrated item: both histories are loaded at the junction, the two
// boundary items fall on the same day and both are migrate markers.
func SkipHeight(migrated, live *timeline.Timeline) int {
	if migrated == nil || live == nil || migrated.IsEmpty() || live.IsEmpty() {
		return 0
	}
	if !migrated.LoadedAtBottom() || !live.LoadedAtTop() {
		return 0
	}
	last, first := migrated.Last(), live.First()
	if !timeline.SameDay(last, first) {
		return 0
	}
	if !last.IsMigrateMarker() || !first.IsMigrateMarker() {
		return 0
	}
	live.Blocks()
	return first.Height()
}
