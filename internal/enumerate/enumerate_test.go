package enumerate

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

type fixedView struct{ height int }

func (v fixedView) ResizeGetHeight(int) int { return v.height }
func (v fixedView) TextState(timeline.Point, timeline.StateRequest) timeline.TextState {
	return timeline.TextState{}
}
func (v fixedView) Text() string                               { return "" }
func (v fixedView) SelectedText(timeline.TextSelection) string { return "" }
func (v fixedView) AdjustSelection(s timeline.TextSelection, _ timeline.SelectType) timeline.TextSelection {
	return s
}

var day1 = time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local)

type row struct {
	id     timeline.ItemID
	height int
	author string
	date   time.Time
	flags  timeline.Flags
	kind   timeline.Kind
}

func build(name string, blockSize int, rows ...row) *timeline.Timeline {
	tl := timeline.New(name, timeline.WithBlockSize(blockSize))
	for _, s := range rows {
		date := s.date
		if date.IsZero() {
			date = day1
		}
		author := s.author
		if author == "" {
			author = "ann"
		}
		tl.Append(&timeline.Item{
			ID:     s.id,
			Kind:   s.kind,
			Author: author,
			Date:   date,
			Flags:  s.flags,
			View:   fixedView{height: s.height},
		})
	}
	tl.ResizeToWidth(100)
	return tl
}

func heightsTimeline(blockSize int, heights ...int) *timeline.Timeline {
	rows := make([]row, len(heights))
	for i, h := range heights {
		rows[i] = row{id: timeline.ItemID(i + 1), height: h}
	}
	return build(timeline.NameLive, blockSize, rows...)
}

func collect(layer viewport.Layer, rng viewport.VisibleRange, dir Direction) []timeline.ItemID {
	var ids []timeline.ItemID
	ItemsInHistory(layer, rng, dir, func(it *timeline.Item, top, bottom int) bool {
		ids = append(ids, it.ID)
		return true
	})
	return ids
}

func TestItemsInHistoryScenario(t *testing.T) {
	tl := heightsTimeline(2, 10, 20, 30)
	layer := viewport.Layer{Timeline: tl}
	rng := viewport.VisibleRange{Top: 15, Bottom: 25}

	require.Equal(t, []timeline.ItemID{2}, collect(layer, rng, TopToBottom))
	require.Equal(t, []timeline.ItemID{2}, collect(layer, rng, BottomToTop))

	full := viewport.VisibleRange{Top: 0, Bottom: 60}
	require.Equal(t, []timeline.ItemID{1, 2, 3}, collect(layer, full, TopToBottom))
	require.Equal(t, []timeline.ItemID{3, 2, 1}, collect(layer, full, BottomToTop))
}

func TestItemsInHistoryOutsideWindow(t *testing.T) {
	tl := heightsTimeline(2, 10, 20, 30)
	layer := viewport.Layer{Timeline: tl, Top: 100}

	require.Empty(t, collect(layer, viewport.VisibleRange{Top: 0, Bottom: 100}, TopToBottom))
	require.Empty(t, collect(layer, viewport.VisibleRange{Top: 160, Bottom: 200}, BottomToTop))
	require.Empty(t, collect(layer, viewport.VisibleRange{Top: 120, Bottom: 120}, TopToBottom))
	require.Empty(t, collect(viewport.Layer{Timeline: timeline.New("x")}, viewport.VisibleRange{Bottom: 10}, TopToBottom))
}

func TestItemsInHistoryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	heights := make([]int, 300)
	for i := range heights {
		heights[i] = rng.IntN(25)
	}
	tl := heightsTimeline(8, heights...)
	layer := viewport.Layer{Timeline: tl, Top: 40}
	total := tl.Height()

	for range 500 {
		top := rng.IntN(total+200) - 100
		window := viewport.VisibleRange{Top: top, Bottom: top + 1 + rng.IntN(120)}

		var want []timeline.ItemID
		for it := tl.First(); it != nil; it = tl.Next(it) {
			itemTop := layer.Top + it.Top()
			if itemTop < window.Bottom && itemTop+it.Height() > window.Top {
				want = append(want, it.ID)
			}
		}
		require.Equal(t, want, collect(layer, window, TopToBottom), "range %+v", window)

		slices.Reverse(want)
		require.Equal(t, want, collect(layer, window, BottomToTop), "range %+v", window)
	}
}

func TestItemsInHistoryVisitorStops(t *testing.T) {
	tl := heightsTimeline(2, 10, 10, 10, 10)
	layer := viewport.Layer{Timeline: tl}

	var seen []timeline.ItemID
	completed := ItemsInHistory(layer, viewport.VisibleRange{Top: 0, Bottom: 40}, TopToBottom,
		func(it *timeline.Item, _, _ int) bool {
			seen = append(seen, it.ID)
			return len(seen) < 2
		})
	require.False(t, completed)
	require.Equal(t, []timeline.ItemID{1, 2}, seen)
}

func TestItemsAcrossLayers(t *testing.T) {
	migrated := build(timeline.NameMigrated, 4, row{id: 1, height: 10}, row{id: 2, height: 10})
	live := build(timeline.NameLive, 4, row{id: 10, height: 10}, row{id: 11, height: 10})
	layers := []viewport.Layer{{Timeline: migrated}, {Timeline: live, Top: 20}}
	window := viewport.VisibleRange{Top: 0, Bottom: 40}

	var down, up []timeline.ItemID
	Items(layers, window, TopToBottom, func(it *timeline.Item, _, _ int) bool {
		down = append(down, it.ID)
		return it.ID != 1
	})
	Items(layers, window, BottomToTop, func(it *timeline.Item, _, _ int) bool {
		up = append(up, it.ID)
		return true
	})
	require.Equal(t, []timeline.ItemID{1, 10, 11}, down)
	require.Equal(t, []timeline.ItemID{11, 10, 2, 1}, up)
}
