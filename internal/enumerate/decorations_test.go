package enumerate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

type userpic struct {
	id  timeline.ItemID
	top int
}

func userpics(layers []viewport.Layer, rng viewport.VisibleRange, m Metrics) []userpic {
	var out []userpic
	Userpics(layers, rng, m, func(it *timeline.Item, top int) bool {
		out = append(out, userpic{it.ID, top})
		return true
	})
	return out
}

func runTimeline() *timeline.Timeline {
	pic := timeline.FlagHasUserpic | timeline.FlagRegular
	return build(timeline.NameLive, 2,
		row{id: 1, height: 10, flags: pic, date: day1},
		row{id: 2, height: 10, flags: pic, date: day1.Add(time.Minute)},
		row{id: 3, height: 10, flags: pic, date: day1.Add(2 * time.Minute)},
		row{id: 4, height: 10, kind: timeline.KindService, date: day1.Add(3 * time.Minute)},
		row{id: 5, height: 10, flags: pic, author: "bob", date: day1.Add(4 * time.Minute)},
	)
}

func TestUserpicsPinnedToRunBottom(t *testing.T) {
	layers := []viewport.Layer{{Timeline: runTimeline()}}
	m := Metrics{PhotoSize: 4}

	require.Equal(t, []userpic{{3, 26}, {5, 46}},
		userpics(layers, viewport.VisibleRange{Top: 0, Bottom: 100}, m))
}

func TestUserpicsFollowViewportBottom(t *testing.T) {
	layers := []viewport.Layer{{Timeline: runTimeline()}}

	require.Equal(t, []userpic{{2, 11}},
		userpics(layers, viewport.VisibleRange{Top: 0, Bottom: 15}, Metrics{PhotoSize: 4}))

	require.Equal(t, []userpic{{2, 9}},
		userpics(layers, viewport.VisibleRange{Top: 0, Bottom: 15}, Metrics{PhotoSize: 4, UserpicMinBottomSkip: 2}))
}

func TestUserpicsNeverAboveRunTop(t *testing.T) {
	layers := []viewport.Layer{{Timeline: runTimeline()}}

	require.Equal(t, []userpic{{2, 0}},
		userpics(layers, viewport.VisibleRange{Top: 0, Bottom: 12}, Metrics{PhotoSize: 14}))
}

func TestUserpicsPartialRun(t *testing.T) {
	layers := []viewport.Layer{{Timeline: runTimeline()}}

	require.Equal(t, []userpic{{3, 26}},
		userpics(layers, viewport.VisibleRange{Top: 25, Bottom: 40}, Metrics{PhotoSize: 4}))
}

func TestUserpicsSkipHiddenItems(t *testing.T) {
	tl := build(timeline.NameLive, 4,
		row{id: 1, height: 10, flags: timeline.FlagHasUserpic | timeline.FlagHiddenByGroup},
		row{id: 2, height: 10, author: "bob", flags: timeline.FlagHasUserpic},
	)
	require.Equal(t, []userpic{{2, 6}},
		userpics([]viewport.Layer{{Timeline: tl}}, viewport.VisibleRange{Top: 0, Bottom: 50}, Metrics{PhotoSize: 4}))
}

type date struct {
	id      timeline.ItemID
	itemTop int
	dateTop int
}

func dates(layers []viewport.Layer, rng viewport.VisibleRange, drawTop int, live *timeline.Timeline, m Metrics) []date {
	var out []date
	Dates(layers, rng, drawTop, live, m, func(it *timeline.Item, itemTop, dateTop int) bool {
		out = append(out, date{it.ID, itemTop, dateTop})
		return true
	})
	return out
}

func twoDays() *timeline.Timeline {
	day2 := day1.AddDate(0, 0, 1)
	return build(timeline.NameLive, 2,
		row{id: 1, height: 10, date: day1},
		row{id: 2, height: 10, date: day1.Add(time.Hour)},
		row{id: 3, height: 10, date: day2},
		row{id: 4, height: 10, date: day2.Add(time.Hour)},
	)
}

func TestDatesStickToViewportTop(t *testing.T) {
	tl := twoDays()
	layers := []viewport.Layer{{Timeline: tl}}

	got := dates(layers, viewport.VisibleRange{Top: 15, Bottom: 40}, 0, tl, Metrics{DateHeight: 1})
	require.Equal(t, []date{{3, 20, 20}, {2, 10, 15}}, got)
}

func TestDatesPushedByRunBottom(t *testing.T) {
	tl := twoDays()
	layers := []viewport.Layer{{Timeline: tl}}

	got := dates(layers, viewport.VisibleRange{Top: 18, Bottom: 40}, 0, tl, Metrics{DateHeight: 5})
	require.Equal(t, []date{{3, 20, 20}, {2, 10, 15}}, got)

	got = dates(layers, viewport.VisibleRange{Top: 0, Bottom: 40}, 0, tl, Metrics{DateHeight: 5, DateMarginTop: 2})
	require.Equal(t, []date{{3, 20, 22}, {1, 0, 2}}, got)
}

func migrationPair() (*timeline.Timeline, *timeline.Timeline) {
	marker := timeline.FlagMigrateMarker
	migrated := build(timeline.NameMigrated, 4,
		row{id: 1, height: 10, date: day1},
		row{id: 2, height: 10, date: day1.Add(time.Minute), flags: marker},
	)
	live := build(timeline.NameLive, 4,
		row{id: 10, height: 10, date: day1.Add(2 * time.Minute), flags: marker},
		row{id: 11, height: 10, date: day1.Add(3 * time.Minute)},
	)
	migrated.SetLoaded(true, true)
	live.SetLoaded(true, true)
	return migrated, live
}

func TestSkipHeight(t *testing.T) {
	migrated, live := migrationPair()
	require.Equal(t, 10, SkipHeight(migrated, live))

	live.SetLoaded(false, true)
	require.Equal(t, 0, SkipHeight(migrated, live))
	live.SetLoaded(true, true)

	require.Equal(t, 0, SkipHeight(nil, live))
	require.Equal(t, 0, SkipHeight(migrated, timeline.New(timeline.NameLive)))

	plain := build(timeline.NameLive, 4, row{id: 20, height: 10, date: day1})
	plain.SetLoaded(true, true)
	require.Equal(t, 0, SkipHeight(migrated, plain))

	nextDay := build(timeline.NameLive, 4, row{id: 30, height: 10, date: day1.AddDate(0, 0, 1), flags: timeline.FlagMigrateMarker})
	nextDay.SetLoaded(true, true)
	require.Equal(t, 0, SkipHeight(migrated, nextDay))
}

func TestDatesMigrationBoundary(t *testing.T) {
	migrated, live := migrationPair()
	skip := SkipHeight(migrated, live)
	liveTop := migrated.Height() - skip
	drawTop := liveTop + skip
	layers := []viewport.Layer{{Timeline: migrated}, {Timeline: live, Top: liveTop}}

	got := dates(layers, viewport.VisibleRange{Top: 5, Bottom: 30}, drawTop, live, Metrics{DateHeight: 1})
	require.Equal(t, []date{{1, 0, 5}}, got)

	got = dates(layers, viewport.VisibleRange{Top: 12, Bottom: 30}, drawTop, live, Metrics{DateHeight: 1})
	require.Equal(t, []date{{10, 10, 12}, {2, 10, 12}}, got)
}
