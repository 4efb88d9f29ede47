package historyview

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/timeline"
)

func TestCoordinatesWithMigratedJunction(t *testing.T) {
	mig := timeline.New(timeline.NameMigrated)
	older := messages(101, 102)
	older[1].Flags |= timeline.FlagMigrateMarker
	mig.Append(older...)
	mig.SetLoaded(true, true)

	live := timeline.New(timeline.NameLive)
	newer := messages(1, 3)
	newer[0].Flags |= timeline.FlagMigrateMarker
	live.Append(newer...)
	live.SetLoaded(true, true)

	e := New(config.DefaultConfig(), live, WithMigrated(mig))
	e.Handle(Resize{Width: 40})
	e.Handle(Scroll{Top: 0, Height: 20})

	require.Equal(t, 0, e.MigratedTop())
	require.Equal(t, 2, e.HistoryTop())
	require.Equal(t, 4, e.HistoryDrawTop())
	require.Equal(t, 8, e.Height())
	require.Equal(t, 4, e.ItemTop(2))
	require.Equal(t, 2, e.ItemTop(102))
	require.Equal(t, -1, e.ItemTop(999))

	require.Equal(t, timeline.ItemID(102), e.ItemAt(pt(0, 3)).ID)
	require.Equal(t, timeline.ItemID(2), e.ItemAt(pt(0, 4)).ID)
	require.Nil(t, e.ItemAt(pt(0, 8)))

	require.Equal(t, timeline.ItemID(2), e.Next(mig.Item(102)).ID)
	require.Equal(t, timeline.ItemID(102), e.Prev(live.Item(2)).ID)
	require.Nil(t, e.Prev(mig.Item(101)))
	require.Nil(t, e.Next(live.Item(3)))

	f := e.Frame()
	require.Equal(t, []timeline.ItemID{101, 102, 2, 3}, frameIDs(f))
	require.Len(t, f.Dates, 1)
	require.Equal(t, timeline.ItemID(101), f.Dates[0].Item.ID)
}

func TestDragAcrossJunctionSkipsDuplicateMarker(t *testing.T) {
	mig := timeline.New(timeline.NameMigrated)
	older := messages(101, 102)
	older[1].Flags |= timeline.FlagMigrateMarker
	mig.Append(older...)
	mig.SetLoaded(true, true)

	live := timeline.New(timeline.NameLive)
	newer := messages(1, 3)
	newer[0].Flags |= timeline.FlagMigrateMarker
	live.Append(newer...)
	live.SetLoaded(true, true)

	e := New(config.DefaultConfig(), live, WithMigrated(mig))
	e.Handle(Resize{Width: 40})
	e.Handle(Scroll{Top: 0, Height: 20})

	e.Handle(MousePress{Point: pt(0, 0), Button: pointer.ButtonLeft, At: day})
	e.Handle(MouseMove{Point: pt(0, 7)})
	require.Equal(t, []timeline.ItemID{101, 102, 2, 3}, fullySelected(e.Frame()))

	e.Handle(MouseRelease{Point: pt(0, 7), Button: pointer.ButtonLeft})
	require.ElementsMatch(t, []timeline.ItemID{2, 3, 101, 102}, e.SelectedItems())
	require.Equal(t, 4, e.SelectionState().Count)
	require.False(t, e.Selection().IsSelected(1))
}

func TestCoordinatesWithoutMigrated(t *testing.T) {
	fx := newFixture(t, 5, 20)
	e := fx.engine
	require.Equal(t, 0, e.HistoryTop())
	require.Equal(t, 0, e.HistoryDrawTop())
	require.Equal(t, 10, e.Height())
	require.Equal(t, []timeline.ItemID{1, 2, 3, 4, 5}, frameIDs(e.Frame()))

	it, inside := e.Locate(pt(0, 15))
	require.Equal(t, timeline.ItemID(5), it.ID)
	require.False(t, inside)

	require.Equal(t, Effects{}, e.Handle(Resize{Width: 40}))
	require.True(t, e.Handle(Resize{Width: 20}).Repaint)
}

func TestDragSelectionSurvivesRemoval(t *testing.T) {
	fx := newFixture(t, 6, 20)
	e := fx.engine

	e.Handle(MousePress{Point: pt(0, 2), Button: pointer.ButtonLeft, At: day})
	e.Handle(MouseMove{Point: pt(0, 9)})
	require.Equal(t, pointer.Selecting, e.Pointer().Action())
	require.True(t, e.InSelectionMode())
	require.Equal(t, []timeline.ItemID{2, 3, 4, 5}, fullySelected(e.Frame()))

	text := e.SelectedText()
	require.Equal(t, 3, strings.Count(text, "\n\n"))
	require.Contains(t, text, "message 3")
	require.Empty(t, e.SelectedItems(), "preview is not committed")

	fx.live.Remove(3)
	got := e.Handle(MouseMove{Point: pt(0, 7)})
	require.True(t, got.Repaint)
	require.Equal(t, pointer.Anchors{From: 2, To: 5}, e.Pointer().Anchors())

	got = e.Handle(MouseRelease{Point: pt(0, 7), Button: pointer.ButtonLeft})
	require.True(t, got.SelectionChanged)
	require.Equal(t, []timeline.ItemID{2, 4, 5}, e.SelectedItems())
	require.Equal(t, 3, e.SelectionState().Count)
}

func TestRemovingActionItemCancelsThroughNotice(t *testing.T) {
	fx := newFixture(t, 4, 20)
	e := fx.engine

	e.Handle(MousePress{Point: pt(1, 2), Button: pointer.ButtonLeft, At: day})
	require.Equal(t, pointer.Selecting, e.Pointer().Action())

	fx.live.Remove(2)
	require.Equal(t, pointer.None, e.Pointer().Action())
	require.True(t, e.Selection().Empty())

	got := e.Handle(MouseMove{Point: pt(1, 3)})
	require.True(t, got.Repaint)
	require.True(t, got.SelectionChanged)
}

func TestRemovingActionItemWithoutNoticeCancelsOnNextEvent(t *testing.T) {
	live := timeline.New(timeline.NameLive)
	live.Append(messages(1, 4)...)
	e := New(config.DefaultConfig(), live)
	e.Handle(Resize{Width: 40})
	e.Handle(Scroll{Top: 0, Height: 20})

	e.Handle(MousePress{Point: pt(1, 2), Button: pointer.ButtonLeft, At: day})
	live.Remove(2)
	require.NotPanics(t, func() { e.Handle(MouseMove{Point: pt(1, 3)}) })
	require.Equal(t, pointer.None, e.Pointer().Action())
}

func TestHeavyPartsUnloadFarFromViewport(t *testing.T) {
	items := messages(1, 100)
	photo := &photoView{msgView{text: "photo", height: 2}}
	items[0].View = photo
	live := timeline.New(timeline.NameLive)
	live.Append(items...)

	e := New(config.DefaultConfig(), live)
	e.Handle(Resize{Width: 40})
	e.Handle(Scroll{Top: 0, Height: 10})
	e.Frame()
	require.Equal(t, 1, e.Heavy().Count())
	require.True(t, e.Heavy().Registered(1))

	e.Handle(Scroll{Top: 20, Height: 10})
	require.Equal(t, 1, e.Heavy().Count())
	require.Zero(t, photo.unloaded)

	e.Handle(Scroll{Top: 100, Height: 10})
	require.Zero(t, e.Heavy().Count())
	require.Equal(t, 1, photo.unloaded)
}

func TestAutoscrollWhileSelectingNearEdge(t *testing.T) {
	fx := newFixture(t, 40, 10)
	e := fx.engine
	e.Handle(Scroll{Top: 10, Height: 10})

	e.Handle(MousePress{Point: pt(0, 2), Button: pointer.ButtonLeft, At: day})
	got := e.Handle(MouseMove{Point: pt(0, 9)})
	require.Len(t, got.Schedule, 1)
	first := got.Schedule[0]
	require.Equal(t, TimerAutoscroll, first.Timer)
	require.Equal(t, 15*time.Millisecond, first.After)

	got = e.Handle(Tick{Timer: TimerAutoscroll, Gen: first.Gen})
	require.Equal(t, 1, got.ScrollBy)
	require.Len(t, got.Schedule, 1)
	second := got.Schedule[0]

	require.Equal(t, Effects{}, e.Handle(Tick{Timer: TimerAutoscroll, Gen: first.Gen}))

	e.Handle(Scroll{Top: 11, Height: 10})
	require.Equal(t, pointer.Anchors{From: 7, To: 11}, e.Pointer().Anchors())

	e.Handle(MouseMove{Point: pt(0, 5)})
	require.False(t, e.Running(TimerAutoscroll))
	require.Equal(t, Effects{}, e.Handle(Tick{Timer: TimerAutoscroll, Gen: second.Gen}))

	e.Handle(MouseRelease{Point: pt(0, 5), Button: pointer.ButtonLeft})
	require.Equal(t, []timeline.ItemID{7, 8, 9}, e.SelectedItems())
}

func TestKineticScrollDecelerates(t *testing.T) {
	fx := newFixture(t, 40, 10)
	e := fx.engine
	e.Handle(Scroll{Top: 10, Height: 10})
	top := 10

	e.Handle(TouchBegin{Point: pt(0, 8), At: day})
	got := e.Handle(TouchMove{Point: pt(0, 2), At: day.Add(20 * time.Millisecond)})
	require.Equal(t, 6, got.ScrollBy)
	top += got.ScrollBy
	e.Handle(Scroll{Top: top, Height: 10})

	got = e.Handle(TouchEnd{Point: pt(0, 2), At: day.Add(30 * time.Millisecond)})
	require.Len(t, got.Schedule, 1)
	require.Equal(t, TimerKinetic, got.Schedule[0].Timer)

	at := day.Add(30 * time.Millisecond)
	total := 0
	for i := 0; len(got.Schedule) > 0; i++ {
		require.Less(t, i, 500)
		at = at.Add(16 * time.Millisecond)
		got = e.Handle(Tick{Timer: TimerKinetic, Gen: got.Schedule[0].Gen, At: at})
		require.GreaterOrEqual(t, got.ScrollBy, 0)
		total += got.ScrollBy
		top += got.ScrollBy
		e.Handle(Scroll{Top: top, Height: 10})
	}
	require.Positive(t, total)
	require.LessOrEqual(t, top, 70)
	require.False(t, e.Running(TimerKinetic))
}

func TestKineticScrollStopsAtEdge(t *testing.T) {
	fx := newFixture(t, 40, 10)
	e := fx.engine
	e.Handle(Scroll{Top: 68, Height: 10})

	e.Handle(TouchBegin{Point: pt(0, 9), At: day})
	got := e.Handle(TouchMove{Point: pt(0, 1), At: day.Add(10 * time.Millisecond)})
	require.Equal(t, 2, got.ScrollBy)
	e.Handle(Scroll{Top: 70, Height: 10})

	got = e.Handle(TouchEnd{Point: pt(0, 1), At: day.Add(15 * time.Millisecond)})
	require.Len(t, got.Schedule, 1)

	got = e.Handle(Tick{Timer: TimerKinetic, Gen: got.Schedule[0].Gen, At: day.Add(31 * time.Millisecond)})
	require.Zero(t, got.ScrollBy)
	require.Empty(t, got.Schedule)
	require.False(t, e.Running(TimerKinetic))
}

func TestTouchTapTogglesInChooseMode(t *testing.T) {
	fx := newFixture(t, 4, 20)
	e := fx.engine
	require.True(t, e.SetChooseMode(true).Repaint)
	require.True(t, e.InSelectionMode())

	e.Handle(TouchBegin{Point: pt(0, 2), At: day})
	got := e.Handle(TouchEnd{Point: pt(0, 2), At: day.Add(50 * time.Millisecond)})
	require.True(t, got.SelectionChanged)
	require.Equal(t, []timeline.ItemID{2}, e.SelectedItems())
}

func TestFloatingDatesHideAfterScrolling(t *testing.T) {
	fx := newFixture(t, 10, 6)
	e := fx.engine

	first := e.Handle(Scroll{Top: 5, Height: 6})
	require.Len(t, first.Schedule, 1)
	require.Equal(t, TimerDateHide, first.Schedule[0].Timer)
	second := e.Handle(Scroll{Top: 5, Height: 7})
	require.Len(t, second.Schedule, 1)

	require.Len(t, e.Frame().Dates, 1)
	require.Equal(t, 5, e.Frame().Dates[0].Top)

	require.Equal(t, Effects{}, e.Handle(Tick{Timer: TimerDateHide, Gen: first.Schedule[0].Gen}))
	require.True(t, e.DatesVisible())

	got := e.Handle(Tick{Timer: TimerDateHide, Gen: second.Schedule[0].Gen})
	require.True(t, got.Repaint)
	require.False(t, e.DatesVisible())
	require.Empty(t, e.Frame().Dates)
}

func TestKeyCancelAndFocusLost(t *testing.T) {
	fx := newFixture(t, 6, 20)
	e := fx.engine

	e.SelectItems([]timeline.ItemID{1})
	got := e.Handle(KeyCancel{})
	require.True(t, got.SelectionChanged)
	require.True(t, e.Selection().Empty())

	e.Handle(MousePress{Point: pt(0, 2), Button: pointer.ButtonLeft, At: day})
	e.Handle(MouseMove{Point: pt(0, 9)})
	require.True(t, e.Pointer().Anchors().Valid())
	e.Handle(FocusLost{})
	require.Equal(t, pointer.None, e.Pointer().Action())
	require.False(t, e.Pointer().Anchors().Valid())

	e.Handle(MouseRelease{Point: pt(0, 9), Button: pointer.ButtonLeft})
	require.Empty(t, e.SelectedItems())
}

func TestHistoryClearedDropsSelection(t *testing.T) {
	fx := newFixture(t, 4, 20)
	e := fx.engine
	e.SelectItems([]timeline.ItemID{1, 2})
	require.Len(t, e.SelectedItems(), 2)

	fx.live.Clear()
	got := e.Handle(MouseMove{Point: pt(0, 0)})
	require.True(t, got.SelectionChanged)
	require.True(t, e.Selection().Empty())
	require.Empty(t, e.Frame().Items)
}

func TestCloseUnsubscribes(t *testing.T) {
	fx := newFixture(t, 2, 20)
	require.Equal(t, 1, fx.pub.SubscriberCount())
	fx.engine.Close()
	require.Zero(t, fx.pub.SubscriberCount())
}
