package historyview

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/events"
	"github.com/tOgg1/scrollback/internal/timeline"
)

type msgView struct {
	text     string
	height   int
	unloaded int
}

func (v *msgView) ResizeGetHeight(int) int { return v.height }

func (v *msgView) TextState(p timeline.Point, _ timeline.StateRequest) timeline.TextState {
	if p.Y < 0 || p.Y >= v.height {
		return timeline.TextState{}
	}
	return timeline.TextState{Cursor: timeline.CursorText, Symbol: uint16(min(max(p.X, 0), len(v.text)-1))}
}

func (v *msgView) Text() string { return v.text }

func (v *msgView) SelectedText(sel timeline.TextSelection) string {
	return v.text[sel.From:min(int(sel.To), len(v.text))]
}

func (v *msgView) AdjustSelection(sel timeline.TextSelection, _ timeline.SelectType) timeline.TextSelection {
	return sel
}

type photoView struct {
	msgView
}

func (v *photoView) UnloadHeavyPart() { v.unloaded++ }

var day = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func message(id timeline.ItemID) *timeline.Item {
	return &timeline.Item{
		ID:     id,
		Author: "ann",
		Date:   day.Add(time.Duration(id) * time.Minute),
		Flags:  timeline.FlagRegular,
		View:   &msgView{text: fmt.Sprintf("message %d", id), height: 2},
	}
}

func messages(from, to timeline.ItemID) []*timeline.Item {
	var out []*timeline.Item
	for id := from; id <= to; id++ {
		out = append(out, message(id))
	}
	return out
}

type fixture struct {
	pub    *events.InMemoryPublisher
	live   *timeline.Timeline
	engine *Engine
}

// newFixture builds an engine over n two-row messages with ids 1..n, laid
// out at width 40 and scrolled to [0, view).
func newFixture(t *testing.T, n, view int, opts ...Option) *fixture {
	t.Helper()
	pub := events.NewInMemoryPublisher()
	live := timeline.New(timeline.NameLive, timeline.WithBlockSize(4), timeline.WithPublisher(pub))
	live.Append(messages(1, timeline.ItemID(n))...)

	cfg := config.DefaultConfig()
	e := New(cfg, live, append([]Option{WithPublisher(pub)}, opts...)...)
	t.Cleanup(e.Close)

	e.Handle(Resize{Width: 40})
	e.Handle(Scroll{Top: 0, Height: view})
	require.Equal(t, 2*n, e.Height())
	return &fixture{pub: pub, live: live, engine: e}
}

func pt(x, y int) timeline.Point { return timeline.Point{X: x, Y: y} }

func frameIDs(f Frame) []timeline.ItemID {
	var ids []timeline.ItemID
	for _, it := range f.Items {
		ids = append(ids, it.Item.ID)
	}
	return ids
}

func fullySelected(f Frame) []timeline.ItemID {
	var ids []timeline.ItemID
	for _, it := range f.Items {
		if it.FullySelected() {
			ids = append(ids, it.Item.ID)
		}
	}
	return ids
}
