package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubView struct {
	height  int
	text    string
	resized int
}

func (v *stubView) ResizeGetHeight(int) int {
	v.resized++
	return v.height
}

func (v *stubView) TextState(Point, StateRequest) TextState { return TextState{} }
func (v *stubView) Text() string                            { return v.text }

func (v *stubView) SelectedText(sel TextSelection) string {
	return v.text[sel.From:sel.To]
}

func (v *stubView) AdjustSelection(sel TextSelection, _ SelectType) TextSelection { return sel }

var baseDate = time.Date(2026, 5, 4, 10, 0, 0, 0, time.Local)

func newItem(id ItemID, height int) *Item {
	return &Item{
		ID:     id,
		Author: "ann",
		Date:   baseDate.Add(time.Duration(id) * time.Minute),
		Flags:  FlagRegular,
		View:   &stubView{height: height, text: "message"},
	}
}

func newItems(from, to ItemID, height int) []*Item {
	var out []*Item
	for id := from; id <= to; id++ {
		out = append(out, newItem(id, height))
	}
	return out
}

func requireLayout(t *testing.T, tl *Timeline) {
	t.Helper()
	blocks := tl.Blocks()
	y := 0
	count := 0
	for i, b := range blocks {
		require.Equal(t, i, b.Index())
		require.Equal(t, y, b.Y(), "block %d offset", i)
		require.NotZero(t, b.Len(), "block %d empty", i)
		require.LessOrEqual(t, b.Len(), tl.BlockSize())
		iy := 0
		for j, it := range b.Items() {
			require.Equal(t, j, it.Index())
			require.Same(t, b, it.Block())
			require.Equal(t, iy, it.Y(), "item %d offset", it.ID)
			iy += it.Height()
			count++
		}
		require.Equal(t, iy, b.Height())
		y += b.Height()
	}
	require.Equal(t, y, tl.Height())
	require.Equal(t, count, tl.Len())
}
