package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type offset int

func (o offset) Y() int { return int(o) }

func TestBinarySearchBlocksOrItems(t *testing.T) {
	list := []offset{0, 10, 20, 20, 30}
	tests := []struct {
		name        string
		edge        int
		topToBottom bool
		want        int
	}{
		{"top edge before first", -5, true, 0},
		{"top edge on start", 0, true, 0},
		{"top edge inside", 15, true, 1},
		{"top edge on boundary picks last equal", 20, true, 3},
		{"top edge past end", 99, true, 4},
		{"bottom edge on boundary picks previous", 20, false, 1},
		{"bottom edge on start", 10, false, 0},
		{"bottom edge inside", 25, false, 3},
		{"bottom edge past end", 99, false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BinarySearchBlocksOrItems(list, tt.edge, tt.topToBottom))
		})
	}
	require.Equal(t, -1, BinarySearchBlocksOrItems([]offset(nil), 5, true))
}

func TestTextSelection(t *testing.T) {
	require.True(t, FullSelection.IsFull())
	require.False(t, FullSelection.Empty())
	require.True(t, TextSelection{From: 3, To: 3}.Empty())
	require.False(t, TextSelection{From: 3, To: 4}.Empty())
}

func TestGroupIndex(t *testing.T) {
	idx := NewGroupIndex()
	idx.Add(7, 1, 2, 3)
	idx.Add(7, 2)
	idx.Add(0, 9)

	group, ok := idx.Find(2)
	require.True(t, ok)
	require.Equal(t, GroupID(7), group.ID)
	require.Equal(t, []ItemID{1, 2, 3}, group.Items)
	require.Equal(t, ItemID(3), group.Leader())
	require.True(t, group.Contains(1))

	_, ok = idx.Find(9)
	require.False(t, ok)

	idx.Remove(3)
	group, _ = idx.Find(1)
	require.Equal(t, ItemID(2), group.Leader())

	idx.Remove(1)
	idx.Remove(2)
	require.Equal(t, 0, idx.Len())

	_, ok = NoGroups{}.Find(1)
	require.False(t, ok)
}
