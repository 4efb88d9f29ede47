package timeline

import "time"

// Item is one display entry. The exported fields are set by the content
// collaborator before the item is added; the layout fields are owned by the
// timeline.
type Item struct {
	ID     ItemID
	Kind   Kind
	Author string
	Date   time.Time
	Group  GroupID
	Flags  Flags
	View   View

	height        int
	y             int
	pendingResize bool
	block         *Block
	index         int

	attachedToPrev bool
	attachedToNext bool
	inOneDay       bool
}

// Y is the offset of the item within its block.
func (it *Item) Y() int { return it.y }

// Height is the last measured height.
func (it *Item) Height() int { return it.height }

// Top is the offset of the item within its timeline.
func (it *Item) Top() int {
	if it.block == nil {
		return -1
	}
	return it.block.y + it.y
}

// Block returns the containing block, nil once removed.
func (it *Item) Block() *Block { return it.block }

// Index is the position of the item within its block.
func (it *Item) Index() int { return it.index }

// Timeline returns the owning timeline, nil once removed.
func (it *Item) Timeline() *Timeline {
	if it.block == nil {
		return nil
	}
	return it.block.timeline
}

// IsService reports whether the item is a service entry.
func (it *Item) IsService() bool { return it.Kind == KindService }

// IsRegular reports whether the item carries a stable server id.
func (it *Item) IsRegular() bool { return it.Flags.Has(FlagRegular) }

// HiddenByGroup reports whether the group leader draws this item.
func (it *Item) HiddenByGroup() bool { return it.Flags.Has(FlagHiddenByGroup) }

// HasUserpic reports whether the author badge is shown for the item.
func (it *Item) HasUserpic() bool { return it.Flags.Has(FlagHasUserpic) }

// CanForward reports whether the item may be forwarded.
func (it *Item) CanForward() bool { return it.Flags.Has(FlagCanForward) }

// CanDelete reports whether the item may be deleted.
func (it *Item) CanDelete() bool { return it.Flags.Has(FlagCanDelete) }

// IsMigrateMarker reports whether the item borders a history migration.
func (it *Item) IsMigrateMarker() bool { return it.Flags.Has(FlagMigrateMarker) }

// AttachedToPrev reports whether the item continues the previous item's run.
func (it *Item) AttachedToPrev() bool { return it.attachedToPrev }

// AttachedToNext reports whether the next item continues this item's run.
func (it *Item) AttachedToNext() bool { return it.attachedToNext }

// InOneDayWithPrevious reports whether the previous item shares the calendar day.
func (it *Item) InOneDayWithPrevious() bool { return it.inOneDay }

// PendingResize reports whether the item waits for a new measurement.
func (it *Item) PendingResize() bool { return it.pendingResize }

// Block is a bounded run of consecutive items.
type Block struct {
	items    []*Item
	y        int
	height   int
	index    int
	dirty    bool
	timeline *Timeline
}

// Y is the offset of the block within its timeline.
func (b *Block) Y() int { return b.y }

// Height is the sum of the item heights.
func (b *Block) Height() int { return b.height }

// Index is the position of the block within its timeline.
func (b *Block) Index() int { return b.index }

// Len is the number of items.
func (b *Block) Len() int { return len(b.items) }

// Item returns the item at index i.
func (b *Block) Item(i int) *Item { return b.items[i] }

// Items returns the block's items. The slice must not be modified.
func (b *Block) Items() []*Item { return b.items }

// Timeline returns the owning timeline.
func (b *Block) Timeline() *Timeline { return b.timeline }

func (b *Block) reindexFrom(from int) {
	for i := from; i < len(b.items); i++ {
		b.items[i].block = b
		b.items[i].index = i
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameDay reports whether two items fall on the same local calendar day.
func SameDay(a, b *Item) bool {
	if a == nil || b == nil {
		return false
	}
	return sameDay(a.Date, b.Date)
}
