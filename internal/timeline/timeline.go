package timeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/assert"
	"github.com/tOgg1/scrollback/internal/events"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/models"
)

// Timeline names used by the history view.
const (
	NameLive     = "live"
	NameMigrated = "migrated"
)

const (
	defaultBlockSize    = 100
	defaultAttachWindow = 15 * time.Minute
)

// Timeline is the ordered block list of one history.
type Timeline struct {
	name         string
	blocks       []*Block
	byID         map[ItemID]*Item
	width        int
	height       int
	blockSize    int
	attachWindow time.Duration

	// dirtyFrom is the first block whose offset needs repair, -1 when clean.
	dirtyFrom int

	loadedAtTop    bool
	loadedAtBottom bool

	version   uint64
	publisher events.Publisher
	logger    zerolog.Logger
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithBlockSize bounds the number of items per block.
func WithBlockSize(n int) Option {
	return func(t *Timeline) {
		if n > 0 {
			t.blockSize = n
		}
	}
}

// WithAttachWindow sets the maximum gap between attached items.
func WithAttachWindow(d time.Duration) Option {
	return func(t *Timeline) {
		if d > 0 {
			t.attachWindow = d
		}
	}
}

// WithPublisher publishes mutation notices through p.
func WithPublisher(p events.Publisher) Option {
	return func(t *Timeline) {
		t.publisher = p
	}
}

// WithLogger sets the timeline logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Timeline) {
		t.logger = logger
	}
}

// New creates an empty timeline.
func New(name string, opts ...Option) *Timeline {
	t := &Timeline{
		name:         name,
		byID:         make(map[ItemID]*Item),
		blockSize:    defaultBlockSize,
		attachWindow: defaultAttachWindow,
		dirtyFrom:    -1,
	}
	t.logger = logging.WithTimeline(logging.Component("timeline"), name)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name is the timeline name.
func (t *Timeline) Name() string { return t.name }

// Version changes on every structural mutation.
func (t *Timeline) Version() uint64 { return t.version }

// Len is the number of items.
func (t *Timeline) Len() int { return len(t.byID) }

// IsEmpty reports whether the timeline has no items.
func (t *Timeline) IsEmpty() bool { return len(t.byID) == 0 }

// Width is the last layout width.
func (t *Timeline) Width() int { return t.width }

// BlockSize is the maximum number of items per block.
func (t *Timeline) BlockSize() int { return t.blockSize }

// LoadedAtTop reports whether the oldest item of the history is present.
func (t *Timeline) LoadedAtTop() bool { return t.loadedAtTop }

// LoadedAtBottom reports whether the newest item of the history is present.
func (t *Timeline) LoadedAtBottom() bool { return t.loadedAtBottom }

// SetLoaded records which ends of the history are fully loaded.
func (t *Timeline) SetLoaded(top, bottom bool) {
	t.loadedAtTop = top
	t.loadedAtBottom = bottom
}

// Item resolves id, nil when absent.
func (t *Timeline) Item(id ItemID) *Item {
	return t.byID[id]
}

// Blocks returns the repaired block list. The slice must not be modified.
func (t *Timeline) Blocks() []*Block {
	t.repair()
	return t.blocks
}

// Height is the total height of all blocks.
func (t *Timeline) Height() int {
	t.repair()
	return t.height
}

// ItemTop is the offset of id within the timeline, -1 when absent.
func (t *Timeline) ItemTop(id ItemID) int {
	it := t.byID[id]
	if it == nil {
		return -1
	}
	t.repair()
	return it.Top()
}

// First is the oldest item.
func (t *Timeline) First() *Item {
	if len(t.blocks) == 0 {
		return nil
	}
	return t.blocks[0].items[0]
}

// Last is the newest item.
func (t *Timeline) Last() *Item {
	if len(t.blocks) == 0 {
		return nil
	}
	b := t.blocks[len(t.blocks)-1]
	return b.items[len(b.items)-1]
}

// Next returns the item after it within the timeline.
func (t *Timeline) Next(it *Item) *Item {
	if it == nil || it.block == nil || it.block.timeline != t {
		return nil
	}
	b := it.block
	if it.index+1 < len(b.items) {
		return b.items[it.index+1]
	}
	if b.index+1 < len(t.blocks) {
		return t.blocks[b.index+1].items[0]
	}
	return nil
}

// Prev returns the item before it within the timeline.
func (t *Timeline) Prev(it *Item) *Item {
	if it == nil || it.block == nil || it.block.timeline != t {
		return nil
	}
	b := it.block
	if it.index > 0 {
		return b.items[it.index-1]
	}
	if b.index > 0 {
		prev := t.blocks[b.index-1]
		return prev.items[len(prev.items)-1]
	}
	return nil
}

// Append adds items after the newest item.
func (t *Timeline) Append(items ...*Item) {
	var added []ItemID
	for _, it := range items {
		if !t.admit(it) {
			continue
		}
		var b *Block
		if n := len(t.blocks); n > 0 && len(t.blocks[n-1].items) < t.blockSize {
			b = t.blocks[n-1]
		} else {
			b = &Block{timeline: t, index: len(t.blocks)}
			t.blocks = append(t.blocks, b)
		}
		b.items = append(b.items, it)
		b.reindexFrom(len(b.items) - 1)
		t.markDirty(b.index)
		added = append(added, it.ID)
	}
	t.afterInsert(added)
}

// Prepend adds items, oldest first, before the oldest item.
func (t *Timeline) Prepend(items ...*Item) {
	var admitted []*Item
	for _, it := range items {
		if t.admit(it) {
			admitted = append(admitted, it)
		}
	}
	if len(admitted) == 0 {
		return
	}

	var fresh []*Block
	for start := 0; start < len(admitted); start += t.blockSize {
		end := min(start+t.blockSize, len(admitted))
		b := &Block{timeline: t}
		b.items = append(b.items, admitted[start:end]...)
		b.reindexFrom(0)
		fresh = append(fresh, b)
	}
	t.blocks = append(fresh, t.blocks...)
	t.reindexBlocks(0)
	for i := 0; i <= len(fresh) && i < len(t.blocks); i++ {
		t.blocks[i].dirty = true
	}
	t.dirtyFrom = 0

	added := make([]ItemID, 0, len(admitted))
	for _, it := range admitted {
		added = append(added, it.ID)
	}
	t.afterInsert(added)
}

// InsertAfter places item directly after the item with id after. A zero
// after inserts at the very top.
func (t *Timeline) InsertAfter(after ItemID, item *Item) {
	if after == 0 {
		t.insertAt(nil, 0, item)
		return
	}
	prev := t.byID[after]
	if !assert.Check(prev != nil, "insert after unknown item %d in %s", after, t.name) {
		return
	}
	t.insertAt(prev.block, prev.index+1, item)
}

func (t *Timeline) insertAt(b *Block, at int, item *Item) {
	if b == nil {
		if len(t.blocks) == 0 {
			t.Append(item)
			return
		}
		b, at = t.blocks[0], 0
	}
	if !t.admit(item) {
		return
	}

	b.items = append(b.items, nil)
	copy(b.items[at+1:], b.items[at:])
	b.items[at] = item
	b.reindexFrom(at)

	if len(b.items) > t.blockSize {
		half := len(b.items) / 2
		tail := &Block{timeline: t}
		tail.items = append(tail.items, b.items[half:]...)
		b.items = b.items[:half:half]
		tail.reindexFrom(0)

		t.blocks = append(t.blocks, nil)
		copy(t.blocks[b.index+2:], t.blocks[b.index+1:])
		t.blocks[b.index+1] = tail
		t.reindexBlocks(b.index + 1)
	}
	t.markDirty(b.index)
	t.afterInsert([]ItemID{item.ID})
}

// Remove deletes the item with id. Removing an unknown id is a no-op.
func (t *Timeline) Remove(id ItemID) {
	it := t.byID[id]
	if it == nil {
		return
	}
	b := it.block
	delete(t.byID, id)

	b.items = append(b.items[:it.index], b.items[it.index+1:]...)
	b.reindexFrom(it.index)
	it.block = nil

	if len(b.items) == 0 {
		t.blocks = append(t.blocks[:b.index], t.blocks[b.index+1:]...)
		t.reindexBlocks(b.index)
		b.timeline = nil
		switch {
		case len(t.blocks) == 0:
			t.height = 0
			t.dirtyFrom = -1
		case b.index > 0:
			t.markDirty(b.index - 1)
		default:
			t.markDirty(0)
		}
	} else {
		t.markDirty(b.index)
	}
	t.version++
	t.logger.Debug().Int64("item", int64(id)).Msg("item removed")
	t.publish(models.NoticeItemRemoved, id)
}

// Clear removes every item.
func (t *Timeline) Clear() {
	for _, b := range t.blocks {
		for _, it := range b.items {
			it.block = nil
		}
		b.timeline = nil
	}
	t.blocks = nil
	t.byID = make(map[ItemID]*Item)
	t.height = 0
	t.dirtyFrom = -1
	t.version++
	t.logger.Debug().Msg("history cleared")
	t.publish(models.NoticeHistoryCleared, 0)
}

// ReplaceView swaps the view of id, for example after an edit. Anything
// holding on to the old view is told through a view.removed notice.
func (t *Timeline) ReplaceView(id ItemID, view View) {
	it := t.byID[id]
	if it == nil {
		return
	}
	it.View = view
	it.pendingResize = true
	t.markDirty(it.block.index)
	t.version++
	t.publish(models.NoticeViewRemoved, id)
}

// SetHidden toggles FlagHiddenByGroup and remeasures the item.
func (t *Timeline) SetHidden(id ItemID, hidden bool) {
	it := t.byID[id]
	if it == nil || it.HiddenByGroup() == hidden {
		return
	}
	if hidden {
		it.Flags |= FlagHiddenByGroup
	} else {
		it.Flags &^= FlagHiddenByGroup
	}
	t.RequestResize(id)
}

// RequestResize marks id for remeasurement on the next repair.
func (t *Timeline) RequestResize(id ItemID) {
	it := t.byID[id]
	if it == nil {
		return
	}
	it.pendingResize = true
	t.markDirty(it.block.index)
	t.publish(models.NoticeItemResized, id)
}

// ResizeToWidth lays out every item for width and returns the new height.
// With an unchanged width only items pending a resize are measured.
func (t *Timeline) ResizeToWidth(width int) int {
	if width != t.width {
		t.width = width
		for _, b := range t.blocks {
			b.dirty = true
			for _, it := range b.items {
				it.pendingResize = true
			}
		}
		if len(t.blocks) > 0 {
			t.dirtyFrom = 0
		}
	}
	t.repair()
	return t.height
}

func (t *Timeline) admit(it *Item) bool {
	if !assert.Check(it != nil && it.View != nil, "nil item or view added to %s", t.name) {
		return false
	}
	if !assert.Check(it.ID != 0, "item without id added to %s", t.name) {
		return false
	}
	if !assert.Check(t.byID[it.ID] == nil, "duplicate item %d in %s", it.ID, t.name) {
		return false
	}
	it.pendingResize = true
	t.byID[it.ID] = it
	return true
}

func (t *Timeline) afterInsert(ids []ItemID) {
	if len(ids) == 0 {
		return
	}
	t.version++
	for _, id := range ids {
		t.publish(models.NoticeItemAdded, id)
	}
}

// markDirty flags block i and its successor, whose first item's
// neighbourhood may have changed.
func (t *Timeline) markDirty(i int) {
	if i < 0 || i >= len(t.blocks) {
		return
	}
	t.blocks[i].dirty = true
	if i+1 < len(t.blocks) {
		t.blocks[i+1].dirty = true
	}
	if t.dirtyFrom < 0 || i < t.dirtyFrom {
		t.dirtyFrom = i
	}
}

func (t *Timeline) reindexBlocks(from int) {
	for i := from; i < len(t.blocks); i++ {
		t.blocks[i].index = i
	}
}

// repair recomputes heights, offsets and derived flags from the first dirty
// block onward.
func (t *Timeline) repair() {
	if t.dirtyFrom < 0 {
		return
	}
	y := 0
	if t.dirtyFrom > 0 {
		prev := t.blocks[t.dirtyFrom-1]
		y = prev.y + prev.height
	}
	for i := t.dirtyFrom; i < len(t.blocks); i++ {
		b := t.blocks[i]
		b.y = y
		if b.dirty {
			t.layoutBlock(b)
			b.dirty = false
		}
		y += b.height
	}
	t.height = y
	t.dirtyFrom = -1
}

func (t *Timeline) layoutBlock(b *Block) {
	iy := 0
	for _, it := range b.items {
		if it.pendingResize && t.width > 0 {
			t.measure(it)
		}
		it.y = iy
		iy += it.height
		t.link(t.Prev(it), it)
	}
	b.height = iy
	if b.index+1 < len(t.blocks) {
		t.link(b.items[len(b.items)-1], t.blocks[b.index+1].items[0])
	} else if n := len(b.items); n > 0 {
		b.items[n-1].attachedToNext = false
	}
}

func (t *Timeline) measure(it *Item) {
	h := 0
	if !it.HiddenByGroup() {
		h = max(it.View.ResizeGetHeight(t.width), 0)
	}
	it.height = h
	it.pendingResize = false
}

func (t *Timeline) link(prev, it *Item) {
	if prev == nil {
		it.attachedToPrev = false
		it.inOneDay = false
		return
	}
	it.inOneDay = sameDay(prev.Date, it.Date)
	it.attachedToPrev = t.attaches(prev, it)
	prev.attachedToNext = it.attachedToPrev
}

func (t *Timeline) attaches(prev, it *Item) bool {
	if prev.IsService() || it.IsService() || prev.Author != it.Author {
		return false
	}
	if !sameDay(prev.Date, it.Date) {
		return false
	}
	gap := it.Date.Sub(prev.Date)
	if gap < 0 {
		gap = -gap
	}
	return gap < t.attachWindow
}

func (t *Timeline) publish(typ models.NoticeType, id ItemID) {
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(context.Background(), &models.Notice{
		Type:     typ,
		Timeline: t.name,
		ItemID:   int64(id),
	})
}
