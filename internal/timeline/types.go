// Package timeline holds the block-structured item model of one history.
//
// A Timeline is an ordered list of bounded Blocks, each an ordered list of
// Items. Every block caches its offset within the timeline and every item its
// offset within its block, so a pixel coordinate maps to an item in two binary
// searches. Offsets are repaired lazily by the next query after a mutation.
package timeline

// ItemID identifies an item. IDs are unique across every timeline of one
// history view and their numeric order is the stable selection order.
type ItemID int64

// GroupID identifies an atomic group of items (an album). Zero means none.
type GroupID int64

// Kind is the closed set of item kinds.
type Kind int

const (
	KindMessage Kind = iota
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Flags carries per-item capabilities.
type Flags uint16

const (
	// FlagRegular marks items with a stable server id. Only regular items
	// take part in whole-item selection.
	FlagRegular Flags = 1 << iota
	// FlagHiddenByGroup marks group members drawn by their group leader.
	FlagHiddenByGroup
	FlagHasUserpic
	FlagCanForward
	FlagCanDelete
	// FlagMigrateMarker marks the items on either side of a history migration.
	FlagMigrateMarker
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Point is a position in item-local or engine coordinates.
type Point struct {
	X int
	Y int
}

// CursorState is what lies under a text-state probe.
type CursorState int

const (
	CursorNone CursorState = iota
	CursorText
	CursorLink
)

// SelectType is the granularity of a text selection gesture.
type SelectType int

const (
	SelectLetters SelectType = iota
	SelectWords
	SelectParagraphs
)

func (t SelectType) String() string {
	switch t {
	case SelectWords:
		return "words"
	case SelectParagraphs:
		return "paragraphs"
	default:
		return "letters"
	}
}

// StateRequest tunes a TextState probe.
type StateRequest struct {
	// LookupSymbol asks for the symbol index under the point.
	LookupSymbol bool
}

// Link is an activatable link inside an item.
type Link struct {
	URL string
}

// TextState is the answer of a View to a point probe.
type TextState struct {
	Cursor      CursorState
	Symbol      uint16
	AfterSymbol bool
	Link        *Link
}

// TextSelection is a symbol range [From, To) within one item's text.
type TextSelection struct {
	From uint16
	To   uint16
}

// FullSelection selects the whole item rather than a text range.
var FullSelection = TextSelection{From: 0xFFFF, To: 0xFFFF}

// IsFull reports whether the selection covers the whole item.
func (s TextSelection) IsFull() bool {
	return s == FullSelection
}

// Empty reports whether a text range selects nothing.
func (s TextSelection) Empty() bool {
	return !s.IsFull() && s.From >= s.To
}

// View is the per-item content collaborator. It owns layout and text; the
// engine only asks for heights, hit tests and text.
type View interface {
	// ResizeGetHeight lays the item out for width and returns its height.
	ResizeGetHeight(width int) int
	// TextState probes an item-local point.
	TextState(p Point, req StateRequest) TextState
	// Text is the full plain text.
	Text() string
	// SelectedText returns the text covered by a partial selection.
	SelectedText(sel TextSelection) string
	// AdjustSelection widens a range to word or paragraph boundaries.
	AdjustSelection(sel TextSelection, kind SelectType) TextSelection
}

// HeavyView is implemented by views owning resources that may be unloaded
// when they scroll far away.
type HeavyView interface {
	UnloadHeavyPart()
}
