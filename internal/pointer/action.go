// Package pointer is the mouse and touch action state machine of a history
// view: press, drag, text and item selection gestures, link activation.
package pointer

import "github.com/tOgg1/scrollback/internal/timeline"

// Action is the gesture in progress.
type Action int

const (
	None Action = iota
	PrepareDrag
	PrepareSelect
	Dragging
	Selecting
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case PrepareDrag:
		return "prepare-drag"
	case PrepareSelect:
		return "prepare-select"
	case Dragging:
		return "dragging"
	case Selecting:
		return "selecting"
	default:
		return "unknown"
	}
}

// Button is a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Anchors are the two ends of an item drag-selection, ordered by top.
type Anchors struct {
	From timeline.ItemID
	To   timeline.ItemID
}

// Valid reports whether both ends are set.
func (a Anchors) Valid() bool {
	return a.From != 0 && a.To != 0
}

// Update sets the ends and swaps them when from lies below to. top
// resolves an id to its absolute top, negative when unknown.
func (a *Anchors) Update(from, to timeline.ItemID, top func(timeline.ItemID) int) {
	a.From, a.To = from, to
	fromY, toY := top(from), top(to)
	if fromY >= 0 && toY >= 0 && fromY > toY {
		a.From, a.To = a.To, a.From
	}
}

// Forget clears whichever end refers to id.
func (a *Anchors) Forget(id timeline.ItemID) {
	if a.From == id {
		a.From = 0
	}
	if a.To == id {
		a.To = 0
	}
}

// Clear drops both ends.
func (a *Anchors) Clear() {
	a.From, a.To = 0, 0
}

func manhattan(a, b timeline.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
