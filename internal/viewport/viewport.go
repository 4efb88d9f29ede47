// Package viewport maps engine coordinates onto timeline positions.
package viewport

import "github.com/tOgg1/scrollback/internal/timeline"

// VisibleRange is the [Top, Bottom) span of the scroll area in engine px.
type VisibleRange struct {
	Top    int
	Bottom int
}

// Height is the span height.
func (r VisibleRange) Height() int { return r.Bottom - r.Top }

// Empty reports whether the range covers nothing.
func (r VisibleRange) Empty() bool { return r.Bottom <= r.Top }

// Intersects reports whether [top, bottom) overlaps the range.
func (r VisibleRange) Intersects(top, bottom int) bool {
	return top < r.Bottom && bottom > r.Top
}

// Contains reports whether y lies inside the range.
func (r VisibleRange) Contains(y int) bool {
	return y >= r.Top && y < r.Bottom
}

// Pad grows the range by n px on both sides.
func (r VisibleRange) Pad(n int) VisibleRange {
	return VisibleRange{Top: r.Top - n, Bottom: r.Bottom + n}
}

// Layer places a timeline at an absolute offset.
type Layer struct {
	Timeline *timeline.Timeline
	Top      int
}

// Bottom is the offset just past the layer's last item.
func (l Layer) Bottom() int {
	if l.Timeline == nil {
		return l.Top
	}
	return l.Top + l.Timeline.Height()
}

// Usable reports whether the layer has items.
func (l Layer) Usable() bool {
	return l.Timeline != nil && !l.Timeline.IsEmpty()
}

// Position is a resolved block/item pair. The zero value is "not found".
type Position struct {
	Layer      Layer
	BlockIndex int
	ItemIndex  int
	found      bool
}

// Found reports whether the position refers to an item.
func (p Position) Found() bool { return p.found }

// Item returns the referenced item, nil when not found.
func (p Position) Item() *timeline.Item {
	if !p.found {
		return nil
	}
	blocks := p.Layer.Timeline.Blocks()
	if p.BlockIndex >= len(blocks) {
		return nil
	}
	b := blocks[p.BlockIndex]
	if p.ItemIndex >= b.Len() {
		return nil
	}
	return b.Item(p.ItemIndex)
}

// Top is the absolute top of the referenced item.
func (p Position) Top() int {
	it := p.Item()
	if it == nil {
		return 0
	}
	return p.Layer.Top + it.Top()
}
