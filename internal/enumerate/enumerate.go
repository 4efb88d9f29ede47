// Package enumerate walks the items, userpics and floating dates that
// intersect a visible range.
package enumerate

import (
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

// Direction is the order items are visited in.
type Direction int

const (
	TopToBottom Direction = iota
	BottomToTop
)

func (d Direction) String() string {
	if d == BottomToTop {
		return "bottom-to-top"
	}
	return "top-to-bottom"
}

// Visitor receives an item with its absolute span. Returning false stops
// the walk of the current timeline.
type Visitor func(it *timeline.Item, top, bottom int) bool

// ItemsInHistory visits every item of layer with top < rng.Bottom and
// bottom > rng.Top; an empty range visits nothing. It reports false when
// the visitor stopped the walk.
func ItemsInHistory(layer viewport.Layer, rng viewport.VisibleRange, dir Direction, visit Visitor) bool {
	if !layer.Usable() {
		return true
	}
	tl := layer.Timeline
	blocks := tl.Blocks()
	if rng.Empty() || !rng.Intersects(layer.Top, layer.Top+tl.Height()) {
		return true
	}

	if dir == TopToBottom {
		edge := rng.Top - layer.Top
		bi := timeline.BinarySearchBlocksOrItems(blocks, edge, true)
		ii := timeline.BinarySearchBlocksOrItems(blocks[bi].Items(), edge-blocks[bi].Y(), true)
		for ; bi < len(blocks); bi, ii = bi+1, 0 {
			b := blocks[bi]
			items := b.Items()
			for ; ii < len(items); ii++ {
				it := items[ii]
				top := layer.Top + b.Y() + it.Y()
				bottom := top + it.Height()
				if top >= rng.Bottom {
					return true
				}
				if bottom > rng.Top && !visit(it, top, bottom) {
					return false
				}
				if bottom >= rng.Bottom {
					return true
				}
			}
		}
		return true
	}

	edge := rng.Bottom - layer.Top
	bi := timeline.BinarySearchBlocksOrItems(blocks, edge, false)
	ii := timeline.BinarySearchBlocksOrItems(blocks[bi].Items(), edge-blocks[bi].Y(), false)
	for bi >= 0 {
		b := blocks[bi]
		items := b.Items()
		for ; ii >= 0; ii-- {
			it := items[ii]
			top := layer.Top + b.Y() + it.Y()
			bottom := top + it.Height()
			if bottom <= rng.Top {
				return true
			}
			if top < rng.Bottom && !visit(it, top, bottom) {
				return false
			}
			if top <= rng.Top {
				return true
			}
		}
		if bi--; bi >= 0 {
			ii = blocks[bi].Len() - 1
		}
	}
	return true
}

// Items walks several layers ordered top to bottom. Bottom-to-top walks
// visit the layers in reverse. A visitor stop ends the current layer only.
func Items(layers []viewport.Layer, rng viewport.VisibleRange, dir Direction, visit Visitor) {
	if dir == TopToBottom {
		for _, layer := range layers {
			ItemsInHistory(layer, rng, dir, visit)
		}
		return
	}
	for i := len(layers) - 1; i >= 0; i-- {
		ItemsInHistory(layers[i], rng, dir, visit)
	}
}
