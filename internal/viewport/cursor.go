package viewport

import "github.com/tOgg1/scrollback/internal/timeline"

const defaultStepBudget = 64

type cursorState struct {
	version uint64
	block   int
	item    int
}

// Cursor remembers the last resolved position per timeline so consecutive
// lookups near each other cost a few steps instead of a search.
type Cursor struct {
	budget int
	states map[*timeline.Timeline]*cursorState
	cold   int
}

// NewCursor creates a cursor that steps at most budget times before falling
// back to binary search.
func NewCursor(budget int) *Cursor {
	if budget <= 0 {
		budget = defaultStepBudget
	}
	return &Cursor{
		budget: budget,
		states: make(map[*timeline.Timeline]*cursorState),
	}
}

// Invalidate forgets every remembered position.
func (c *Cursor) Invalidate() {
	clear(c.states)
}

// Forget drops the remembered position for one timeline.
func (c *Cursor) Forget(tl *timeline.Timeline) {
	delete(c.states, tl)
}

// AdjustCurrent resolves y to the item whose span contains it, clamping to
// the first or last item outside the layers. Layers are ordered top to
// bottom; empty layers are skipped.
func (c *Cursor) AdjustCurrent(y int, layers ...Layer) Position {
	var layer Layer
	found := false
	for _, l := range layers {
		if !l.Usable() {
			continue
		}
		if !found || y >= l.Top {
			layer = l
			found = true
		}
	}
	if !found {
		return Position{}
	}

	local := y - layer.Top
	tl := layer.Timeline
	blocks := tl.Blocks()

	state := c.states[tl]
	if state == nil || state.version != tl.Version() {
		state = c.coldLookup(tl, blocks, local)
	} else {
		block, ok := step(blocks, state.block, local, c.budget)
		if ok {
			items := blocks[block].Items()
			start := state.item
			if block != state.block {
				start = 0
				if block < state.block {
					start = len(items) - 1
				}
			}
			var item int
			if item, ok = step(items, start, local-blocks[block].Y(), c.budget); ok {
				state.block, state.item = block, item
			}
		}
		if !ok {
			state = c.coldLookup(tl, blocks, local)
		}
	}

	return Position{
		Layer:      layer,
		BlockIndex: state.block,
		ItemIndex:  state.item,
		found:      true,
	}
}

func (c *Cursor) coldLookup(tl *timeline.Timeline, blocks []*timeline.Block, y int) *cursorState {
	c.cold++
	block := timeline.BinarySearchBlocksOrItems(blocks, y, true)
	item := timeline.BinarySearchBlocksOrItems(blocks[block].Items(), y-blocks[block].Y(), true)
	state := &cursorState{version: tl.Version(), block: block, item: item}
	c.states[tl] = state
	return state
}

// step walks from index from to the last entry with Y() <= y, giving up
// after budget moves.
func step[T timeline.Offsetter](list []T, from, y, budget int) (int, bool) {
	i := min(max(from, 0), len(list)-1)
	steps := 0
	for i > 0 && list[i].Y() > y {
		i--
		if steps++; steps > budget {
			return 0, false
		}
	}
	for i+1 < len(list) && list[i+1].Y() <= y {
		i++
		if steps++; steps > budget {
			return 0, false
		}
	}
	return i, true
}

// ItemAt returns the item whose span contains y, or nil.
func (c *Cursor) ItemAt(y int, layers ...Layer) *timeline.Item {
	pos := c.AdjustCurrent(y, layers...)
	it := pos.Item()
	if it == nil {
		return nil
	}
	top := pos.Layer.Top + it.Top()
	if y < top || y >= top+it.Height() {
		return nil
	}
	return it
}
