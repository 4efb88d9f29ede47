package pointer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/selection"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// Env is what the machine needs from the history view. Every event
// re-resolves ids through it, so the machine never holds item pointers.
type Env interface {
	// Item resolves id in any timeline, nil when gone.
	Item(id timeline.ItemID) *timeline.Item
	// ItemTop is the absolute top of id, negative when gone.
	ItemTop(id timeline.ItemID) int
	// Locate returns the item nearest to p and whether p lies inside it.
	Locate(p timeline.Point) (*timeline.Item, bool)
	// Next and Prev step across timeline boundaries.
	Next(it *timeline.Item) *timeline.Item
	Prev(it *timeline.Item) *timeline.Item
	// Selection is the committed selection model.
	Selection() *selection.Model
	// ChooseMode reports whether an external "choose messages" mode is on.
	ChooseMode() bool
}

// Config tunes gesture recognition.
type Config struct {
	StartDragDistance   int
	DoubleClickInterval time.Duration
}

// Hover tracks what lies under the pointer.
type Hover struct {
	// Moused is the item nearest to the pointer.
	Moused timeline.ItemID
	// Hovered is the item containing the pointer.
	Hovered timeline.ItemID
	// DragState is the item whose text state was probed last.
	DragState timeline.ItemID
	// Pressed is the item hovered when the button went down.
	Pressed timeline.ItemID

	ActiveLink      *timeline.Link
	ActiveLinkItem  timeline.ItemID
	PressedLink     *timeline.Link
	PressedLinkItem timeline.ItemID
}

// Result reports what a transition changed.
type Result struct {
	Repaint          bool
	SelectionChanged bool
	Activated        *timeline.Link
	StartDrag        []timeline.ItemID
}

func (r *Result) merge(o Result) {
	r.Repaint = r.Repaint || o.Repaint
	r.SelectionChanged = r.SelectionChanged || o.SelectionChanged
	if o.Activated != nil {
		r.Activated = o.Activated
	}
	if o.StartDrag != nil {
		r.StartDrag = o.StartDrag
	}
}

// Machine is the pointer gesture state.
type Machine struct {
	cfg Config

	action           Action
	actionItem       timeline.ItemID
	dragStart        timeline.Point
	pressWasInactive bool
	selectType       timeline.SelectType
	textSymbol       uint16

	tripleClickPoint timeline.Point
	tripleClickUntil time.Time

	anchors       Anchors
	dragSelecting bool

	hover  Hover
	mouse  timeline.Point
	cursor timeline.CursorState

	logger zerolog.Logger
}

// New creates an idle machine.
func New(cfg Config) *Machine {
	return &Machine{
		cfg:    cfg,
		logger: logging.Component("pointer"),
	}
}

// Action is the gesture in progress.
func (m *Machine) Action() Action { return m.action }

// ActionItem is the item the gesture started on.
func (m *Machine) ActionItem() timeline.ItemID { return m.actionItem }

// SelectType is the current text selection granularity.
func (m *Machine) SelectType() timeline.SelectType { return m.selectType }

// Anchors are the current drag-selection ends.
func (m *Machine) Anchors() Anchors { return m.anchors }

// DragSelecting reports whether the drag selects (true) or deselects.
func (m *Machine) DragSelecting() bool { return m.dragSelecting }

// Hover is what lies under the pointer.
func (m *Machine) Hover() Hover { return m.hover }

// Mouse is the last pointer position.
func (m *Machine) Mouse() timeline.Point { return m.mouse }

// Cursor is the text-state cursor under the pointer while idle.
func (m *Machine) Cursor() timeline.CursorState { return m.cursor }

// InSelectionMode reports whether clicks toggle whole-item selection.
func (m *Machine) InSelectionMode(env Env) bool {
	if env.Selection().HasFullSelection() {
		return true
	}
	if m.action == Selecting && m.anchors.Valid() {
		return true
	}
	return env.ChooseMode()
}

// Press starts a gesture.
func (m *Machine) Press(env Env, p timeline.Point, button Button, at time.Time, inactive bool) Result {
	res := m.Move(env, p)
	if button != ButtonLeft {
		return res
	}
	model := env.Selection()

	m.hover.Pressed = m.hover.Hovered
	m.hover.PressedLink, m.hover.PressedLinkItem = m.hover.ActiveLink, m.hover.ActiveLinkItem
	m.action = None
	m.actionItem = m.hover.Moused
	m.dragStart = m.toLocal(env, p, m.actionItem)
	m.pressWasInactive = inactive

	if m.hover.PressedLink != nil {
		m.action = PrepareDrag
	} else if m.InSelectionMode(env) {
		if _, selected := model.Get(m.hover.DragState); selected && m.hover.DragState != 0 && m.hover.Hovered != 0 {
			m.action = PrepareDrag
		} else if !inactive {
			m.action = PrepareSelect
		}
	}

	if it := env.Item(m.actionItem); m.action == None && it != nil {
		var state timeline.TextState
		lookup := timeline.StateRequest{LookupSymbol: true}
		if at.Before(m.tripleClickUntil) && manhattan(p, m.tripleClickPoint) < m.cfg.StartDragDistance {
			state = it.View.TextState(m.dragStart, lookup)
			if state.Cursor == timeline.CursorText && !model.HasFullSelection() {
				model.SetText(m.actionItem, timeline.TextSelection{From: state.Symbol, To: state.Symbol})
				m.textSymbol = state.Symbol
				m.action = Selecting
				m.selectType = timeline.SelectParagraphs
				res.SelectionChanged = true
				res.merge(m.Move(env, m.mouse))
				m.tripleClickUntil = at.Add(m.cfg.DoubleClickInterval)
			}
		} else if m.hover.Pressed != 0 {
			state = it.View.TextState(m.dragStart, lookup)
		}

		if m.selectType != timeline.SelectParagraphs {
			if m.hover.Pressed != 0 {
				m.textSymbol = state.Symbol
				if m.uponSelected(model, state) {
					m.action = PrepareDrag
				} else if !inactive {
					if state.AfterSymbol {
						m.textSymbol++
					}
					if !model.HasFullSelection() {
						model.SetText(m.actionItem, timeline.TextSelection{From: m.textSymbol, To: m.textSymbol})
						m.action = Selecting
						res.Repaint = true
						res.SelectionChanged = true
					} else {
						m.action = PrepareSelect
					}
				}
			} else if !inactive {
				m.action = Selecting
			}
		}
	}

	if m.actionItem == 0 {
		m.action = None
	} else if m.action == None {
		m.actionItem = 0
	}
	m.logger.Debug().
		Stringer("action", m.action).
		Int64("item", int64(m.actionItem)).
		Msg("press")
	return res
}

// DoubleClick arrives instead of a second press and widens the text
// selection to a word.
func (m *Machine) DoubleClick(env Env, p timeline.Point, at time.Time) Result {
	res := m.Press(env, p, ButtonLeft, at, false)
	model := env.Selection()
	_, _, partial := model.Partial()
	eligible := (m.action == Selecting && partial) || (m.action == None && !model.HasFullSelection())
	if !eligible ||
		m.selectType != timeline.SelectLetters || m.actionItem == 0 {
		return res
	}

	it := env.Item(m.actionItem)
	state := it.View.TextState(m.dragStart, timeline.StateRequest{LookupSymbol: true})
	if state.Cursor != timeline.CursorText {
		return res
	}
	m.textSymbol = state.Symbol
	m.selectType = timeline.SelectWords
	if m.action == None {
		m.action = Selecting
		model.SetText(m.actionItem, timeline.TextSelection{From: state.Symbol, To: state.Symbol})
		res.SelectionChanged = true
	}
	res.merge(m.Move(env, p))
	m.tripleClickPoint = p
	m.tripleClickUntil = at.Add(m.cfg.DoubleClickInterval)
	return res
}

// Move tracks the pointer and extends whatever gesture is in progress.
func (m *Machine) Move(env Env, p timeline.Point) Result {
	var res Result
	m.mouse = p
	model := env.Selection()

	if m.actionItem != 0 && env.Item(m.actionItem) == nil {
		m.logger.Debug().Int64("item", int64(m.actionItem)).Msg("action item vanished")
		m.Cancel()
		res.Repaint = true
	}

	it, inside := env.Locate(p)
	var local timeline.Point
	m.hover.Moused, m.hover.Hovered = 0, 0
	if it != nil {
		m.hover.Moused = it.ID
		if inside {
			m.hover.Hovered = it.ID
		}
		local = m.toLocal(env, p, it.ID)
	}

	partialID, _, partial := model.Partial()
	selectingText := it != nil && it.ID == m.actionItem && it.ID == m.hover.Hovered &&
		partial && partialID == m.actionItem

	var state timeline.TextState
	if it != nil {
		if it.ID != m.actionItem || manhattan(local, m.dragStart) >= m.cfg.StartDragDistance {
			switch m.action {
			case PrepareDrag:
				m.action = Dragging
				res.StartDrag = m.dragItems(model)
				m.logger.Debug().Int("items", len(res.StartDrag)).Msg("drag started")
			case PrepareSelect:
				m.action = Selecting
			}
		}
		req := timeline.StateRequest{LookupSymbol: m.action == Selecting}
		if m.action != Selecting {
			selectingText = false
		}
		state = it.View.TextState(local, req)
		m.hover.DragState = it.ID
	} else {
		m.hover.DragState = 0
	}

	if state.Link != nil {
		m.hover.ActiveLink, m.hover.ActiveLinkItem = state.Link, it.ID
	} else {
		m.hover.ActiveLink, m.hover.ActiveLinkItem = nil, 0
	}

	if m.action == None {
		m.cursor = state.Cursor
	} else if it != nil && m.action == Selecting {
		if selectingText {
			res.merge(m.extendText(env, model, state))
		} else {
			res.merge(m.extendItems(env, model, it, local))
		}
	}

	if m.action != Selecting {
		res.merge(m.updateAnchors(env, 0, 0, false))
	}
	return res
}

// Release finishes the gesture.
func (m *Machine) Release(env Env, p timeline.Point, button Button) Result {
	res := m.Move(env, p)
	model := env.Selection()

	var activated *timeline.Link
	if m.hover.PressedLink != nil && m.hover.PressedLink == m.hover.ActiveLink &&
		m.hover.PressedLinkItem == m.hover.ActiveLinkItem {
		activated = m.hover.PressedLink
	}
	m.hover.PressedLink, m.hover.PressedLinkItem = nil, 0
	if m.action == Dragging {
		activated = nil
	}
	m.hover.Pressed = 0

	if activated != nil {
		m.Cancel()
		res.Activated = activated
		res.Repaint = true
		m.logger.Debug().Str("url", activated.URL).Msg("link activated")
		return res
	}

	switch {
	case m.action == PrepareSelect && !m.pressWasInactive && m.InSelectionMode(env):
		model.ChangeAsGroup(m.actionItem, selection.Invert)
		res.SelectionChanged = true
	case m.action == PrepareDrag && !m.pressWasInactive && m.hover.DragState != 0 && button != ButtonRight:
		id := m.hover.DragState
		sel, ok := model.Get(id)
		it := env.Item(id)
		switch {
		case ok && sel.IsFull():
			model.Remove(id)
		case !ok && it != nil && !it.IsService() && it.IsRegular() && model.HasFullSelection():
			if model.Len() < model.Max() {
				model.Change(id, selection.Select)
			}
		default:
			model.Clear()
		}
		res.SelectionChanged = true
	case m.action == Selecting:
		if m.anchors.Valid() {
			m.ApplyDragSelection(env, model)
			m.anchors.Clear()
			res.SelectionChanged = true
		} else if !model.Empty() && !m.pressWasInactive {
			if _, sel, ok := model.Partial(); ok && sel.From == sel.To {
				model.Clear()
				res.SelectionChanged = true
			}
		}
	}

	m.action = None
	m.actionItem = 0
	m.selectType = timeline.SelectLetters
	res.Repaint = true
	return res
}

// Cancel abandons the gesture without touching the selection.
func (m *Machine) Cancel() {
	m.actionItem = 0
	m.action = None
	m.dragStart = timeline.Point{}
	m.anchors.Clear()
	m.dragSelecting = false
}

// ItemRemoved drops every reference to a removed item.
func (m *Machine) ItemRemoved(env Env, id timeline.ItemID) Result {
	var res Result
	model := env.Selection()
	if _, ok := model.Get(id); ok {
		model.Remove(id)
		res.SelectionChanged = true
	}
	if m.actionItem == id {
		m.logger.Debug().Int64("item", int64(id)).Msg("action item removed, cancelling")
		m.Cancel()
	}
	if m.hover.DragState == id {
		m.hover.DragState = 0
	}
	if m.hover.Pressed == id {
		m.hover.Pressed = 0
	}
	if m.anchors.From == id || m.anchors.To == id {
		m.anchors.Clear()
	}
	res.Repaint = true
	res.merge(m.Move(env, m.mouse))
	return res
}

// ViewRemoved forgets anchors held on a view that was torn down.
func (m *Machine) ViewRemoved(id timeline.ItemID) {
	m.anchors.Forget(id)
}

// ApplyDragSelection commits the drag range into model.
func (m *Machine) ApplyDragSelection(env Env, model *selection.Model) {
	fromY, toY, ok := m.DragRange(env)
	if !ok {
		return
	}
	if _, _, partial := model.Partial(); partial {
		model.Clear()
	}
	from, to := env.Item(m.anchors.From), env.Item(m.anchors.To)

	if !m.dragSelecting {
		for _, id := range model.Items() {
			y := env.ItemTop(id)
			if y < 0 || (y >= fromY && y < toY) {
				model.ChangeAsGroup(id, selection.Deselect)
			}
		}
		return
	}

	fromTL, toTL := from.Timeline(), to.Timeline()
	if fromTL != toTL {
		blocks := fromTL.Blocks()
		last := blocks[len(blocks)-1]
		model.AddRange(fromTL, from.Block().Index(), from.Index(), len(blocks)-1, last.Len()-1)
		// The first item of toTL is skipped when it duplicates the junction.
		if start := env.Next(last.Item(last.Len() - 1)); start != nil && start.Timeline() == toTL {
			model.AddRange(toTL, start.Block().Index(), start.Index(), to.Block().Index(), to.Index())
		}
		return
	}
	model.AddRange(fromTL, from.Block().Index(), from.Index(), to.Block().Index(), to.Index())
}

// DragRange is the [top, bottom) span covered by the drag anchors.
func (m *Machine) DragRange(env Env) (int, int, bool) {
	if !m.anchors.Valid() {
		return 0, 0, false
	}
	to := env.Item(m.anchors.To)
	fromY, toY := env.ItemTop(m.anchors.From), env.ItemTop(m.anchors.To)
	if to == nil || fromY < 0 || toY < 0 {
		return 0, 0, false
	}
	return fromY, toY + to.Height(), true
}

func (m *Machine) extendText(env Env, model *selection.Model, state timeline.TextState) Result {
	var res Result
	second := state.Symbol
	if state.AfterSymbol && m.selectType == timeline.SelectLetters {
		second++
	}
	sel := timeline.TextSelection{From: min(second, m.textSymbol), To: max(second, m.textSymbol)}
	if m.selectType != timeline.SelectLetters {
		if it := env.Item(m.actionItem); it != nil {
			sel = it.View.AdjustSelection(sel, m.selectType)
		}
	}
	if current, _ := model.Get(m.actionItem); current != sel {
		model.SetText(m.actionItem, sel)
		res.Repaint = true
		res.SelectionChanged = true
	}
	res.merge(m.updateAnchors(env, 0, 0, false))
	return res
}

func (m *Machine) extendItems(env Env, model *selection.Model, it *timeline.Item, local timeline.Point) Result {
	origin := env.Item(m.actionItem)
	if origin == nil {
		return Result{}
	}
	dist := m.cfg.StartDragDistance
	down := env.ItemTop(origin.ID) < env.ItemTop(it.ID) ||
		(origin == it && m.dragStart.Y < local.Y)

	from, to := origin, it
	if m.dragStart.Y < 0 || m.dragStart.Y >= origin.Height() {
		if down {
			if m.dragStart.Y >= origin.Height() || (it == origin && (local.Y < m.dragStart.Y+dist || local.Y < 0)) {
				from = m.stepOrNil(env, from, to, true)
			}
		} else if m.dragStart.Y < 0 || (it == origin && (local.Y >= m.dragStart.Y-dist || local.Y >= origin.Height())) {
			from = m.stepOrNil(env, from, to, false)
		}
	}
	if origin != it {
		if down {
			if local.Y < 0 {
				to = m.stepOrNil(env, to, from, false)
			}
		} else if local.Y >= it.Height() {
			to = m.stepOrNil(env, to, from, true)
		}
	}

	selecting := false
	first := from
	for first != nil && (!first.IsRegular() || first.IsService()) {
		if first == to {
			first = nil
		} else if down {
			first = env.Next(first)
		} else {
			first = env.Prev(first)
		}
	}
	if first != nil {
		sel, ok := model.Get(first.ID)
		selecting = !ok || !sel.IsFull()
	}
	return m.updateAnchors(env, idOf(from), idOf(to), selecting)
}

// stepOrNil moves it one item towards the other end, or drops it when both
// ends coincide.
func (m *Machine) stepOrNil(env Env, it, other *timeline.Item, down bool) *timeline.Item {
	if it == nil || other == nil || it == other {
		return nil
	}
	if down {
		return env.Next(it)
	}
	return env.Prev(it)
}

func (m *Machine) updateAnchors(env Env, from, to timeline.ItemID, selecting bool) Result {
	next := m.anchors
	next.Update(from, to, env.ItemTop)
	if next == m.anchors && m.dragSelecting == selecting {
		return Result{}
	}
	m.anchors = next
	m.dragSelecting = selecting
	return Result{Repaint: true}
}

func (m *Machine) uponSelected(model *selection.Model, state timeline.TextState) bool {
	if state.Cursor != timeline.CursorText {
		return false
	}
	id, sel, ok := model.Partial()
	if !ok || id != m.actionItem {
		return false
	}
	return m.textSymbol >= sel.From && m.textSymbol < sel.To
}

func (m *Machine) dragItems(model *selection.Model) []timeline.ItemID {
	if m.hover.PressedLink == nil && model.IsSelected(m.actionItem) {
		var ids []timeline.ItemID
		for _, id := range model.Items() {
			if model.IsSelected(id) {
				ids = append(ids, id)
			}
		}
		return ids
	}
	if m.actionItem == 0 {
		return nil
	}
	return []timeline.ItemID{m.actionItem}
}

func (m *Machine) toLocal(env Env, p timeline.Point, id timeline.ItemID) timeline.Point {
	if id == 0 {
		return timeline.Point{}
	}
	return timeline.Point{X: p.X, Y: p.Y - env.ItemTop(id)}
}

func idOf(it *timeline.Item) timeline.ItemID {
	if it == nil {
		return 0
	}
	return it.ID
}
