// Package historyview is the event-driven engine behind a scrollable message
// history: it places the migrated and live timelines, resolves hit tests,
// drives the pointer machine and produces frames.
package historyview

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/assert"
	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/enumerate"
	"github.com/tOgg1/scrollback/internal/events"
	"github.com/tOgg1/scrollback/internal/heavy"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/models"
	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/selection"
	"github.com/tOgg1/scrollback/internal/timeline"
	"github.com/tOgg1/scrollback/internal/viewport"
)

// Engine owns the view state of one history. It is not safe for concurrent
// use; every call must come from the host's event loop.
type Engine struct {
	cfg     config.EngineConfig
	metrics enumerate.Metrics

	live     *timeline.Timeline
	migrated *timeline.Timeline
	groups   timeline.Groups

	cursor  *viewport.Cursor
	sel     *selection.Model
	pointer *pointer.Machine
	touch   *pointer.Touch
	heavy   *heavy.Manager

	publisher events.Publisher
	subID     string
	now       func() time.Time
	logger    zerolog.Logger

	width      int
	scrollTop  int
	viewHeight int
	mouse      timeline.Point
	chooseMode bool
	dates      bool

	gens    [timerCount]uint64
	running [timerCount]bool
	pending Effects
}

var _ pointer.Env = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithMigrated places an older history above the live one.
func WithMigrated(tl *timeline.Timeline) Option {
	return func(e *Engine) { e.migrated = tl }
}

// WithGroups resolves item groups for selection.
func WithGroups(groups timeline.Groups) Option {
	return func(e *Engine) {
		if groups != nil {
			e.groups = groups
		}
	}
}

// WithPublisher subscribes the engine to removal notices. It should be the
// publisher the timelines were created with.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithLogger overrides the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock overrides the time source used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine over live.
func New(cfg *config.Config, live *timeline.Timeline, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if !assert.Check(live != nil, "history view needs a live timeline") {
		live = timeline.New(timeline.NameLive)
	}
	e := &Engine{
		cfg: cfg.Engine,
		metrics: enumerate.Metrics{
			PhotoSize:            cfg.Metrics.PhotoSize,
			UserpicMinBottomSkip: cfg.Metrics.UserpicMinBottomSkip,
			DateHeight:           cfg.Metrics.DateHeight,
			DateMarginTop:        cfg.Metrics.DateMarginTop,
		},
		live:   live,
		groups: timeline.NoGroups{},
		cursor: viewport.NewCursor(cfg.Engine.CursorStepBudget),
		now:    time.Now,
		logger: logging.Component("historyview"),
		dates:  true,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.sel = selection.New(cfg.Engine.MaxSelectedItems, e.Item, e.groups)
	e.pointer = pointer.New(pointer.Config{
		StartDragDistance:   cfg.Engine.StartDragDistance,
		DoubleClickInterval: cfg.Engine.DoubleClickInterval,
	})
	e.touch = pointer.NewTouch(cfg.Engine.StartDragDistance, cfg.Engine.TouchDeceleration)
	e.heavy = heavy.New(e.span)

	if e.publisher != nil {
		e.subID = "historyview-" + uuid.NewString()
		filter := events.Filter{Types: []models.NoticeType{
			models.NoticeItemRemoved,
			models.NoticeViewRemoved,
			models.NoticeHistoryCleared,
		}}
		if err := e.publisher.Subscribe(e.subID, filter, e.onNotice); err != nil {
			e.logger.Warn().Err(err).Msg("failed to subscribe to notices")
			e.subID = ""
		}
	}
	return e
}

// Close detaches the engine from its publisher.
func (e *Engine) Close() {
	if e.publisher != nil && e.subID != "" {
		_ = e.publisher.Unsubscribe(e.subID)
		e.subID = ""
	}
}

// Live is the live timeline.
func (e *Engine) Live() *timeline.Timeline { return e.live }

// Migrated is the migrated timeline, nil when there is none.
func (e *Engine) Migrated() *timeline.Timeline { return e.migrated }

// Selection is the committed selection.
func (e *Engine) Selection() *selection.Model { return e.sel }

// Pointer exposes the gesture state.
func (e *Engine) Pointer() *pointer.Machine { return e.pointer }

// Heavy exposes the heavy-resource registry.
func (e *Engine) Heavy() *heavy.Manager { return e.heavy }

// ChooseMode reports whether clicks toggle items without a prior selection.
func (e *Engine) ChooseMode() bool { return e.chooseMode }

// SetChooseMode toggles choose mode.
func (e *Engine) SetChooseMode(on bool) Effects {
	if e.chooseMode == on {
		return Effects{}
	}
	e.chooseMode = on
	return Effects{Repaint: true}
}

// InSelectionMode reports whether clicks toggle whole items.
func (e *Engine) InSelectionMode() bool {
	return e.pointer.InSelectionMode(e)
}

// DatesVisible reports whether floating dates are shown.
func (e *Engine) DatesVisible() bool { return e.dates }

func (e *Engine) migratedUsable() bool {
	return e.migrated != nil && !e.migrated.IsEmpty()
}

// MigratedTop is where the migrated timeline starts.
func (e *Engine) MigratedTop() int { return 0 }

// HistoryTop is where the live timeline starts. When the first live item
// duplicates the last migrated one it overlaps it.
func (e *Engine) HistoryTop() int {
	if !e.migratedUsable() {
		return 0
	}
	return e.MigratedTop() + e.migrated.Height() - e.skipHeight()
}

// HistoryDrawTop is where painting of the live timeline starts.
func (e *Engine) HistoryDrawTop() int {
	return e.HistoryTop() + e.skipHeight()
}

func (e *Engine) skipHeight() int {
	return enumerate.SkipHeight(e.migrated, e.live)
}

// Height is the total content height.
func (e *Engine) Height() int {
	if e.live.IsEmpty() {
		if e.migratedUsable() {
			return e.MigratedTop() + e.migrated.Height()
		}
		return 0
	}
	return e.HistoryTop() + e.live.Height()
}

// VisibleRange is the current scroll window.
func (e *Engine) VisibleRange() viewport.VisibleRange {
	return viewport.VisibleRange{Top: e.scrollTop, Bottom: e.scrollTop + e.viewHeight}
}

func (e *Engine) maxScroll() int {
	return max(e.Height()-e.viewHeight, 0)
}

func (e *Engine) layers() []viewport.Layer {
	out := make([]viewport.Layer, 0, 2)
	if e.migrated != nil {
		out = append(out, viewport.Layer{Timeline: e.migrated, Top: e.MigratedTop()})
	}
	return append(out, viewport.Layer{Timeline: e.live, Top: e.HistoryTop()})
}

// hitLayers restricts hit tests above the draw top to the migrated timeline.
func (e *Engine) hitLayers(y int) []viewport.Layer {
	if e.migratedUsable() && y < e.HistoryDrawTop() {
		return []viewport.Layer{{Timeline: e.migrated, Top: e.MigratedTop()}}
	}
	return e.layers()
}

// Item resolves id in either timeline.
func (e *Engine) Item(id timeline.ItemID) *timeline.Item {
	if it := e.live.Item(id); it != nil {
		return it
	}
	if e.migrated != nil {
		return e.migrated.Item(id)
	}
	return nil
}

// ItemTop is the absolute top of id, -1 when it does not exist.
func (e *Engine) ItemTop(id timeline.ItemID) int {
	if y := e.live.ItemTop(id); y >= 0 {
		return e.HistoryTop() + y
	}
	if e.migrated != nil {
		if y := e.migrated.ItemTop(id); y >= 0 {
			return e.MigratedTop() + y
		}
	}
	return -1
}

// ItemAt returns the item under the absolute point p, or nil.
func (e *Engine) ItemAt(p timeline.Point) *timeline.Item {
	return e.cursor.ItemAt(p.Y, e.hitLayers(p.Y)...)
}

// Locate returns the item nearest to the absolute point p and whether p
// lies inside it.
func (e *Engine) Locate(p timeline.Point) (*timeline.Item, bool) {
	pos := e.cursor.AdjustCurrent(p.Y, e.hitLayers(p.Y)...)
	it := pos.Item()
	if it == nil {
		return nil, false
	}
	top := pos.Top()
	return it, p.Y >= top && p.Y < top+it.Height()
}

// Next is the item below it, crossing from migrated into live.
func (e *Engine) Next(it *timeline.Item) *timeline.Item {
	tl := it.Timeline()
	if tl == nil {
		return nil
	}
	if next := tl.Next(it); next != nil || tl != e.migrated {
		return next
	}
	first := e.live.First()
	if first != nil && e.skipHeight() > 0 {
		first = e.live.Next(first)
	}
	return first
}

// Prev is the item above it, crossing from live into migrated.
func (e *Engine) Prev(it *timeline.Item) *timeline.Item {
	tl := it.Timeline()
	if tl == nil {
		return nil
	}
	prev := tl.Prev(it)
	if tl != e.live || !e.migratedUsable() {
		return prev
	}
	if prev == nil || (prev == e.live.First() && e.skipHeight() > 0) {
		return e.migrated.Last()
	}
	return prev
}

func (e *Engine) span(id timeline.ItemID) (int, int, bool) {
	top := e.ItemTop(id)
	if top < 0 {
		return 0, 0, false
	}
	return top, top + e.Item(id).Height(), true
}

// Pending returns and clears effects produced by notices outside Handle.
func (e *Engine) Pending() Effects {
	fx := e.pending
	e.pending = Effects{}
	return fx
}

func (e *Engine) onNotice(n *models.Notice) {
	id := timeline.ItemID(n.ItemID)
	switch n.Type {
	case models.NoticeItemRemoved:
		e.pending.Merge(e.ItemRemoved(id))
	case models.NoticeViewRemoved:
		e.pending.Merge(e.ViewRemoved(id))
	case models.NoticeHistoryCleared:
		e.pending.Merge(e.HistoryCleared(n.Timeline))
	}
}

// ItemRemoved repairs every reference to a removed item.
func (e *Engine) ItemRemoved(id timeline.ItemID) Effects {
	e.logger.Debug().Int64("item", int64(id)).Msg("item removed")
	e.heavy.Unregister(id)
	fx := fromPointer(e.pointer.ItemRemoved(e, id))
	fx.Merge(e.updateAutoscroll())
	fx.Repaint = true
	return fx
}

// ViewRemoved drops references to an item whose view was torn down.
func (e *Engine) ViewRemoved(id timeline.ItemID) Effects {
	e.heavy.Unregister(id)
	e.pointer.ViewRemoved(id)
	return Effects{Repaint: true}
}

// HistoryCleared repairs state after a whole timeline was emptied.
func (e *Engine) HistoryCleared(name string) Effects {
	logger := logging.WithTimeline(e.logger, name)
	logger.Debug().Msg("history cleared")
	var fx Effects
	for _, id := range e.sel.Items() {
		if e.Item(id) == nil {
			e.sel.Remove(id)
			fx.SelectionChanged = true
		}
	}
	if item := e.pointer.ActionItem(); item != 0 && e.Item(item) == nil {
		e.pointer.Cancel()
	}
	anchors := e.pointer.Anchors()
	if e.Item(anchors.From) == nil || e.Item(anchors.To) == nil {
		e.pointer.ViewRemoved(anchors.From)
		e.pointer.ViewRemoved(anchors.To)
	}
	e.heavy.UnloadOutsideRange(e.heavyRange())
	e.cursor.Invalidate()
	fx.Merge(e.updateAutoscroll())
	fx.Repaint = true
	return fx
}

// ClearSelected drops the whole selection.
func (e *Engine) ClearSelected() Effects {
	if e.sel.Empty() {
		return Effects{}
	}
	e.sel.Clear()
	return Effects{Repaint: true, SelectionChanged: true}
}

// SelectItems selects ids as whole items, group by group.
func (e *Engine) SelectItems(ids []timeline.ItemID) Effects {
	if _, _, partial := e.sel.Partial(); partial {
		e.sel.Clear()
	}
	for _, id := range ids {
		e.sel.ChangeAsGroup(id, selection.Select)
	}
	return Effects{Repaint: true, SelectionChanged: true}
}

// SelectionState summarizes the committed selection.
func (e *Engine) SelectionState() selection.State {
	return e.sel.State()
}

func (e *Engine) absolute(p timeline.Point) timeline.Point {
	return timeline.Point{X: p.X, Y: p.Y + e.scrollTop}
}

func (e *Engine) heavyRange() (int, int) {
	pad := e.cfg.HeavyUnloadPages * e.viewHeight
	rng := e.VisibleRange().Pad(pad)
	return rng.Top, rng.Bottom
}

func (e *Engine) clampScroll(delta int) int {
	target := min(max(e.scrollTop+delta, 0), e.maxScroll())
	return target - e.scrollTop
}

func (e *Engine) schedule(t Timer, after time.Duration) Scheduled {
	e.gens[t]++
	e.running[t] = true
	return Scheduled{Timer: t, Gen: e.gens[t], After: after}
}

func (e *Engine) stop(t Timer) {
	if e.running[t] {
		e.gens[t]++
		e.running[t] = false
	}
}

// Running reports whether timer t has a live schedule.
func (e *Engine) Running(t Timer) bool { return e.running[t] }
