// Package heavy tracks items holding expensive resources and evicts them once
// they drift far from the viewport.
package heavy

import (
	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// Span resolves an item to its absolute [top, bottom) span. ok is false once
// the item no longer exists.
type Span func(id timeline.ItemID) (top, bottom int, ok bool)

// Manager is the registry of items with loaded heavy parts.
type Manager struct {
	items  map[timeline.ItemID]timeline.HeavyView
	span   Span
	logger zerolog.Logger
}

// New creates an empty manager resolving spans through span.
func New(span Span) *Manager {
	return &Manager{
		items:  make(map[timeline.ItemID]timeline.HeavyView),
		span:   span,
		logger: logging.Component("heavy"),
	}
}

// Register records that id has loaded its heavy part. Views without one are
// ignored.
func (m *Manager) Register(id timeline.ItemID, view timeline.View) bool {
	hv, ok := view.(timeline.HeavyView)
	if !ok {
		return false
	}
	m.items[id] = hv
	return true
}

// Unregister forgets id without unloading it.
func (m *Manager) Unregister(id timeline.ItemID) {
	delete(m.items, id)
}

// Registered reports whether id is tracked.
func (m *Manager) Registered(id timeline.ItemID) bool {
	_, ok := m.items[id]
	return ok
}

// Count is the number of tracked items.
func (m *Manager) Count() int { return len(m.items) }

// Clear forgets everything without unloading.
func (m *Manager) Clear() {
	clear(m.items)
}

// UnloadOutsideRange unloads every tracked item whose span misses
// [from, till), or that no longer resolves, and returns how many it evicted.
func (m *Manager) UnloadOutsideRange(from, till int) int {
	if len(m.items) == 0 {
		return 0
	}
	evicted := 0
	for id, hv := range m.items {
		if top, bottom, ok := m.span(id); ok && top < till && bottom > from {
			continue
		}
		delete(m.items, id)
		hv.UnloadHeavyPart()
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug().
			Int("evicted", evicted).
			Int("from", from).
			Int("till", till).
			Msg("unloaded heavy parts")
	}
	return evicted
}
