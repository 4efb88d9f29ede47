// Package selection is the item/text selection model of a history view.
//
// The model maps item ids to text selections. Either every entry is a
// whole-item FullSelection, or the model holds exactly one partial text
// range. Whole-item selection is capped; selects past the cap are refused
// without error.
package selection

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// DefaultMaxItems is the default whole-item selection cap.
const DefaultMaxItems = 100

// Action is a selection change request.
type Action int

const (
	Select Action = iota
	Deselect
	Invert
)

func (a Action) String() string {
	switch a {
	case Select:
		return "select"
	case Deselect:
		return "deselect"
	default:
		return "invert"
	}
}

// Resolver looks an item up by id across every timeline of the view.
type Resolver func(id timeline.ItemID) *timeline.Item

// State summarizes the selection for toolbars.
type State struct {
	Count           int
	CanForwardCount int
	CanDeleteCount  int
	TextSelected    bool
}

// Model is the selection map.
type Model struct {
	entries map[timeline.ItemID]timeline.TextSelection
	max     int
	resolve Resolver
	groups  timeline.Groups
	logger  zerolog.Logger
}

// New creates an empty model capped at max whole items.
func New(max int, resolve Resolver, groups timeline.Groups) *Model {
	if max <= 0 {
		max = DefaultMaxItems
	}
	if groups == nil {
		groups = timeline.NoGroups{}
	}
	return &Model{
		entries: make(map[timeline.ItemID]timeline.TextSelection),
		max:     max,
		resolve: resolve,
		groups:  groups,
		logger:  logging.Component("selection"),
	}
}

// Max is the whole-item cap.
func (m *Model) Max() int { return m.max }

// Len is the number of entries.
func (m *Model) Len() int { return len(m.entries) }

// Empty reports whether nothing is selected.
func (m *Model) Empty() bool { return len(m.entries) == 0 }

// Get returns the entry for id.
func (m *Model) Get(id timeline.ItemID) (timeline.TextSelection, bool) {
	sel, ok := m.entries[id]
	return sel, ok
}

// IsSelected reports whether id is selected as a whole item.
func (m *Model) IsSelected(id timeline.ItemID) bool {
	sel, ok := m.entries[id]
	return ok && sel.IsFull()
}

// IsSelectedGroup reports whether every member of group is selected.
func (m *Model) IsSelectedGroup(group timeline.Group) bool {
	if len(group.Items) == 0 {
		return false
	}
	for _, id := range group.Items {
		if !m.IsSelected(id) {
			return false
		}
	}
	return true
}

// IsSelectedAsGroup reports whether id, or its whole group, is selected.
func (m *Model) IsSelectedAsGroup(id timeline.ItemID) bool {
	if group, ok := m.groups.Find(id); ok {
		return m.IsSelectedGroup(group)
	}
	return m.IsSelected(id)
}

// HasFullSelection reports whether the model holds whole items.
func (m *Model) HasFullSelection() bool {
	for _, sel := range m.entries {
		return sel.IsFull()
	}
	return false
}

// TextSelected reports whether the model holds a non-empty text range.
func (m *Model) TextSelected() bool {
	if len(m.entries) != 1 {
		return false
	}
	for _, sel := range m.entries {
		return !sel.IsFull() && !sel.Empty()
	}
	return false
}

// Partial returns the single partial entry, if any.
func (m *Model) Partial() (timeline.ItemID, timeline.TextSelection, bool) {
	if len(m.entries) != 1 {
		return 0, timeline.TextSelection{}, false
	}
	for id, sel := range m.entries {
		if !sel.IsFull() {
			return id, sel, true
		}
	}
	return 0, timeline.TextSelection{}, false
}

// Entries returns a copy of the map.
func (m *Model) Entries() map[timeline.ItemID]timeline.TextSelection {
	out := make(map[timeline.ItemID]timeline.TextSelection, len(m.entries))
	for id, sel := range m.entries {
		out[id] = sel
	}
	return out
}

// Items returns the selected ids in ascending order.
func (m *Model) Items() []timeline.ItemID {
	ids := make([]timeline.ItemID, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy sharing the resolver and groups.
func (m *Model) Clone() *Model {
	c := *m
	c.entries = m.Entries()
	return &c
}

// Clear removes every entry.
func (m *Model) Clear() {
	clear(m.entries)
}

// Remove drops the entry for id.
func (m *Model) Remove(id timeline.ItemID) {
	delete(m.entries, id)
}

// SetText replaces the whole selection with one text range on id.
func (m *Model) SetText(id timeline.ItemID, sel timeline.TextSelection) {
	clear(m.entries)
	m.entries[id] = sel
}

// Change applies action to a single item.
func (m *Model) Change(id timeline.ItemID, action Action) {
	if action == Invert {
		action = Select
		if m.IsSelected(id) {
			action = Deselect
		}
	}
	total := len(m.entries)
	if action == Select && m.goodForSelection(id, &total) && total <= m.max {
		m.add(id)
		return
	}
	if action == Select {
		m.logger.Trace().Int64("item", int64(id)).Int("total", total).Msg("select refused")
	}
	delete(m.entries, id)
}

// ChangeAsGroup applies action to id's whole group. A select that cannot
// take every member is turned into a deselect of the group.
func (m *Model) ChangeAsGroup(id timeline.ItemID, action Action) {
	group, ok := m.groups.Find(id)
	if !ok {
		m.Change(id, action)
		return
	}
	if action == Invert {
		action = Select
		if m.IsSelectedGroup(group) {
			action = Deselect
		}
	}

	total := len(m.entries)
	canSelect := true
	for _, member := range group.Items {
		if !m.goodForSelection(member, &total) {
			canSelect = false
			break
		}
	}
	canSelect = canSelect && total <= m.max

	if action == Select && canSelect {
		for _, member := range group.Items {
			m.add(member)
		}
		return
	}
	if action == Select {
		m.logger.Trace().Int64("group", int64(group.ID)).Int("total", total).Msg("group select refused")
	}
	for _, member := range group.Items {
		delete(m.entries, member)
	}
}

// AddRange selects, group-wise, every item of tl from (fromBlock, fromItem)
// to (toBlock, toItem) inclusive, stopping after the block that fills the cap.
func (m *Model) AddRange(tl *timeline.Timeline, fromBlock, fromItem, toBlock, toItem int) {
	if tl == nil || fromBlock < 0 || fromItem < 0 || toBlock < 0 || toItem < 0 {
		return
	}
	blocks := tl.Blocks()
	toBlock = min(toBlock, len(blocks)-1)
	for ; fromBlock <= toBlock; fromBlock++ {
		b := blocks[fromBlock]
		count := b.Len()
		if fromBlock == toBlock {
			count = min(toItem+1, count)
		}
		for ; fromItem < count; fromItem++ {
			m.ChangeAsGroup(b.Item(fromItem).ID, Select)
		}
		if len(m.entries) >= m.max {
			break
		}
		fromItem = 0
	}
}

// State summarizes the selection.
func (m *Model) State() State {
	var st State
	for id, sel := range m.entries {
		if sel.IsFull() {
			st.Count++
			if it := m.lookup(id); it != nil {
				if it.CanDelete() {
					st.CanDeleteCount++
				}
				if it.CanForward() {
					st.CanForwardCount++
				}
			}
		} else if !sel.Empty() {
			st.TextSelected = true
		}
	}
	return st
}

// goodForSelection reports whether id may be selected as a whole item and
// counts it into total when it is not selected yet.
func (m *Model) goodForSelection(id timeline.ItemID, total *int) bool {
	it := m.lookup(id)
	if it == nil || !it.IsRegular() || it.IsService() {
		return false
	}
	if _, ok := m.entries[id]; !ok {
		*total++
	}
	return true
}

func (m *Model) add(id timeline.ItemID) {
	if _, ok := m.entries[id]; !ok && len(m.entries) == 1 {
		for _, sel := range m.entries {
			if !sel.IsFull() {
				clear(m.entries)
			}
		}
	}
	m.entries[id] = timeline.FullSelection
}

func (m *Model) lookup(id timeline.ItemID) *timeline.Item {
	if m.resolve == nil {
		return nil
	}
	return m.resolve(id)
}
