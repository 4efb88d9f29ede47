package historyview

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tOgg1/scrollback/internal/pointer"
	"github.com/tOgg1/scrollback/internal/selection"
	"github.com/tOgg1/scrollback/internal/timeline"
)

const headerDateLayout = "02.01.06 15:04"

// SelectedItems lists the wholly selected regular items by id.
func (e *Engine) SelectedItems() []timeline.ItemID {
	var ids []timeline.ItemID
	for _, id := range e.sel.Items() {
		if !e.sel.IsSelected(id) {
			continue
		}
		if it := e.Item(id); it != nil && it.IsRegular() && !it.IsService() {
			ids = append(ids, id)
		}
	}
	return ids
}

// effectiveSelection is the committed selection with an in-progress item
// drag applied.
func (e *Engine) effectiveSelection() *selection.Model {
	if e.pointer.Action() != pointer.Selecting || !e.pointer.Anchors().Valid() {
		return e.sel
	}
	model := e.sel.Clone()
	e.pointer.ApplyDragSelection(e, model)
	return model
}

type textPart struct {
	top  int
	id   timeline.ItemID
	text string
}

// SelectedText renders the selection for copying. A partial selection
// yields the raw substring; whole items yield "author, [date]" headed parts
// in display order separated by a blank line.
func (e *Engine) SelectedText() string {
	model := e.effectiveSelection()
	if model.Empty() {
		return ""
	}
	if id, sel, ok := model.Partial(); ok {
		it := e.Item(id)
		if it == nil || sel.Empty() {
			return ""
		}
		return it.View.SelectedText(sel)
	}

	var parts []textPart
	seen := make(map[timeline.ItemID]bool)
	for _, id := range model.Items() {
		it := e.Item(id)
		if it == nil || !model.IsSelected(id) {
			continue
		}
		if group, ok := e.groups.Find(id); ok {
			leader := e.Item(group.Leader())
			if leader == nil || seen[leader.ID] {
				continue
			}
			seen[leader.ID] = true
			parts = append(parts, textPart{
				top:  e.ItemTop(leader.ID),
				id:   leader.ID,
				text: header(leader) + e.groupText(group),
			})
			continue
		}
		parts = append(parts, textPart{top: e.ItemTop(id), id: id, text: header(it) + it.View.Text()})
	}

	slices.SortFunc(parts, func(a, b textPart) int {
		return cmp.Or(cmp.Compare(a.top, b.top), cmp.Compare(a.id, b.id))
	})
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.text
	}
	return strings.Join(texts, "\n\n")
}

func header(it *timeline.Item) string {
	return it.Author + ", [" + it.Date.Format(headerDateLayout) + "]\n"
}

func (e *Engine) groupText(group timeline.Group) string {
	type member struct {
		top  int
		text string
	}
	var members []member
	for _, id := range group.Items {
		if it := e.Item(id); it != nil {
			members = append(members, member{top: e.ItemTop(id), text: it.View.Text()})
		}
	}
	slices.SortStableFunc(members, func(a, b member) int { return cmp.Compare(a.top, b.top) })
	texts := make([]string, 0, len(members))
	for _, m := range members {
		if m.text != "" {
			texts = append(texts, m.text)
		}
	}
	return strings.Join(texts, "\n")
}
