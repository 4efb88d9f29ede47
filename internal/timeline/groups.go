package timeline

// Group is an atomic set of items selected and deleted together.
type Group struct {
	ID    GroupID
	Items []ItemID
}

// Leader is the item that draws the group, the last member.
func (g Group) Leader() ItemID {
	if len(g.Items) == 0 {
		return 0
	}
	return g.Items[len(g.Items)-1]
}

// Contains reports whether id is a member.
func (g Group) Contains(id ItemID) bool {
	for _, member := range g.Items {
		if member == id {
			return true
		}
	}
	return false
}

// Groups resolves the group an item belongs to.
type Groups interface {
	Find(id ItemID) (Group, bool)
}

// NoGroups is a Groups with no groups.
type NoGroups struct{}

// Find always reports false.
func (NoGroups) Find(ItemID) (Group, bool) { return Group{}, false }

// GroupIndex is an in-memory Groups.
type GroupIndex struct {
	members map[GroupID][]ItemID
	byItem  map[ItemID]GroupID
}

// NewGroupIndex creates an empty index.
func NewGroupIndex() *GroupIndex {
	return &GroupIndex{
		members: make(map[GroupID][]ItemID),
		byItem:  make(map[ItemID]GroupID),
	}
}

// Add appends ids to group in display order.
func (g *GroupIndex) Add(group GroupID, ids ...ItemID) {
	if group == 0 {
		return
	}
	for _, id := range ids {
		if _, exists := g.byItem[id]; exists {
			continue
		}
		g.byItem[id] = group
		g.members[group] = append(g.members[group], id)
	}
}

// Remove drops id from its group. Empty groups disappear.
func (g *GroupIndex) Remove(id ItemID) {
	group, ok := g.byItem[id]
	if !ok {
		return
	}
	delete(g.byItem, id)
	members := g.members[group]
	for i, member := range members {
		if member == id {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(g.members, group)
		return
	}
	g.members[group] = members
}

// Find returns a copy of the group containing id.
func (g *GroupIndex) Find(id ItemID) (Group, bool) {
	group, ok := g.byItem[id]
	if !ok {
		return Group{}, false
	}
	members := g.members[group]
	out := make([]ItemID, len(members))
	copy(out, members)
	return Group{ID: group, Items: out}, true
}

// Len is the number of non-empty groups.
func (g *GroupIndex) Len() int {
	return len(g.members)
}
