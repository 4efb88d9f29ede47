package tui

import (
	"context"
	"fmt"
	"slices"

	"github.com/tOgg1/scrollback/internal/config"
	"github.com/tOgg1/scrollback/internal/events"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/models"
	"github.com/tOgg1/scrollback/internal/store"
	"github.com/tOgg1/scrollback/internal/timeline"
)

// History is the stored conversation laid into timelines.
type History struct {
	Live      *timeline.Timeline
	Migrated  *timeline.Timeline
	Groups    *timeline.GroupIndex
	Publisher *events.InMemoryPublisher

	messages map[timeline.ItemID]*models.Message
}

// Message returns the stored message behind an item.
func (h *History) Message(id timeline.ItemID) *models.Message {
	return h.messages[id]
}

// Len is the number of loaded messages, hidden album members included.
func (h *History) Len() int {
	return len(h.messages)
}

// LoadHistory reads up to limit messages per history (all when limit is
// zero) and builds the timelines from them.
func LoadHistory(ctx context.Context, repo *store.MessageRepository, cfg *config.Config, limit int) (*History, error) {
	groups, err := repo.Groups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	pages := make(map[models.History][]*models.Message, 2)
	for _, history := range []models.History{models.HistoryMigrated, models.HistoryLive} {
		msgs, err := repo.List(ctx, store.Query{History: history, Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("load %s history: %w", history, err)
		}
		pages[history] = msgs
	}

	h := BuildHistory(cfg, pages[models.HistoryMigrated], pages[models.HistoryLive], groups)
	h.Live.SetLoaded(limit == 0 || len(pages[models.HistoryLive]) < limit, true)
	if h.Migrated != nil {
		h.Migrated.SetLoaded(limit == 0 || len(pages[models.HistoryMigrated]) < limit, true)
	}
	return h, nil
}

// BuildHistory lays messages, oldest first, into a live and a migrated
// timeline. Migrated is nil when there are no migrated messages.
func BuildHistory(cfg *config.Config, migrated, live []*models.Message, groups map[int64][]int64) *History {
	pub := events.NewInMemoryPublisher()
	h := &History{
		Groups:    timeline.NewGroupIndex(),
		Publisher: pub,
		messages:  make(map[timeline.ItemID]*models.Message, len(migrated)+len(live)),
	}
	for _, msg := range slices.Concat(migrated, live) {
		h.messages[timeline.ItemID(msg.ID)] = msg
	}

	newTimeline := func(name string, msgs []*models.Message) *timeline.Timeline {
		tl := timeline.New(name,
			timeline.WithBlockSize(cfg.Engine.BlockSize),
			timeline.WithAttachWindow(cfg.Engine.AttachWindow),
			timeline.WithPublisher(pub),
			timeline.WithLogger(logging.WithTimeline(logging.Component("timeline"), name)),
		)
		tl.Append(h.items(msgs, groups)...)
		return tl
	}
	if len(migrated) > 0 {
		h.Migrated = newTimeline(timeline.NameMigrated, migrated)
	}
	h.Live = newTimeline(timeline.NameLive, live)
	return h
}

// items converts messages into timeline items. Albums register in the group
// index and only their leader stays visible.
func (h *History) items(msgs []*models.Message, groups map[int64][]int64) []*timeline.Item {
	out := make([]*timeline.Item, 0, len(msgs))
	for _, msg := range msgs {
		members := loadedMembers(groups[msg.GroupID], h.messages)
		var view timeline.View
		hidden := false
		switch {
		case msg.GroupID != 0 && len(members) > 0:
			ids := make([]timeline.ItemID, len(members))
			for i, m := range members {
				ids[i] = timeline.ItemID(m)
			}
			h.Groups.Add(timeline.GroupID(msg.GroupID), ids...)
			hidden = members[len(members)-1] != msg.ID
			view = newPhotoView(msg, len(members))
		case msg.Kind == models.MessageKindPhoto:
			view = newPhotoView(msg, 1)
		default:
			view = newMessageView(msg)
		}
		it := itemFor(msg, view)
		if hidden {
			it.Flags |= timeline.FlagHiddenByGroup
		}
		out = append(out, it)
	}
	return out
}

func loadedMembers(ids []int64, loaded map[timeline.ItemID]*models.Message) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if loaded[timeline.ItemID(id)] != nil {
			out = append(out, id)
		}
	}
	return out
}

func itemFor(msg *models.Message, view timeline.View) *timeline.Item {
	it := &timeline.Item{
		ID:     timeline.ItemID(msg.ID),
		Kind:   timeline.KindMessage,
		Author: msg.Author,
		Date:   msg.CreatedAt,
		Group:  timeline.GroupID(msg.GroupID),
		Flags:  timeline.FlagRegular,
		View:   view,
	}
	if msg.IsService() {
		it.Kind = timeline.KindService
	} else {
		it.Flags |= timeline.FlagHasUserpic
	}
	if msg.CanForward {
		it.Flags |= timeline.FlagCanForward
	}
	if msg.CanDelete {
		it.Flags |= timeline.FlagCanDelete
	}
	if msg.MigrateMarker {
		it.Flags |= timeline.FlagMigrateMarker
	}
	return it
}

// Remove drops deleted messages from their timelines and re-elects album
// leaders for groups that lost members.
func (h *History) Remove(ids []timeline.ItemID) {
	touched := make(map[timeline.GroupID]struct{})
	for _, id := range ids {
		msg := h.messages[id]
		if msg == nil {
			continue
		}
		if group, ok := h.Groups.Find(id); ok {
			touched[group.ID] = struct{}{}
		}
		h.Groups.Remove(id)
		for _, tl := range []*timeline.Timeline{h.Live, h.Migrated} {
			if tl != nil && tl.Item(id) != nil {
				tl.Remove(id)
			}
		}
		delete(h.messages, id)
	}

	groupIDs := make([]timeline.GroupID, 0, len(touched))
	for id := range touched {
		groupIDs = append(groupIDs, id)
	}
	slices.Sort(groupIDs)
	for _, gid := range groupIDs {
		h.reelect(gid)
	}
}

func (h *History) reelect(gid timeline.GroupID) {
	for _, msg := range h.messages {
		if timeline.GroupID(msg.GroupID) != gid {
			continue
		}
		group, ok := h.Groups.Find(timeline.ItemID(msg.ID))
		if !ok {
			return
		}
		leader := group.Leader()
		tl := h.timelineOf(leader)
		if tl == nil {
			return
		}
		tl.ReplaceView(leader, newPhotoView(h.messages[leader], len(group.Items)))
		tl.SetHidden(leader, false)
		return
	}
}

func (h *History) timelineOf(id timeline.ItemID) *timeline.Timeline {
	for _, tl := range []*timeline.Timeline{h.Live, h.Migrated} {
		if tl != nil && tl.Item(id) != nil {
			return tl
		}
	}
	return nil
}
