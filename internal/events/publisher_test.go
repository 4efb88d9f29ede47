package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/models"
)

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		notice *models.Notice
		want   bool
	}{
		{
			name:   "empty filter matches any notice",
			filter: Filter{},
			notice: &models.Notice{Type: models.NoticeItemRemoved, Timeline: "live", ItemID: 1},
			want:   true,
		},
		{
			name:   "nil notice returns false",
			filter: Filter{},
			notice: nil,
			want:   false,
		},
		{
			name:   "type filter matches",
			filter: Filter{Types: []models.NoticeType{models.NoticeItemRemoved}},
			notice: &models.Notice{Type: models.NoticeItemRemoved, Timeline: "live", ItemID: 1},
			want:   true,
		},
		{
			name:   "type filter rejects non-matching",
			filter: Filter{Types: []models.NoticeType{models.NoticeItemRemoved}},
			notice: &models.Notice{Type: models.NoticeItemAdded, Timeline: "live", ItemID: 1},
			want:   false,
		},
		{
			name: "multiple types - matches any",
			filter: Filter{Types: []models.NoticeType{
				models.NoticeItemRemoved,
				models.NoticeHistoryCleared,
			}},
			notice: &models.Notice{Type: models.NoticeHistoryCleared, Timeline: "migrated"},
			want:   true,
		},
		{
			name:   "timeline filter rejects other timeline",
			filter: Filter{Timeline: "live"},
			notice: &models.Notice{Type: models.NoticeItemRemoved, Timeline: "migrated", ItemID: 1},
			want:   false,
		},
		{
			name:   "item filter matches",
			filter: Filter{ItemID: 7},
			notice: &models.Notice{Type: models.NoticeItemResized, Timeline: "live", ItemID: 7},
			want:   true,
		},
		{
			name:   "item filter rejects other item",
			filter: Filter{ItemID: 7},
			notice: &models.Notice{Type: models.NoticeItemResized, Timeline: "live", ItemID: 8},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.filter.Matches(tt.notice))
		})
	}
}

func TestInMemoryPublisher_Subscribe(t *testing.T) {
	pub := NewInMemoryPublisher()
	handler := func(*models.Notice) {}

	require.NoError(t, pub.Subscribe("sub-1", Filter{}, handler))
	require.Equal(t, 1, pub.SubscriberCount())

	require.Equal(t, ErrSubscriptionExists, pub.Subscribe("sub-1", Filter{}, handler))
	require.Equal(t, ErrInvalidSubscriptionID, pub.Subscribe("", Filter{}, handler))
	require.Equal(t, ErrNilHandler, pub.Subscribe("sub-2", Filter{}, nil))
}

func TestInMemoryPublisher_Unsubscribe(t *testing.T) {
	pub := NewInMemoryPublisher()
	require.NoError(t, pub.Subscribe("sub-1", Filter{}, func(*models.Notice) {}))

	require.NoError(t, pub.Unsubscribe("sub-1"))
	require.Equal(t, 0, pub.SubscriberCount())
	require.Equal(t, ErrSubscriptionNotFound, pub.Unsubscribe("sub-1"))
}

func TestInMemoryPublisher_PublishIsSynchronousAndOrdered(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := NewInMemoryPublisher(WithClock(func() time.Time { return fixed }))

	var calls []string
	require.NoError(t, pub.Subscribe("first", Filter{}, func(*models.Notice) { calls = append(calls, "first") }))
	require.NoError(t, pub.Subscribe("second", Filter{}, func(*models.Notice) { calls = append(calls, "second") }))
	require.NoError(t, pub.Subscribe("filtered", Filter{Timeline: "migrated"}, func(*models.Notice) {
		calls = append(calls, "filtered")
	}))

	notice := &models.Notice{Type: models.NoticeItemRemoved, Timeline: "live", ItemID: 3}
	pub.Publish(context.Background(), notice)

	require.Equal(t, []string{"first", "second"}, calls)
	require.NotEmpty(t, notice.ID)
	require.Equal(t, fixed, notice.Timestamp)
}

func TestInMemoryPublisher_UpdateSubscription(t *testing.T) {
	pub := NewInMemoryPublisher()
	received := 0
	require.NoError(t, pub.Subscribe("sub", Filter{Timeline: "migrated"}, func(*models.Notice) { received++ }))

	pub.Publish(context.Background(), &models.Notice{Type: models.NoticeItemAdded, Timeline: "live"})
	require.Equal(t, 0, received)

	require.NoError(t, pub.UpdateSubscription("sub", Filter{Timeline: "live"}))
	pub.Publish(context.Background(), &models.Notice{Type: models.NoticeItemAdded, Timeline: "live"})
	require.Equal(t, 1, received)

	require.Equal(t, ErrSubscriptionNotFound, pub.UpdateSubscription("missing", Filter{}))
}

func TestInMemoryPublisher_Close(t *testing.T) {
	pub := NewInMemoryPublisher()
	require.NoError(t, pub.Subscribe("a", Filter{}, func(*models.Notice) {}))
	require.NoError(t, pub.Subscribe("b", Filter{}, func(*models.Notice) {}))

	pub.Close()
	require.Equal(t, 0, pub.SubscriberCount())
	require.NoError(t, pub.Subscribe("a", Filter{}, func(*models.Notice) {}))
}

func TestNoticeIsItemNotice(t *testing.T) {
	require.True(t, (&models.Notice{Type: models.NoticeItemRemoved}).IsItemNotice())
	require.True(t, (&models.Notice{Type: models.NoticeViewRemoved}).IsItemNotice())
	require.False(t, (&models.Notice{Type: models.NoticeHistoryCleared}).IsItemNotice())
}
