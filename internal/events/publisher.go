// Package events provides synchronous notice publishing for timelines.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/scrollback/internal/models"
)

// NoticeHandler is a callback function invoked when a notice matches a subscription.
type NoticeHandler func(notice *models.Notice)

// Filter defines criteria for matching notices.
type Filter struct {
	// Types filters by notice type (nil = all types).
	Types []models.NoticeType

	// Timeline filters to a specific timeline name (empty = all).
	Timeline string

	// ItemID filters to a specific item (zero = all).
	ItemID int64
}

// Matches returns true if the notice matches the filter criteria.
func (f *Filter) Matches(notice *models.Notice) bool {
	if notice == nil {
		return false
	}

	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if notice.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.Timeline != "" && notice.Timeline != f.Timeline {
		return false
	}

	if f.ItemID != 0 && notice.ItemID != f.ItemID {
		return false
	}

	return true
}

// subscription represents an active notice subscription.
type subscription struct {
	id      string
	filter  Filter
	handler NoticeHandler
}

// Publisher defines the interface for notice publishing and subscription.
type Publisher interface {
	// Publish delivers a notice to all matching subscribers before returning.
	Publish(ctx context.Context, notice *models.Notice)

	// Subscribe registers a handler to receive notices matching the filter.
	Subscribe(id string, filter Filter, handler NoticeHandler) error

	// Unsubscribe removes a subscription by ID.
	Unsubscribe(id string) error

	// SubscriberCount returns the number of active subscribers.
	SubscriberCount() int
}

// InMemoryPublisher implements Publisher using in-process dispatch. Handlers
// run on the publishing goroutine in subscription order.
type InMemoryPublisher struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	order         []string
	now           func() time.Time
}

// PublisherOption configures an InMemoryPublisher.
type PublisherOption func(*InMemoryPublisher)

// WithClock overrides the timestamp source for notices without one.
func WithClock(now func() time.Time) PublisherOption {
	return func(p *InMemoryPublisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewInMemoryPublisher creates a new in-memory notice publisher.
func NewInMemoryPublisher(opts ...PublisherOption) *InMemoryPublisher {
	p := &InMemoryPublisher{
		subscriptions: make(map[string]*subscription),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends a notice to all matching subscribers. Missing IDs and
// timestamps are filled in.
func (p *InMemoryPublisher) Publish(ctx context.Context, notice *models.Notice) {
	if notice == nil {
		return
	}
	if notice.ID == "" {
		notice.ID = uuid.New().String()
	}
	if notice.Timestamp.IsZero() {
		notice.Timestamp = p.now()
	}

	p.mu.RLock()
	var handlers []NoticeHandler
	for _, id := range p.order {
		sub := p.subscriptions[id]
		if sub.filter.Matches(notice) {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.RUnlock()

	// Invoke handlers outside the lock so they may query or mutate freely.
	for _, handler := range handlers {
		if ctx.Err() != nil {
			return
		}
		handler(notice)
	}
}

// Subscribe registers a handler to receive notices matching the filter.
func (p *InMemoryPublisher) Subscribe(id string, filter Filter, handler NoticeHandler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	p.subscriptions[id] = &subscription{
		id:      id,
		filter:  filter,
		handler: handler,
	}
	p.order = append(p.order, id)

	return nil
}

// Unsubscribe removes a subscription by ID.
func (p *InMemoryPublisher) Unsubscribe(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}

	delete(p.subscriptions, id)
	for i, existing := range p.order {
		if existing == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (p *InMemoryPublisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions)
}

// UpdateSubscription updates the filter for an existing subscription.
func (p *InMemoryPublisher) UpdateSubscription(id string, filter Filter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub, exists := p.subscriptions[id]
	if !exists {
		return ErrSubscriptionNotFound
	}

	sub.filter = filter
	return nil
}

// Close removes all subscriptions.
func (p *InMemoryPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = make(map[string]*subscription)
	p.order = nil
}

// Errors for publisher operations.
var (
	ErrInvalidSubscriptionID = &PublisherError{Message: "subscription ID is required"}
	ErrNilHandler            = &PublisherError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &PublisherError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &PublisherError{Message: "subscription not found"}
)

// PublisherError represents an error from publisher operations.
type PublisherError struct {
	Message string
}

func (e *PublisherError) Error() string {
	return e.Message
}
