// Package events carries push-style change notifications that drive live
// list refreshes. Emitters deliver every raw change; coalescing bursts is the
// subscriber's job, via Debounce.
package events

import (
	"sync"
	"time"
)

// Entity types carried on change events.
const (
	EntityOrders       = "orders"
	EntityInvoices     = "invoices"
	EntityTransactions = "transactions"
	EntityCustomOrders = "custom_requests"
)

// Change describes one mutation of a user's data.
type Change struct {
	EntityType string `json:"entity_type"`
	UserID     string `json:"user_id"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"` // created | updated
}

// Emitter delivers changes to interested subscribers.
type Emitter interface {
	// Subscribe registers onChange for changes of entityType belonging to
	// userID. The returned function cancels the subscription.
	Subscribe(entityType, userID string, onChange func(Change)) (unsubscribe func())
}

// Bus is an in-memory Emitter. It backs tests and single-process
// deployments.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]subscription
}

type subscription struct {
	entityType string
	userID     string
	onChange   func(Change)
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers onChange for matching changes.
func (b *Bus) Subscribe(entityType, userID string, onChange func(Change)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subs[id] = subscription{entityType: entityType, userID: userID, onChange: onChange}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers a change to every matching subscriber.
func (b *Bus) Publish(change Change) {
	b.mu.Lock()
	handlers := make([]func(Change), 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.entityType == change.EntityType && sub.userID == change.UserID {
			handlers = append(handlers, sub.onChange)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(change)
	}
}

// Debounce wraps onChange so that a burst of changes inside the window
// collapses into one trailing call carrying the last change seen. A fresh
// change during the window restarts it.
func Debounce(window time.Duration, onChange func(Change)) func(Change) {
	var mu sync.Mutex
	var timer *time.Timer
	var last Change

	return func(c Change) {
		mu.Lock()
		defer mu.Unlock()

		last = c
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(window, func() {
			mu.Lock()
			final := last
			mu.Unlock()
			onChange(final)
		})
	}
}
