package events_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"kasuwa/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToMatchingSubscriber(t *testing.T) {
	bus := events.NewBus()

	var mu sync.Mutex
	var got []events.Change
	unsubscribe := bus.Subscribe(events.EntityOrders, "user-1", func(c events.Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})
	defer unsubscribe()

	bus.Publish(events.Change{EntityType: events.EntityOrders, UserID: "user-1", EntityID: "o1", Action: "created"})
	// Different user and different entity type must not be delivered.
	bus.Publish(events.Change{EntityType: events.EntityOrders, UserID: "user-2", EntityID: "o2", Action: "created"})
	bus.Publish(events.Change{EntityType: events.EntityInvoices, UserID: "user-1", EntityID: "i1", Action: "updated"})

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].EntityID)
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := events.NewBus()

	var count int32
	unsubscribe := bus.Subscribe(events.EntityOrders, "user-1", func(events.Change) {
		atomic.AddInt32(&count, 1)
	})

	bus.Publish(events.Change{EntityType: events.EntityOrders, UserID: "user-1"})
	unsubscribe()
	bus.Publish(events.Change{EntityType: events.EntityOrders, UserID: "user-1"})

	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestDebounceCoalescesBursts(t *testing.T) {
	var count int32
	var lastID atomic.Value

	debounced := events.Debounce(50*time.Millisecond, func(c events.Change) {
		atomic.AddInt32(&count, 1)
		lastID.Store(c.EntityID)
	})

	// A rapid burst collapses into a single trailing call with the last change.
	for _, id := range []string{"a", "b", "c", "d"} {
		debounced(events.Change{EntityType: events.EntityOrders, UserID: "u", EntityID: id})
	}

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "d", lastID.Load())

	// A later change after the window fires again.
	debounced(events.Change{EntityType: events.EntityOrders, UserID: "u", EntityID: "e"})
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "e", lastID.Load())
}
