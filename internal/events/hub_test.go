package events

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_FanOut(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	subs := []*Subscription{hub.Subscribe(), hub.Subscribe(), hub.Subscribe()}
	assert.Equal(t, 3, hub.SubscriberCount())

	hub.Publish(OrderCreated, map[string]string{"id": "o1"})

	for _, sub := range subs {
		frame := <-sub.C

		var ev struct {
			Name    string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(frame, &ev))
		assert.Equal(t, OrderCreated, ev.Name)
		assert.JSONEq(t, `{"id":"o1"}`, string(ev.Payload))
	}
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	// Must not block or panic.
	hub.Publish(OrderCreated, "payload")
}

func TestHub_UnmarshalablePayloadDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	sub := hub.Subscribe()
	defer sub.Close()

	hub.Publish(OrderCreated, make(chan int))

	select {
	case frame := <-sub.C:
		t.Fatalf("expected no delivery, got %q", frame)
	default:
	}
}

func TestHub_SlowSubscriberDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	slow := hub.Subscribe()
	fast := hub.Subscribe()

	// Fill the slow subscriber's queue without draining it.
	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish(OrderCreated, i)
		<-fast.C
	}
	assert.Equal(t, 2, hub.SubscriberCount())

	// The next publish overflows the slow queue and disconnects it.
	hub.Publish(OrderCreated, "overflow")
	<-fast.C
	assert.Equal(t, 1, hub.SubscriberCount())

	// A closed channel drains its backlog and then reports closure.
	for i := 0; i < subscriberBuffer; i++ {
		_, ok := <-slow.C
		require.True(t, ok)
	}
	_, ok := <-slow.C
	assert.False(t, ok)
}

func TestHub_CloseDuringPublish(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	// Subscribers detach mid-broadcast. A send must never land on a channel
	// that a concurrent Close has already closed; run with -race.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			sub := hub.Subscribe()
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub.Close()
			}()
		}
	}()

	for i := 0; i < 500; i++ {
		hub.Publish(OrderCreated, map[string]int{"seq": i})
	}
	wg.Wait()
}

func TestHub_SubscriptionClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()

	sub := hub.Subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount())

	// Closing twice is harmless.
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(zap.NewNop())

	sub := hub.Subscribe()
	hub.Close()

	_, ok := <-sub.C
	assert.False(t, ok, "subscriber channel closes with the hub")

	// Closing twice is harmless, and late subscribers get a closed channel.
	hub.Close()
	late := hub.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok)

	// Publishing after close is a no-op.
	hub.Publish(OrderCreated, "late")
}
