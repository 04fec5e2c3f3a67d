package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusBroadcastsToAllSubscribers(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	a := NewChannelSubscriber("a", 4)
	b := NewChannelSubscriber("b", 4)
	bus.Subscribe(a)
	bus.Subscribe(b)

	require.NoError(t, bus.Publish(New(ArtifactInstalled, "com.example:widget:1.0", "")))

	select {
	case e := <-a.Events():
		assert.Equal(t, ArtifactInstalled, e.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive event")
	}
	select {
	case e := <-b.Events():
		assert.Equal(t, ArtifactInstalled, e.Type)
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	sub := NewChannelSubscriber("a", 4)
	bus.Subscribe(sub)
	bus.Unsubscribe("a")

	require.NoError(t, bus.Publish(New(ArtifactInstalled, "a", "")))

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "channel should be closed after unsubscribe")
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected closed channel, got nothing")
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	bus := NewBus(nil, nil)
	bus.queue = make(chan Event, 1) // not run, so the queue never drains

	require.NoError(t, bus.Publish(New(ArtifactInstalled, "a", "")))
	err := bus.Publish(New(ArtifactInstalled, "b", ""))
	assert.ErrorIs(t, err, ErrQueueFull)
}
