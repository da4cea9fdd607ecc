package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var received Event

	bus.Subscribe(TopicDeviceDiscovered, func(ctx context.Context, e Event) {
		received = e
	})

	err := bus.Publish(context.Background(), Event{
		Topic:   TopicDeviceDiscovered,
		Source:  "test",
		Payload: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, TopicDeviceDiscovered, received.Topic)
	assert.Equal(t, "hello", received.Payload)
	assert.False(t, received.Timestamp.IsZero(), "Publish should stamp a zero timestamp")
}

func TestSubscribe_OnlyMatchingTopic(t *testing.T) {
	bus := NewBus(nil)
	var count int32

	bus.Subscribe(TopicCommandSent, func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	_ = bus.Publish(context.Background(), Event{Topic: TopicCommandError})
	_ = bus.Publish(context.Background(), Event{Topic: TopicCommandSent})

	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus(nil)
	var count int32

	bus.SubscribeAll(func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	_ = bus.Publish(context.Background(), Event{Topic: "a"})
	_ = bus.Publish(context.Background(), Event{Topic: "b"})

	assert.Equal(t, int32(2), atomic.LoadInt32(&count))
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	var topicCount, allCount int32

	unsub := bus.Subscribe("test", func(ctx context.Context, e Event) {
		atomic.AddInt32(&topicCount, 1)
	})
	unsubAll := bus.SubscribeAll(func(ctx context.Context, e Event) {
		atomic.AddInt32(&allCount, 1)
	})

	_ = bus.Publish(context.Background(), Event{Topic: "test"})
	unsub()
	unsubAll()
	_ = bus.Publish(context.Background(), Event{Topic: "test"})

	assert.Equal(t, int32(1), atomic.LoadInt32(&topicCount))
	assert.Equal(t, int32(1), atomic.LoadInt32(&allCount))
}

func TestPublishAsync(t *testing.T) {
	bus := NewBus(nil)
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe("async", func(ctx context.Context, e Event) {
		wg.Done()
	})
	bus.PublishAsync(context.Background(), Event{Topic: "async"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not called")
	}
}

func TestHandlerPanicRecovery(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var count int32

	bus.Subscribe("panic", func(ctx context.Context, e Event) {
		panic("boom")
	})
	bus.Subscribe("panic", func(ctx context.Context, e Event) {
		atomic.AddInt32(&count, 1)
	})

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), Event{Topic: "panic"})
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestNoSubscribersOK(t *testing.T) {
	bus := NewBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), Event{Topic: "empty"}))
}
