package events

import (
	"testing"
	"time"

	"github.com/veukit/veuctl/internal/input"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan KeyPressedEvent, 1)

	unsub := bus.Subscribe(func(e KeyPressedEvent) {
		received <- e
	})
	defer unsub()

	bus.Publish(KeyPressedEvent{Key: input.KeyZoomIn})

	got := <-received
	if got.Key != input.KeyZoomIn {
		t.Errorf("received key %v, want %v", got.Key, input.KeyZoomIn)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan SourceChangedEvent, 1)
	received2 := make(chan SourceChangedEvent, 1)

	unsub1 := bus.Subscribe(func(e SourceChangedEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e SourceChangedEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(SourceChangedEvent{Path: "clip.yuv"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan FrameProcessedEvent, 1)

	unsub := bus.Subscribe(func(e FrameProcessedEvent) {
		received <- e
	})
	unsub()

	bus.Publish(FrameProcessedEvent{Frame: 1})

	select {
	case <-received:
		t.Error("handler called after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_DeliveryOutlivesPublish(t *testing.T) {
	// Dispatch is asynchronous: Publish returns before the handler runs, so
	// a channel a handler forwards into must stay open until the
	// subscription is gone. Closing it right after Publish panics the
	// dispatcher with a send on a closed channel.
	bus := New()
	keys := make(chan KeyPressedEvent, 4)
	unsub := bus.Subscribe(func(e KeyPressedEvent) {
		keys <- e
	})

	bus.Publish(KeyPressedEvent{Key: input.KeyQuit})

	select {
	case <-keys:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	// All published events are accounted for and the handler is gone, so
	// closing the forward channel is safe now and only now.
	unsub()
	close(keys)

	if _, ok := <-keys; ok {
		t.Error("forward channel received an event after unsubscribe")
	}
}

func TestBus_UnknownHandlerType(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(s string) {})
	if unsub == nil {
		t.Fatal("Subscribe should return a no-op unsubscribe for unknown handler types")
	}
	unsub()
}
