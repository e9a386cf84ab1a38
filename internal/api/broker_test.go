package api

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Kumar-s75/DisasterOps/internal/routing"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()

	evt := routing.Event{Type: "condition.updated", From: "a", To: "b", Value: "poor"}
	b.Publish(evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type || got.Value != "poor" {
			t.Fatalf("got %+v, want %+v", got, evt)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestBrokerDropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Publish never blocks even when nobody drains the channel.
	for i := 0; i < 100; i++ {
		b.Publish(routing.Event{Type: "traffic.updated"})
	}
	if n := len(ch); n > cap(ch) {
		t.Fatalf("buffered %d events beyond capacity %d", n, cap(ch))
	}
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBroker("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisBroker: %v", err)
	}

	ch := b.Subscribe()
	evt := routing.Event{Type: "traffic.updated", From: "a", To: "b", Value: "severe"}
	b.Publish(evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type || got.From != "a" || got.Value != "severe" {
			t.Fatalf("got %+v, want %+v", got, evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for redis event")
	}
}

func TestNewRedisBrokerRejectsBadURL(t *testing.T) {
	if _, err := NewRedisBroker("not-a-url"); err == nil {
		t.Fatal("expected parse error")
	}
}
