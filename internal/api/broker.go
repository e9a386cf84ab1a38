package api

import (
	"sync"

	"github.com/Kumar-s75/DisasterOps/internal/routing"
)

// EventBroker fans network events out to stream subscribers.
type EventBroker interface {
	Subscribe() chan routing.Event
	Unsubscribe(ch chan routing.Event)
	Publish(evt routing.Event)
}

// Broker is the in-memory EventBroker used when no REDIS_URL is set.
type Broker struct {
	mu   sync.Mutex
	subs map[chan routing.Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan routing.Event]struct{}{}}
}

func (b *Broker) Subscribe() chan routing.Event {
	ch := make(chan routing.Event, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan routing.Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish never blocks; slow subscribers drop events.
func (b *Broker) Publish(evt routing.Event) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
