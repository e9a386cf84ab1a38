package api

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Kumar-s75/DisasterOps/internal/routing"
)

const networkChannel = "network:events"

// RedisBroker implements EventBroker over Redis Pub/Sub so multiple API
// replicas share one event stream.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt)}, nil
}

func (b *RedisBroker) Subscribe() chan routing.Event {
	ch := make(chan routing.Event, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, networkChannel)
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt routing.Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

// Unsubscribe relies on the pub/sub channel closing with the connection;
// the reader goroutine closes ch when that happens.
func (b *RedisBroker) Unsubscribe(ch chan routing.Event) {}

func (b *RedisBroker) Publish(evt routing.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, networkChannel, data).Err()
}
