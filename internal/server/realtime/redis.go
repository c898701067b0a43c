package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/go-redis/redis/v8"
)

const channelPrefix = "orbit:"

func channelName(table string) string {
	return channelPrefix + table
}

// RedisBroker fans events out through Redis pub/sub so that subscribers
// connected to any server instance see every write.
type RedisBroker struct {
	rdb    redis.UniversalClient
	logger logging.Logger
}

func NewRedisBroker(rdb redis.UniversalClient, logger logging.Logger) *RedisBroker {
	return &RedisBroker{rdb: rdb, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, ev models.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelName(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, table string, filter Filter) (<-chan models.ChangeEvent, func()) {
	ctx, stop := context.WithCancel(ctx)
	ps := b.rdb.Subscribe(ctx, channelName(table))
	out := make(chan models.ChangeEvent, subscriberBuffer)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = ps.Close()
		})
	}

	go func() {
		defer close(out)
		defer cancel()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := decodeEvent(msg.Payload)
				if err != nil {
					b.logger.Warn(ctx, "dropping malformed change event", "channel", msg.Channel, "error", err)
					continue
				}
				if filter != nil && !filter(ev) {
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, cancel
}

func decodeEvent(payload string) (models.ChangeEvent, error) {
	var ev models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, err
	}
	return ev, nil
}
