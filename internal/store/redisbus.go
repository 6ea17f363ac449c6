package store

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "match.updates."

// RedisBus fans match snapshots out over redis pub/sub so every instance
// serving subscribers sees writes made by any other instance.
type RedisBus struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisBus(rdb *redis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelPrefix+snap.Match.ID, payload).Err()
}

func (b *RedisBus) Subscribe(id string, out chan<- Snapshot) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := b.rdb.Subscribe(ctx, channelPrefix+id)

	// Force the subscription to be established before returning so callers
	// do not miss writes that land right after Subscribe.
	if _, err := ps.Receive(ctx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, err
	}

	go func() {
		for msg := range ps.Channel() {
			var snap Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				b.log.Warn("bad snapshot payload on bus", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case out <- snap:
			default:
			}
		}
	}()

	return func() {
		cancel()
		_ = ps.Close()
	}, nil
}
