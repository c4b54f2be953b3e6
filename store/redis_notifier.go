package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// channelPrefix namespaces the pub/sub channels, one per table.
const channelPrefix = "agora:changes:"

// RedisNotifier is a Notifier backed by Redis pub/sub for deployments
// where consumers run out of process. One channel per table; debate
// filtering happens subscriber-side.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRedisNotifier creates a Redis-backed notifier.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{
		client: client,
		logger: logger.With(zap.String("component", "redis_notifier")),
	}
}

// Publish implements Notifier.
func (n *RedisNotifier) Publish(ctx context.Context, ev Event) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrStoreClosed
	}
	n.mu.Unlock()

	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.client.Publish(ctx, channelPrefix+string(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe implements Notifier. The returned channel closes when the
// cancel function runs or the context ends.
func (n *RedisNotifier) Subscribe(ctx context.Context, debateID string, tables ...Table) (<-chan Event, func(), error) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil, nil, ErrStoreClosed
	}
	n.mu.Unlock()

	if len(tables) == 0 {
		tables = []Table{TableDebates, TableTurns, TableVerdicts, TableAlerts, TableSummaries}
	}
	channels := make([]string, 0, len(tables))
	for _, t := range tables {
		channels = append(channels, channelPrefix+string(t))
	}

	pubsub := n.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, 64)
	subCtx, cancelCtx := context.WithCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					n.logger.Warn("malformed change event", zap.Error(err))
					continue
				}
				if debateID != "" && ev.DebateID != debateID {
					continue
				}
				select {
				case out <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

// Close implements Notifier.
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.wg.Wait()
	return nil
}
