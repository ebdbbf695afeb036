package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"

	"github.com/xstreamrt/xstreamrt/internal/logging"
)

// RedisSource is an opt-in, pub/sub-backed event source: a process
// outside this runtime can PUBLISH a housekeeping hint (e.g. "rebuild
// your pool list", "a config changed") and every ES running a
// scheduler sees it on its next check_events pass.
//
// This does NOT let a remote process push or pop a pool directly —
// that would violate spec §13's cross-process-coordination non-goal.
// It only wakes up housekeeping sooner than event_freq alone would;
// the pool's push/pop hot path never touches the network.
type RedisSource struct {
	client  *redis.Client
	pubsub  *redis.PubSub
	channel string

	mu     sync.Mutex
	buf    []Event
	closed bool
	cancel context.CancelFunc
}

// NewRedisSource subscribes to channel on client and starts a
// background goroutine that decodes incoming messages into Events for
// the next Poll to drain.
func NewRedisSource(client *redis.Client, channel string) *RedisSource {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := client.Subscribe(ctx, channel)

	s := &RedisSource{
		client:  client,
		pubsub:  pubsub,
		channel: channel,
		cancel:  cancel,
	}

	go s.listen(ctx)
	return s
}

func (s *RedisSource) listen(ctx context.Context) {
	msgs := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				logging.Op().Warn("events: malformed redis payload", "channel", s.channel, "error", err)
				continue
			}
			s.mu.Lock()
			if !s.closed {
				s.buf = append(s.buf, e)
			}
			s.mu.Unlock()
		}
	}
}

// Publish encodes e as JSON and publishes it on the source's channel,
// for every subscriber's next Poll to pick up.
func (s *RedisSource) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, data).Err()
}

func (s *RedisSource) Poll(context.Context) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil
	}
	drained := s.buf
	s.buf = nil
	return drained
}

func (s *RedisSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	return s.pubsub.Close()
}
