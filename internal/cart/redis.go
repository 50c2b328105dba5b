package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSlot is the Redis-backed Storage for one session, plus the change
// feed other sessions' writers publish on. Every Save publishes the new
// item list so stores held by other server instances (the "other tabs" of
// the same session) converge without polling.
type RedisSlot struct {
	client  *redis.Client
	session string
	source  string
}

func NewRedisSlot(client *redis.Client, session string) *RedisSlot {
	return &RedisSlot{
		client:  client,
		session: session,
		source:  uuid.NewString(),
	}
}

// changeEnvelope wraps a published item list with the writer's identity so a
// writer can ignore its own notifications.
type changeEnvelope struct {
	Source string          `json:"source"`
	Items  json.RawMessage `json:"items"`
}

func slotKey(session string) string {
	return fmt.Sprintf("cart:%s", session)
}

func changeChannel(session string) string {
	return fmt.Sprintf("cart.changes:%s", session)
}

// Load reads and sanitizes the persisted item list. A missing slot is an
// empty cart. A blob that is not a JSON array is treated as corrupted: the
// slot is cleared and an empty cart returned, never an error.
func (s *RedisSlot) Load(ctx context.Context) ([]LineItem, error) {
	data, err := s.client.Get(ctx, slotKey(s.session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	items, ok := sanitizeItems(data)
	if !ok {
		log.Printf("corrupted cart slot for session %s, resetting", s.session)
		if errDel := s.client.Del(ctx, slotKey(s.session)).Err(); errDel != nil {
			log.Printf("failed to clear corrupted cart slot: %v", errDel)
		}
		return nil, nil
	}
	return items, nil
}

// Save serializes the full item list under the session's fixed key and
// publishes the change. A failed publish only degrades cross-instance sync,
// so it is logged and swallowed.
func (s *RedisSlot) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.client.Set(ctx, slotKey(s.session), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	s.publish(ctx, data)
	return nil
}

func (s *RedisSlot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, slotKey(s.session)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	s.publish(ctx, []byte("[]"))
	return nil
}

func (s *RedisSlot) publish(ctx context.Context, items json.RawMessage) {
	payload, err := json.Marshal(changeEnvelope{Source: s.source, Items: items})
	if err != nil {
		log.Printf("marshal cart change failed: %v", err)
		return
	}
	if err := s.client.Publish(ctx, changeChannel(s.session), payload).Err(); err != nil {
		log.Printf("publish cart change failed: %v", err)
	}
}

// Watch subscribes to the session's change channel and calls apply with each
// valid externally written item list. Messages from this slot's own writes
// and payloads that do not parse as an item sequence are ignored. Watch
// blocks until ctx is done.
func (s *RedisSlot) Watch(ctx context.Context, apply func(items []LineItem)) {
	sub := s.client.Subscribe(ctx, changeChannel(s.session))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var env changeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			if env.Source == s.source {
				continue
			}
			items, valid := sanitizeItems(env.Items)
			if !valid {
				continue
			}
			apply(items)
		}
	}
}
