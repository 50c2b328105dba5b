package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Janitor consumes order-completed events from the back office and clears
// the cart slot of the session that placed the order. Live stores on any
// instance pick the clear up through the change channel.
type Janitor struct {
	client *redis.Client
	reader *kafka.Reader
}

func NewJanitor(client *redis.Client, brokers ...string) *Janitor {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "order-completed",
		GroupID:  "storefront-janitor",
		MaxBytes: 10e6, // 10MB
	})
	return &Janitor{client: client, reader: reader}
}

func (j *Janitor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := j.reader.ReadMessage(ctx)
		if err != nil {
			log.Printf("janitor read failed: %v", err)
			continue
		}
		if err := j.handle(ctx, m.Value); err != nil {
			log.Printf("janitor: %v", err)
		}
	}
}

func (j *Janitor) Close() {
	if err := j.reader.Close(); err != nil {
		log.Printf("janitor close failed: %v", err)
	}
}

// handle clears the cart slot named by one order-completed event and
// notifies listening stores.
func (j *Janitor) handle(ctx context.Context, value []byte) error {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(value, &payload); err != nil {
		return fmt.Errorf("unparsable order-completed event: %w", err)
	}
	if payload.SessionID == "" {
		return fmt.Errorf("order-completed event missing session_id")
	}

	if err := j.client.Del(ctx, slotKey(payload.SessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart slot: %w", err)
	}

	env, err := json.Marshal(changeEnvelope{Source: "janitor", Items: json.RawMessage("[]")})
	if err != nil {
		return fmt.Errorf("marshal cart change failed: %w", err)
	}
	if err := j.client.Publish(ctx, changeChannel(payload.SessionID), env).Err(); err != nil {
		return fmt.Errorf("publish cart change failed: %w", err)
	}
	return nil
}
