package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"wardwatch-be/events"
)

const StreamName = "issue-events"

// RedisEventBus carries issue change notifications over a Redis Stream.
// Publishing appends in commit order; each subscriber tails the stream from
// its own attach point, so consumers are independent and restartable.
type RedisEventBus struct {
	client *redis.Client
}

// NewRedisEventBus creates an event bus on an existing Redis client
func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{client: client}
}

// Publish publishes an event to the stream
func (r *RedisEventBus) Publish(ctx context.Context, event *events.Event) error {
	eventJSON, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]interface{}{
			"event_id":   event.EventID,
			"event_type": event.EventType,
			"issue_id":   event.IssueID,
			"payload":    string(eventJSON),
			"timestamp":  event.Timestamp.Format(time.RFC3339),
		},
	}

	if _, err := r.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s for issue: %s", event.EventType, event.IssueID)
	return nil
}

// Subscribe tails the stream from "now" and delivers events on the returned
// channel until ctx is cancelled. The channel is closed on detach.
func (r *RedisEventBus) Subscribe(ctx context.Context) <-chan *events.Event {
	out := make(chan *events.Event)

	go func() {
		defer close(out)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := r.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{StreamName, lastID},
				Count:   50,
				Block:   1 * time.Second,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				log.Printf("Error reading from stream: %v", err)
				time.Sleep(1 * time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					lastID = message.ID

					event, err := parseMessage(message)
					if err != nil {
						log.Printf("Error parsing message %s: %v", message.ID, err)
						continue
					}

					select {
					case out <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out
}

// parseMessage parses a Redis stream message into an Event
func parseMessage(message redis.XMessage) (*events.Event, error) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid payload in message")
	}

	var event events.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}

// Close closes the Redis connection
func (r *RedisEventBus) Close() error {
	return r.client.Close()
}
