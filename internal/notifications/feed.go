package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Feed mirrors unread notifications into a per-receiver Redis hash so
// connected clients can render and subscribe to their feed without hitting
// Postgres. Entries are published on the receiver's channel as they land.
type Feed struct {
	client *redis.Client
}

// NewFeed creates Feed instance.
func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client}
}

func feedKey(receiver int64) string {
	return "feed:" + strconv.FormatInt(receiver, 10)
}

// Push stores the notification in the receiver's hash and announces it.
func (f *Feed) Push(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal feed entry: %w", err)
	}

	key := feedKey(n.Receiver)
	if err := f.client.HSet(ctx, key, n.ID, data).Err(); err != nil {
		return fmt.Errorf("push feed entry: %w", err)
	}
	if err := f.client.Publish(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("publish feed entry: %w", err)
	}
	return nil
}

// Remove drops the notification from the receiver's hash. Removing an entry
// that was never pushed is a no-op.
func (f *Feed) Remove(ctx context.Context, receiver int64, id string) error {
	if err := f.client.HDel(ctx, feedKey(receiver), id).Err(); err != nil {
		return fmt.Errorf("remove feed entry: %w", err)
	}
	return nil
}

var _ FeedPort = (*Feed)(nil)

// Unread returns the receiver's current feed entries.
func (f *Feed) Unread(ctx context.Context, receiver int64) ([]Notification, error) {
	raw, err := f.client.HGetAll(ctx, feedKey(receiver)).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	out := make([]Notification, 0, len(raw))
	for _, data := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(data), &n); err != nil {
			return nil, fmt.Errorf("decode feed entry: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
