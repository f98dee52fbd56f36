// Package redis carries the cross-view fan-out and per-user view
// settings. Invalidation events published here reach every connected
// board via the websocket hub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/planar-app/planar/internal/schedule"
)

type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis.Client.Close: %w", err)
	}
	return nil
}

// WorkspaceChannel returns the channel carrying a workspace's
// invalidation events.
func WorkspaceChannel(workspaceID uuid.UUID) string {
	return "board:" + workspaceID.String()
}

var _ schedule.Invalidator = (*Client)(nil)

// Invalidate publishes one invalidation event to the workspace channel.
func (c *Client) Invalidate(ctx context.Context, workspaceID uuid.UUID, ev schedule.InvalidationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.Client.Invalidate: marshal: %w", err)
	}

	if err := c.rdb.Publish(ctx, WorkspaceChannel(workspaceID), payload).Err(); err != nil {
		return fmt.Errorf("redis.Client.Invalidate: publish: %w", err)
	}
	return nil
}

// Subscribe streams raw invalidation payloads for a workspace until the
// context ends.
func (c *Client) Subscribe(ctx context.Context, workspaceID uuid.UUID) (<-chan []byte, func(), error) {
	sub := c.rdb.Subscribe(ctx, WorkspaceChannel(workspaceID))

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.Client.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan []byte, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}
