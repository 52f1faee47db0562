// Package consumer reacts to sync-completion events on the bus.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"contentsearch/internal/publisher"
	"contentsearch/internal/storage/cache"
)

// Invalidator drops cache entries by key prefix.
type Invalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type Config struct {
	URL       string
	QueueName string
}

// CacheInvalidator consumes "data synced" events and drops the search
// and content cache namespaces, so readers see fresh scores without
// waiting out the TTL. The publisher declares and binds the queue; this
// side only consumes from it.
type CacheInvalidator struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	cache   Invalidator
	logger  *slog.Logger
}

func NewCacheInvalidator(cfg Config, inv Invalidator, logger *slog.Logger) (*CacheInvalidator, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &CacheInvalidator{
		conn:    conn,
		channel: ch,
		queue:   cfg.QueueName,
		cache:   inv,
		logger:  logger.With("component", "cache-invalidator"),
	}, nil
}

// Start consumes until ctx is cancelled.
func (c *CacheInvalidator) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	c.logger.Info("consuming sync events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consume channel for %q closed", c.queue)
			}
			c.handle(ctx, msg.Body)
		}
	}
}

func (c *CacheInvalidator) handle(ctx context.Context, body []byte) {
	var event publisher.SyncedMessage
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.Warn("ignoring malformed sync event", "error", err)
		return
	}

	for _, prefix := range []string{cache.SearchKeyPrefix, cache.ContentKeyPrefix} {
		if err := c.cache.DeleteByPrefix(ctx, prefix); err != nil {
			c.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}

	c.logger.Info("cache invalidated",
		"item_count", event.ItemCount,
		"synced_at", event.SyncedAt,
	)
}

func (c *CacheInvalidator) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
