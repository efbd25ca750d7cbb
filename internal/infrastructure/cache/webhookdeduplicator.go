package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
)

const (
	webhookKeyPrefix = "webhook_delivery:"
	// DefaultWebhookDedupTTL covers the gateway's retry schedule.
	DefaultWebhookDedupTTL = 24 * time.Hour
	// DefaultWebhookInFlightTTL bounds how long a crashed worker can hold a
	// delivery before the gateway's retry is processed again.
	DefaultWebhookInFlightTTL = 2 * time.Minute

	deliveryInFlight = "processing"
	deliveryDone     = "done"
)

// WebhookDeduplicator remembers webhook deliveries in Redis so repeated
// deliveries are dropped before they reach the database. A delivery is
// marked in flight with a short TTL and only kept for the full retention
// window once its transaction has committed.
type WebhookDeduplicator struct {
	client      *redis.Client
	ttl         time.Duration
	inFlightTTL time.Duration
}

func NewWebhookDeduplicator(client *redis.Client, ttl, inFlightTTL time.Duration) *WebhookDeduplicator {
	if ttl <= 0 {
		ttl = DefaultWebhookDedupTTL
	}
	if inFlightTTL <= 0 {
		inFlightTTL = DefaultWebhookInFlightTTL
	}
	return &WebhookDeduplicator{client: client, ttl: ttl, inFlightTTL: inFlightTTL}
}

var _ billingUsecases.DeliveryDeduplicator = (*WebhookDeduplicator)(nil)

// buildKey format: webhook_delivery:{payment_id}:{event_type}
func (d *WebhookDeduplicator) buildKey(key string) string {
	return webhookKeyPrefix + key
}

func (d *WebhookDeduplicator) Claim(ctx context.Context, key string) (billingUsecases.DeliveryState, error) {
	redisKey := d.buildKey(key)

	acquired, err := d.client.SetNX(ctx, redisKey, deliveryInFlight, d.inFlightTTL).Result()
	if err != nil {
		return billingUsecases.DeliveryNew, fmt.Errorf("failed to claim webhook delivery: %w", err)
	}
	if acquired {
		return billingUsecases.DeliveryNew, nil
	}

	state, err := d.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; the next retry claims it.
		return billingUsecases.DeliveryInFlight, nil
	}
	if err != nil {
		return billingUsecases.DeliveryNew, fmt.Errorf("failed to read webhook delivery: %w", err)
	}
	if state == deliveryDone {
		return billingUsecases.DeliveryDone, nil
	}
	return billingUsecases.DeliveryInFlight, nil
}

func (d *WebhookDeduplicator) Complete(ctx context.Context, key string) error {
	if err := d.client.Set(ctx, d.buildKey(key), deliveryDone, d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return nil
}

// Release forgets a delivery whose processing failed so the gateway's
// retry is not dropped.
func (d *WebhookDeduplicator) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release webhook delivery: %w", err)
	}
	return nil
}
