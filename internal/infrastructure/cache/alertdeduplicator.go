package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alertKeyPrefix = "ops_alert:"
	// DefaultAlertCooldown is how long a repeated alert for the same
	// resource is suppressed.
	DefaultAlertCooldown = 30 * time.Minute
)

// AlertType represents different alert types for deduplication
type AlertType string

const (
	AlertTypeReconciliationGap AlertType = "reconciliation_gap"
	AlertTypeAmountMismatch    AlertType = "amount_mismatch"
)

// AlertDeduplicator provides Redis-based alert deduplication across
// engine instances.
type AlertDeduplicator struct {
	client *redis.Client
}

func NewAlertDeduplicator(client *redis.Client) *AlertDeduplicator {
	return &AlertDeduplicator{client: client}
}

// buildKey format: ops_alert:{type}:{resource_id}
func (d *AlertDeduplicator) buildKey(alertType AlertType, resourceID uint) string {
	return fmt.Sprintf("%s%s:%d", alertKeyPrefix, alertType, resourceID)
}

// TryAcquireAlertLock returns true if the alert should be sent, false if an
// alert for the same resource is still in cooldown.
func (d *AlertDeduplicator) TryAcquireAlertLock(ctx context.Context, alertType AlertType, resourceID uint, ttl time.Duration) (bool, error) {
	acquired, err := d.client.SetNX(ctx, d.buildKey(alertType, resourceID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire alert lock: %w", err)
	}
	return acquired, nil
}

// ClearAlert ends the cooldown, for example once the gap is reconciled.
func (d *AlertDeduplicator) ClearAlert(ctx context.Context, alertType AlertType, resourceID uint) error {
	if err := d.client.Del(ctx, d.buildKey(alertType, resourceID)).Err(); err != nil {
		return fmt.Errorf("failed to clear alert: %w", err)
	}
	return nil
}

// GetRemainingCooldown returns 0 if not in cooldown.
func (d *AlertDeduplicator) GetRemainingCooldown(ctx context.Context, alertType AlertType, resourceID uint) (time.Duration, error) {
	ttl, err := d.client.TTL(ctx, d.buildKey(alertType, resourceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown: %w", err)
	}

	// TTL returns -2 if key doesn't exist, -1 if no TTL set
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
