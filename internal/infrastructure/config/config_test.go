package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "Asia/Kolkata", cfg.Server.Timezone)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Platform.SkipCutoffHoursBeforeSlot)
	assert.Equal(t, "fri", cfg.Platform.WeeklyRenewalDay)
	assert.Equal(t, 500*time.Millisecond, cfg.Gateway.RetryInterval)
	assert.Equal(t, 24*time.Hour, cfg.Gateway.DedupTTL)
	assert.Equal(t, 2*time.Minute, cfg.Gateway.DedupInFlight)
	assert.Equal(t, 10*time.Second, cfg.Cache.CapacityTTL)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.FulfillmentRetryPeriod)
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MEALSUB_DATABASE_DRIVER", "sqlite")
	t.Setenv("MEALSUB_PLATFORM_MONTHLY_RENEWAL_DAY", "10")

	cfg, err := Load("test")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Platform.MonthlyRenewalDay)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "MEALSUB_DATABASE_DRIVER", "postgres"},
		{"refund policy", "MEALSUB_PLATFORM_REFUND_POLICY", "whatever"},
		{"monthly day", "MEALSUB_PLATFORM_MONTHLY_RENEWAL_DAY", "31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load("test")
			assert.Error(t, err)
		})
	}
}
