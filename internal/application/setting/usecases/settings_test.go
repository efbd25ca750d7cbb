package usecases_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

func TestSettingProvider_DefaultsWhenEmpty(t *testing.T) {
	env := testutil.NewEnv(t)

	cfg, err := env.Provider.Load(testutil.Ctx())
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, cfg.SkipCutoff)
	assert.Equal(t, 60*24*time.Hour, cfg.CreditExpiry)
	assert.Equal(t, time.Friday, cfg.WeeklyRenewalDay)
	assert.Equal(t, 25, cfg.MonthlyRenewalDay)
	assert.Equal(t, 24*time.Hour, cfg.Notice)
	assert.Equal(t, setting.RefundPolicy("customer_choice"), cfg.RefundPolicy)
	assert.Equal(t, 3, cfg.TrialDays)
}

func TestUpdateSettings_OverridesDefaults(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := testutil.Ctx()
	uc := usecases.NewUpdateSettingsUseCase(env.Settings, env.Provider, env.Log)

	cfg, err := uc.Execute(ctx, usecases.UpdateSettingsCommand{Values: map[string]string{
		setting.KeyNoticeHours:       "48",
		setting.KeyWeeklyRenewalDay:  "thu",
		setting.KeyCreditExpiryDays:  "30",
		setting.KeyMonthlyRenewalDay: "20",
	}})
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, cfg.Notice)
	assert.Equal(t, time.Thursday, cfg.WeeklyRenewalDay)
	assert.Equal(t, 30*24*time.Hour, cfg.CreditExpiry)
	assert.Equal(t, 20, cfg.MonthlyRenewalDay)

	reloaded, err := env.Provider.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestUpdateSettings_RejectsInvalidBatch(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := testutil.Ctx()
	uc := usecases.NewUpdateSettingsUseCase(env.Settings, env.Provider, env.Log)

	tests := []struct {
		name   string
		values map[string]string
	}{
		{name: "empty", values: map[string]string{}},
		{name: "unknown key", values: map[string]string{"max_users": "5"}},
		{name: "not a number", values: map[string]string{setting.KeyNoticeHours: "soon"}},
		{name: "monthly day out of range", values: map[string]string{setting.KeyMonthlyRenewalDay: "31"}},
		{name: "bad policy", values: map[string]string{setting.KeyRefundPolicy: "never"}},
		{
			name: "one bad key spoils the batch",
			values: map[string]string{
				setting.KeyNoticeHours:  "12",
				setting.KeyRefundPolicy: "never",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, usecases.UpdateSettingsCommand{Values: tt.values})
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}

	cfg, err := env.Provider.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Notice)
}
