package setting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
)

func defaults() sharedConfig.PlatformConfig {
	return sharedConfig.PlatformConfig{
		SkipCutoffHoursBeforeSlot: 12,
		CreditExpiryDays:          60,
		WeeklyRenewalDay:          "fri",
		MonthlyRenewalDay:         25,
		NoticeHours:               24,
		RefundPolicy:              "customer_choice",
		TrialDays:                 3,
	}
}

func TestNewPlatformConfig(t *testing.T) {
	pc, err := NewPlatformConfig(defaults())
	require.NoError(t, err)

	assert.Equal(t, time.Friday, pc.WeeklyRenewalDay)
	assert.Equal(t, 60*24*time.Hour, pc.CreditExpiry)
	assert.Equal(t, RefundPolicyCustomerChoice, pc.RefundPolicy)
}

func TestPlatformConfig_WithOverrides(t *testing.T) {
	pc, err := NewPlatformConfig(defaults())
	require.NoError(t, err)

	out, err := pc.WithOverrides([]*Setting{
		ReconstructSetting(KeyNoticeHours, "48", time.Time{}),
		ReconstructSetting(KeyRefundPolicy, "credit_only", time.Time{}),
		ReconstructSetting(KeyWeeklyRenewalDay, "thu", time.Time{}),
	})
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, out.Notice)
	assert.Equal(t, RefundPolicyCreditOnly, out.RefundPolicy)
	assert.Equal(t, time.Thursday, out.WeeklyRenewalDay)
	assert.Equal(t, 24*time.Hour, pc.Notice, "defaults are not mutated")
}

func TestPlatformConfig_WithOverrides_RejectsBadValue(t *testing.T) {
	pc, err := NewPlatformConfig(defaults())
	require.NoError(t, err)

	_, err = pc.WithOverrides([]*Setting{ReconstructSetting(KeyCreditExpiryDays, "sixty", time.Time{})})
	assert.Error(t, err)

	_, err = pc.WithOverrides([]*Setting{ReconstructSetting(KeyRefundPolicy, "store_credit", time.Time{})})
	assert.Error(t, err)
}

func TestRefundPolicy_Resolve(t *testing.T) {
	s, err := RefundPolicyCustomerChoice.Resolve(SettlementCredit)
	require.NoError(t, err)
	assert.Equal(t, SettlementCredit, s)

	s, err = RefundPolicyRefundOnly.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, SettlementRefund, s)

	_, err = RefundPolicyCreditOnly.Resolve(SettlementRefund)
	assert.Error(t, err)
}

func TestPlatformConfig_EarliestEffectiveDate(t *testing.T) {
	pc := PlatformConfig{Notice: 24 * time.Hour}

	// 2024-06-08 10:00 IST + 24h = 2024-06-09 10:00 IST, so the 10th is first.
	now := time.Date(2024, 6, 8, 4, 30, 0, 0, time.UTC)
	assert.Equal(t, calendar.MustDate("2024-06-10"), pc.EarliestEffectiveDate(now))

	// Exactly midnight IST of the 9th.
	midnight := time.Date(2024, 6, 7, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, calendar.MustDate("2024-06-09"), pc.EarliestEffectiveDate(midnight))
}

func TestNewSetting_RejectsUnknownKey(t *testing.T) {
	_, err := NewSetting("max_orders", "10")
	assert.ErrorIs(t, err, ErrInvalidSettingKey)
}
