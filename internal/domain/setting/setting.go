package setting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// Keys of the platform settings this engine reads.
const (
	KeySkipCutoffHoursBeforeSlot = "skip_cutoff_hours_before_slot"
	KeyCreditExpiryDays          = "credit_expiry_days"
	KeyWeeklyRenewalDay          = "weekly_renewal_day"
	KeyMonthlyRenewalDay         = "monthly_renewal_day"
	KeyNoticeHours               = "notice_hours"
	KeyRefundPolicy              = "refund_policy"
	KeyTrialDays                 = "trial_days"
)

var knownKeys = map[string]bool{
	KeySkipCutoffHoursBeforeSlot: true,
	KeyCreditExpiryDays:          true,
	KeyWeeklyRenewalDay:          true,
	KeyMonthlyRenewalDay:         true,
	KeyNoticeHours:               true,
	KeyRefundPolicy:              true,
	KeyTrialDays:                 true,
}

var (
	ErrSettingNotFound   = errors.New("setting not found")
	ErrInvalidSettingKey = errors.New("invalid setting key")
)

// Setting is one platform setting row overriding a configured default.
type Setting struct {
	key       string
	value     string
	updatedAt time.Time
}

func NewSetting(key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if !knownKeys[key] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSettingKey, key)
	}
	return &Setting{key: key, value: strings.TrimSpace(value), updatedAt: biztime.NowUTC()}, nil
}

func ReconstructSetting(key, value string, updatedAt time.Time) *Setting {
	return &Setting{key: key, value: value, updatedAt: updatedAt}
}

func (s *Setting) Key() string          { return s.key }
func (s *Setting) Value() string        { return s.value }
func (s *Setting) UpdatedAt() time.Time { return s.updatedAt }
