package setting

import (
	"fmt"
	"strconv"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
)

// RefundPolicy constrains how a cancellation is settled.
type RefundPolicy string

const (
	RefundPolicyRefundOnly     RefundPolicy = "refund_only"
	RefundPolicyCreditOnly     RefundPolicy = "credit_only"
	RefundPolicyCustomerChoice RefundPolicy = "customer_choice"
)

// Settlement is the form a cancellation payout takes.
type Settlement string

const (
	SettlementRefund Settlement = "refund"
	SettlementCredit Settlement = "credit"
)

func (p RefundPolicy) IsValid() bool {
	switch p {
	case RefundPolicyRefundOnly, RefundPolicyCreditOnly, RefundPolicyCustomerChoice:
		return true
	}
	return false
}

// Offered lists the settlements a customer may pick under the policy.
func (p RefundPolicy) Offered() []Settlement {
	switch p {
	case RefundPolicyRefundOnly:
		return []Settlement{SettlementRefund}
	case RefundPolicyCreditOnly:
		return []Settlement{SettlementCredit}
	default:
		return []Settlement{SettlementRefund, SettlementCredit}
	}
}

// Resolve picks the settlement for a requested preference. An empty
// preference takes the policy's first offer; a preference the policy does
// not offer is an error.
func (p RefundPolicy) Resolve(preference Settlement) (Settlement, error) {
	offered := p.Offered()
	if preference == "" {
		return offered[0], nil
	}
	for _, s := range offered {
		if s == preference {
			return s, nil
		}
	}
	return "", fmt.Errorf("settlement %q is not offered under policy %s", preference, p)
}

// PlatformConfig is the effective platform settings for one request or
// batch. It is loaded once and passed into the components that need it.
type PlatformConfig struct {
	SkipCutoff        time.Duration
	CreditExpiry      time.Duration
	WeeklyRenewalDay  time.Weekday
	MonthlyRenewalDay int
	Notice            time.Duration
	RefundPolicy      RefundPolicy
	TrialDays         int
}

// NewPlatformConfig converts configured defaults.
func NewPlatformConfig(cfg sharedConfig.PlatformConfig) (PlatformConfig, error) {
	wd, err := calendar.ParseWeekday(cfg.WeeklyRenewalDay)
	if err != nil {
		return PlatformConfig{}, err
	}
	pc := PlatformConfig{
		SkipCutoff:        time.Duration(cfg.SkipCutoffHoursBeforeSlot) * time.Hour,
		CreditExpiry:      time.Duration(cfg.CreditExpiryDays) * 24 * time.Hour,
		WeeklyRenewalDay:  wd,
		MonthlyRenewalDay: cfg.MonthlyRenewalDay,
		Notice:            time.Duration(cfg.NoticeHours) * time.Hour,
		RefundPolicy:      RefundPolicy(cfg.RefundPolicy),
		TrialDays:         cfg.TrialDays,
	}
	return pc, pc.validate()
}

// WithOverrides applies stored settings on top of the defaults.
func (pc PlatformConfig) WithOverrides(settings []*Setting) (PlatformConfig, error) {
	out := pc
	for _, s := range settings {
		if err := out.apply(s.Key(), s.Value()); err != nil {
			return pc, fmt.Errorf("setting %s: %w", s.Key(), err)
		}
	}
	return out, out.validate()
}

func (pc *PlatformConfig) apply(key, value string) error {
	switch key {
	case KeyWeeklyRenewalDay:
		wd, err := calendar.ParseWeekday(value)
		if err != nil {
			return err
		}
		pc.WeeklyRenewalDay = wd
		return nil
	case KeyRefundPolicy:
		pc.RefundPolicy = RefundPolicy(value)
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", value)
	}
	switch key {
	case KeySkipCutoffHoursBeforeSlot:
		pc.SkipCutoff = time.Duration(n) * time.Hour
	case KeyCreditExpiryDays:
		pc.CreditExpiry = time.Duration(n) * 24 * time.Hour
	case KeyMonthlyRenewalDay:
		pc.MonthlyRenewalDay = n
	case KeyNoticeHours:
		pc.Notice = time.Duration(n) * time.Hour
	case KeyTrialDays:
		pc.TrialDays = n
	default:
		return ErrInvalidSettingKey
	}
	return nil
}

func (pc PlatformConfig) validate() error {
	if !pc.RefundPolicy.IsValid() {
		return fmt.Errorf("invalid refund policy %q", pc.RefundPolicy)
	}
	if pc.MonthlyRenewalDay < 1 || pc.MonthlyRenewalDay > 28 {
		return fmt.Errorf("monthly renewal day out of range: %d", pc.MonthlyRenewalDay)
	}
	if pc.CreditExpiry <= 0 {
		return fmt.Errorf("credit expiry must be positive")
	}
	if pc.Notice < 0 || pc.SkipCutoff < 0 || pc.TrialDays < 0 {
		return fmt.Errorf("durations cannot be negative")
	}
	return nil
}

// CreditExpiryFrom returns the expiry instant of a credit issued at now.
func (pc PlatformConfig) CreditExpiryFrom(now time.Time) time.Time {
	return now.Add(pc.CreditExpiry)
}

// EarliestEffectiveDate is the first civil date whose business-day start
// is at least notice away from now.
func (pc PlatformConfig) EarliestEffectiveDate(now time.Time) time.Time {
	limit := now.Add(pc.Notice)
	d := calendar.DateOnly(limit)
	if biztime.StartOfDateUTC(d).Before(limit) {
		d = calendar.AddDays(d, 1)
	}
	return d
}
