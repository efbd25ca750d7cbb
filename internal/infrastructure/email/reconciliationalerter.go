package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/infrastructure/cache"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// AlertLock suppresses repeated alerts for the same invoice.
type AlertLock interface {
	TryAcquireAlertLock(ctx context.Context, alertType cache.AlertType, resourceID uint, ttl time.Duration) (bool, error)
}

// SMTPAlerter mails operators about payments that need manual
// reconciliation.
type SMTPAlerter struct {
	sender     mailSender
	from       string
	fromName   string
	recipients []string
	lock       AlertLock // Optional
	cooldown   time.Duration
	logger     logger.Interface
}

func NewSMTPAlerter(cfg sharedConfig.AlertConfig, logger logger.Interface) *SMTPAlerter {
	return &SMTPAlerter{
		sender:     gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:       cfg.FromAddress,
		fromName:   cfg.FromName,
		recipients: cfg.Recipients,
		cooldown:   cache.DefaultAlertCooldown,
		logger:     logger,
	}
}

// SetAlertLock sets the cross-instance cooldown (optional dependency injection)
func (a *SMTPAlerter) SetAlertLock(lock AlertLock, cooldown time.Duration) {
	a.lock = lock
	if cooldown > 0 {
		a.cooldown = cooldown
	}
}

var _ billingUsecases.ReconciliationAlerter = (*SMTPAlerter)(nil)

func (a *SMTPAlerter) AlertReconciliationGap(ctx context.Context, alert billingUsecases.ReconciliationAlert) error {
	if len(a.recipients) == 0 {
		return fmt.Errorf("no alert recipients configured")
	}

	if a.lock != nil {
		ok, err := a.lock.TryAcquireAlertLock(ctx, cache.AlertTypeReconciliationGap, alert.InvoiceID, a.cooldown)
		if err != nil {
			// Better a duplicate mail than a missed one.
			a.logger.Warnw("alert cooldown unavailable, sending anyway", "error", err)
		} else if !ok {
			a.logger.Debugw("reconciliation alert suppressed by cooldown", "invoice_id", alert.InvoiceID)
			return nil
		}
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", a.from, a.fromName)
	m.SetHeader("To", a.recipients...)
	m.SetHeader("Subject", alertSubject(alert))
	m.SetBody("text/plain", alertBody(alert))

	if err := a.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	a.logger.Infow("reconciliation alert sent",
		"invoice_id", alert.InvoiceID,
		"recipients", len(a.recipients),
	)
	return nil
}

func alertSubject(alert billingUsecases.ReconciliationAlert) string {
	return fmt.Sprintf("[mealsub] payment needs reconciliation: invoice %s", alert.InvoiceSID)
}

func alertBody(alert billingUsecases.ReconciliationAlert) string {
	var b strings.Builder
	b.WriteString("A payment was received but the subscription was not fulfilled.\n\n")
	fmt.Fprintf(&b, "Invoice:     %s (id %d)\n", alert.InvoiceSID, alert.InvoiceID)
	fmt.Fprintf(&b, "Group:       %d\n", alert.GroupID)
	fmt.Fprintf(&b, "Cycle:       %d\n", alert.CycleID)
	fmt.Fprintf(&b, "Amount:      %s\n", alert.Amount.Format())
	if alert.PaymentRef != "" {
		fmt.Fprintf(&b, "Payment:     %s\n", alert.PaymentRef)
	}
	fmt.Fprintf(&b, "Occurred at: %s\n", biztime.ToBizTimezone(alert.OccurredAt).Format(time.RFC1123))
	fmt.Fprintf(&b, "Cause:       %s\n", alert.Cause)
	b.WriteString("\nThe payment has not been rolled back. The fulfillment retry job will keep trying;\n")
	b.WriteString("check the invoice metadata if the problem persists.\n")
	return b.String()
}

// LogAlerter records alerts in the log only. It is used when no SMTP
// channel is configured.
type LogAlerter struct {
	logger logger.Interface
}

func NewLogAlerter(logger logger.Interface) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (a *LogAlerter) AlertReconciliationGap(ctx context.Context, alert billingUsecases.ReconciliationAlert) error {
	a.logger.Errorw("payment needs reconciliation",
		"invoice_id", alert.InvoiceID,
		"invoice_sid", alert.InvoiceSID,
		"group_id", alert.GroupID,
		"amount", alert.Amount.Minor(),
		"payment_ref", alert.PaymentRef,
		"cause", alert.Cause,
	)
	return nil
}
