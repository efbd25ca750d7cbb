package usecases

import (
	"context"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type HandlePaymentWebhookCommand struct {
	Body      []byte
	Signature string
}

// HandlePaymentWebhookUseCase is the gateway webhook entry point. The
// signature is checked on the raw body before it is parsed.
type HandlePaymentWebhookUseCase struct {
	verifier  paymentgateway.WebhookVerifier
	finalizer *FinalizeInvoiceUseCase
	dedup     DeliveryDeduplicator // Optional
	logger    logger.Interface
}

func NewHandlePaymentWebhookUseCase(
	verifier paymentgateway.WebhookVerifier,
	finalizer *FinalizeInvoiceUseCase,
	logger logger.Interface,
) *HandlePaymentWebhookUseCase {
	return &HandlePaymentWebhookUseCase{
		verifier:  verifier,
		finalizer: finalizer,
		logger:    logger,
	}
}

// SetDeduplicator sets the delivery deduplicator (optional dependency injection)
func (uc *HandlePaymentWebhookUseCase) SetDeduplicator(dedup DeliveryDeduplicator) {
	uc.dedup = dedup
}

// Execute returns an unauthorized error for a bad signature and a
// validation error for an unreadable body. Any other error means the event
// was not durably processed and the gateway should retry.
func (uc *HandlePaymentWebhookUseCase) Execute(ctx context.Context, cmd HandlePaymentWebhookCommand) (*FinalizeResult, error) {
	if err := uc.verifier.Verify(cmd.Body, cmd.Signature); err != nil {
		uc.logger.Warnw("invalid payment webhook signature", "error", err)
		return nil, apperrors.NewUnauthorizedError("invalid webhook signature")
	}

	event, err := paymentgateway.ParseWebhookEvent(cmd.Body)
	if err != nil {
		uc.logger.Warnw("invalid payment webhook body", "error", err)
		return nil, apperrors.NewValidationError("invalid webhook payload", err.Error())
	}

	key := event.DedupKey()
	claimed := false
	if uc.dedup != nil {
		state, err := uc.dedup.Claim(ctx, key)
		switch {
		case err != nil:
			// Redis trouble must not block payments; the status check still holds.
			uc.logger.Warnw("webhook dedup unavailable", "key", key, "error", err)
		case state == DeliveryDone:
			uc.logger.Infow("duplicate webhook delivery dropped", "key", key)
			return &FinalizeResult{Action: ActionNoop, Reason: "duplicate delivery"}, nil
		case state == DeliveryInFlight:
			uc.logger.Infow("webhook delivery already in flight", "key", key)
			return nil, apperrors.NewConflictError("delivery is being processed, retry later")
		default:
			claimed = true
		}
	}

	result, err := uc.finalizer.Finalize(ctx, event)
	if err != nil {
		if claimed {
			if relErr := uc.dedup.Release(ctx, key); relErr != nil {
				uc.logger.Warnw("failed to release webhook dedup key", "key", key, "error", relErr)
			}
		}
		return nil, err
	}

	if claimed {
		if err := uc.dedup.Complete(ctx, key); err != nil {
			// The in-flight marker expires and the status check absorbs the replay.
			uc.logger.Warnw("failed to record webhook delivery", "key", key, "error", err)
		}
	}
	return result, nil
}
