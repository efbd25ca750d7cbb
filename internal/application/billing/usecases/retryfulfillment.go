package usecases

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/shared/goroutine"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

const retryFulfillmentBatchSize = 100

// RetryFulfillmentUseCase regenerates orders for paid invoices still
// flagged fulfillment_pending.
type RetryFulfillmentUseCase struct {
	invoiceRepo billing.InvoiceRepository
	finalizer   *FinalizeInvoiceUseCase
	workers     int
	logger      logger.Interface
}

func NewRetryFulfillmentUseCase(
	invoiceRepo billing.InvoiceRepository,
	finalizer *FinalizeInvoiceUseCase,
	workers int,
	logger logger.Interface,
) *RetryFulfillmentUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &RetryFulfillmentUseCase{
		invoiceRepo: invoiceRepo,
		finalizer:   finalizer,
		workers:     workers,
		logger:      logger,
	}
}

func (uc *RetryFulfillmentUseCase) Execute(ctx context.Context) (int, error) {
	pending, err := uc.invoiceRepo.ListFulfillmentPending(ctx, retryFulfillmentBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list invoices pending fulfillment: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	uc.logger.Infow("retrying fulfillment for paid invoices", "count", len(pending))

	var succeeded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for _, inv := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := goroutine.Run(uc.logger, "retry-fulfillment", func() error {
				_, err := uc.finalizer.Fulfill(gctx, inv)
				return err
			})
			if err != nil {
				uc.logger.Warnw("fulfillment retry failed",
					"invoice_id", inv.ID(),
					"error", err,
				)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(succeeded.Load())
	if n > 0 {
		uc.logger.Infow("fulfillment retried", "success", n, "total", len(pending))
	}
	return n, nil
}
