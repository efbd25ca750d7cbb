package usecases

import (
	"context"
	"fmt"

	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// ExpireCreditsUseCase sweeps available credits past their expiry.
type ExpireCreditsUseCase struct {
	creditRepo credit.Repository
	logger     logger.Interface
}

func NewExpireCreditsUseCase(creditRepo credit.Repository, logger logger.Interface) *ExpireCreditsUseCase {
	return &ExpireCreditsUseCase{
		creditRepo: creditRepo,
		logger:     logger,
	}
}

func (uc *ExpireCreditsUseCase) Execute(ctx context.Context) (int, error) {
	n, err := uc.creditRepo.ExpireDue(ctx, biztime.NowUTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire credits: %w", err)
	}
	if n > 0 {
		uc.logger.Infow("credits expired", "count", n)
	}
	return int(n), nil
}
