package usecases

import (
	"context"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	"github.com/homechef-inc/mealsub/internal/application/subscription/dto"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type GetGroupQuery struct {
	PrincipalID uint
	GroupID     uint
}

type GetGroupUseCase struct {
	groupRepo   subscription.GroupRepository
	subRepo     subscription.SubscriptionRepository
	cycleRepo   subscription.CycleRepository
	invoiceRepo billing.InvoiceRepository
	refundRepo  billing.RefundRequestRepository
	creditRepo  credit.Repository
	ledger      *creditUsecases.Ledger
	logger      logger.Interface
}

func NewGetGroupUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	invoiceRepo billing.InvoiceRepository,
	refundRepo billing.RefundRequestRepository,
	creditRepo credit.Repository,
	ledger *creditUsecases.Ledger,
	logger logger.Interface,
) *GetGroupUseCase {
	return &GetGroupUseCase{
		groupRepo:   groupRepo,
		subRepo:     subRepo,
		cycleRepo:   cycleRepo,
		invoiceRepo: invoiceRepo,
		refundRepo:  refundRepo,
		creditRepo:  creditRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

func (uc *GetGroupUseCase) Execute(ctx context.Context, query GetGroupQuery) (*dto.GroupDTO, error) {
	group, err := loadOwnedGroup(ctx, uc.groupRepo, query.GroupID, query.PrincipalID)
	if err != nil {
		return nil, err
	}

	out := dto.ToGroupDTO(group)

	lines, err := uc.subRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, dto.ToLineDTO(l))
	}

	cycles, err := uc.cycleRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	for _, c := range cycles {
		out.Cycles = append(out.Cycles, dto.ToCycleDTO(c))
	}

	invoices, err := uc.invoiceRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	for _, i := range invoices {
		out.Invoices = append(out.Invoices, dto.ToInvoiceDTO(i))
	}

	refunds, err := uc.refundRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	for _, r := range refunds {
		out.RefundRequest = append(out.RefundRequest, dto.ToRefundRequestDTO(r))
	}

	balance, err := uc.ledger.Balance(ctx, group.ID(), group.Currency())
	if err != nil {
		return nil, err
	}
	out.CreditBalance = balance.Minor()

	return out, nil
}

// ListCredits returns every credit of the group, spent or not, with the
// spendable balance.
func (uc *GetGroupUseCase) ListCredits(ctx context.Context, query GetGroupQuery) (*dto.CreditListDTO, error) {
	group, err := loadOwnedGroup(ctx, uc.groupRepo, query.GroupID, query.PrincipalID)
	if err != nil {
		return nil, err
	}

	// Balance first so stale credits are marked expired before listing.
	balance, err := uc.ledger.Balance(ctx, group.ID(), group.Currency())
	if err != nil {
		return nil, err
	}
	all, err := uc.creditRepo.ListByGroup(ctx, group.ID(), "")
	if err != nil {
		return nil, err
	}

	return &dto.CreditListDTO{
		GroupID:  group.ID(),
		Balance:  balance.Minor(),
		Currency: group.Currency(),
		Credits:  dto.ToCreditDTOList(all),
	}, nil
}
