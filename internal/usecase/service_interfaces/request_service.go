package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type RequestService interface {
	ReceiveTransferRequest(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	TopUpRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	WithdrawalRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	RequestState(ctx context.Context, id string) (domain.TransferRequestState, error)
	ListRequestsForAccount(ctx context.Context, accountID string) ([]domain.TransferRequest, error)
	ListRequestsToProcess(ctx context.Context) ([]domain.TransferRequest, error)
}
