package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
	"github.com/api-sage/ledger-settlement/internal/usecase/service_interfaces"
)

// RequestService is the intake side of the ledger: it validates and records
// transfer requests in state RECEIVED. Settlement happens later, in the
// transactor, driven by the coordinator's poll cycle.
type RequestService struct {
	store    repo_interfaces.Ledger
	accounts service_interfaces.AccountService
}

func NewRequestService(store repo_interfaces.Ledger, accounts service_interfaces.AccountService) *RequestService {
	return &RequestService{store: store, accounts: accounts}
}

func (s *RequestService) ReceiveTransferRequest(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (domain.TransferRequest, error) {
	if err := validateAmount(amount); err != nil {
		return domain.TransferRequest{}, err
	}

	fromAccountID = strings.TrimSpace(fromAccountID)
	toAccountID = strings.TrimSpace(toAccountID)
	if fromAccountID == toAccountID {
		return domain.TransferRequest{}, fmt.Errorf("%w: fromAccountId and toAccountId cannot be the same", commons.ErrValidation)
	}

	fromAccount, err := s.accounts.FindAccount(ctx, fromAccountID)
	if err != nil {
		return domain.TransferRequest{}, err
	}
	toAccount, err := s.accounts.FindAccount(ctx, toAccountID)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	if fromAccount.Type != domain.AccountTypePersonal || toAccount.Type != domain.AccountTypePersonal {
		return domain.TransferRequest{}, fmt.Errorf("%w: transfer is allowed between personal accounts only", commons.ErrValidation)
	}

	return s.createRequest(ctx, fromAccount.ID, toAccount.ID, amount)
}

func (s *RequestService) TopUpRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error) {
	if err := validateAmount(amount); err != nil {
		return domain.TransferRequest{}, err
	}

	account, err := s.accounts.FindAccount(ctx, accountID)
	if err != nil {
		return domain.TransferRequest{}, err
	}
	if account.Type != domain.AccountTypePersonal {
		return domain.TransferRequest{}, fmt.Errorf("%w: top-up is allowed for personal accounts only", commons.ErrValidation)
	}

	topUpAccount, err := s.accounts.FindTopUpAccount(ctx)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	return s.createRequest(ctx, topUpAccount.ID, account.ID, amount)
}

func (s *RequestService) WithdrawalRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error) {
	if err := validateAmount(amount); err != nil {
		return domain.TransferRequest{}, err
	}

	account, err := s.accounts.FindAccount(ctx, accountID)
	if err != nil {
		return domain.TransferRequest{}, err
	}
	if account.Type != domain.AccountTypePersonal {
		return domain.TransferRequest{}, fmt.Errorf("%w: withdrawal is allowed for personal accounts only", commons.ErrValidation)
	}

	withdrawalAccount, err := s.accounts.FindWithdrawalAccount(ctx)
	if err != nil {
		return domain.TransferRequest{}, err
	}

	return s.createRequest(ctx, account.ID, withdrawalAccount.ID, amount)
}

func (s *RequestService) createRequest(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (domain.TransferRequest, error) {
	created, err := s.store.CreateRequest(ctx, domain.TransferRequest{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		State:         domain.RequestStateReceived,
	})
	if err != nil {
		logger.Error("request service create request failed", err, logger.Fields{
			"fromAccountId": fromAccountID,
			"toAccountId":   toAccountID,
		})
		return domain.TransferRequest{}, fmt.Errorf("create transfer request: %w", err)
	}

	logger.Info("request service request received", logger.Fields{
		"requestId":     created.ID,
		"fromAccountId": created.FromAccountID,
		"toAccountId":   created.ToAccountID,
		"amount":        created.Amount,
	})
	return created, nil
}

func (s *RequestService) RequestState(ctx context.Context, id string) (domain.TransferRequestState, error) {
	request, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find transfer request %s: %w", id, err)
	}
	return request.State, nil
}

func (s *RequestService) ListRequestsForAccount(ctx context.Context, accountID string) ([]domain.TransferRequest, error) {
	account, err := s.accounts.FindAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Type != domain.AccountTypePersonal {
		return nil, fmt.Errorf("%w: listing requests is allowed for personal accounts only", commons.ErrValidation)
	}

	requests, err := s.store.FindRequestsForAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list requests for account %s: %w", accountID, err)
	}
	return requests, nil
}

func (s *RequestService) ListRequestsToProcess(ctx context.Context) ([]domain.TransferRequest, error) {
	requests, err := s.store.FindRequestsInState(ctx, domain.RequestStateReceived)
	if err != nil {
		return nil, fmt.Errorf("list requests to process: %w", err)
	}
	return requests, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: amount must be greater than zero", commons.ErrValidation)
	}
	return nil
}
