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
)

type AccountService struct {
	store repo_interfaces.Ledger
}

func NewAccountService(store repo_interfaces.Ledger) *AccountService {
	return &AccountService{store: store}
}

func (s *AccountService) CreatePersonalAccount(ctx context.Context, name string) (domain.Account, error) {
	return s.createAccount(ctx, domain.AccountTypePersonal, name, decimal.Zero)
}

func (s *AccountService) CreateTopUpAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	return s.createAccount(ctx, domain.AccountTypeTopUp, name, balance)
}

func (s *AccountService) CreateWithdrawalAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	return s.createAccount(ctx, domain.AccountTypeWithdrawal, name, balance)
}

func (s *AccountService) createAccount(ctx context.Context, accountType domain.AccountType, name string, balance decimal.Decimal) (domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, fmt.Errorf("%w: account name cannot be empty", commons.ErrValidation)
	}

	created, err := s.store.CreateAccount(ctx, domain.Account{
		Type:    accountType,
		Name:    name,
		Balance: balance,
	})
	if err != nil {
		logger.Error("account service create account failed", err, logger.Fields{
			"type": accountType,
			"name": name,
		})
		return domain.Account{}, fmt.Errorf("create %s account: %w", accountType, err)
	}

	logger.Info("account service account created", logger.Fields{
		"accountId": created.ID,
		"type":      created.Type,
		"name":      created.Name,
	})
	return created, nil
}

func (s *AccountService) FindAccount(ctx context.Context, id string) (domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Account{}, fmt.Errorf("%w: account id is required", commons.ErrValidation)
	}

	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find account %s: %w", id, err)
	}
	return account, nil
}

func (s *AccountService) FindTopUpAccount(ctx context.Context) (domain.Account, error) {
	accounts, err := s.store.FindAccountsByType(ctx, domain.AccountTypeTopUp)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find top-up accounts: %w", err)
	}
	if len(accounts) == 0 {
		return domain.Account{}, commons.ErrNoFundingAccount
	}

	selected := accounts[0]
	for _, account := range accounts[1:] {
		if account.Balance.LessThan(selected.Balance) {
			selected = account
		}
	}
	return selected, nil
}

func (s *AccountService) FindWithdrawalAccount(ctx context.Context) (domain.Account, error) {
	accounts, err := s.store.FindAccountsByType(ctx, domain.AccountTypeWithdrawal)
	if err != nil {
		return domain.Account{}, fmt.Errorf("find withdrawal accounts: %w", err)
	}
	if len(accounts) == 0 {
		return domain.Account{}, commons.ErrNoFundingAccount
	}

	selected := accounts[0]
	for _, account := range accounts[1:] {
		if account.Balance.GreaterThan(selected.Balance) {
			selected = account
		}
	}
	return selected, nil
}
