package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/logger"
	"github.com/api-sage/ledger-settlement/internal/usecase/service_interfaces"
)

var bankSeedBalance = decimal.NewFromInt(999999)

// BankInitializer provisions the bank-owned funding accounts the settlement
// engine needs before any top-up or withdrawal can be accepted.
type BankInitializer struct {
	accounts service_interfaces.AccountService
}

func NewBankInitializer(accounts service_interfaces.AccountService) *BankInitializer {
	return &BankInitializer{accounts: accounts}
}

func (b *BankInitializer) Init(ctx context.Context) error {
	if err := b.ensureTopUpAccount(ctx); err != nil {
		return err
	}
	return b.ensureWithdrawalAccount(ctx)
}

func (b *BankInitializer) ensureTopUpAccount(ctx context.Context) error {
	_, err := b.accounts.FindTopUpAccount(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, commons.ErrNoFundingAccount) {
		return fmt.Errorf("bank initializer top-up lookup: %w", err)
	}

	created, err := b.accounts.CreateTopUpAccount(ctx, "Bank top-up account", bankSeedBalance)
	if err != nil {
		return fmt.Errorf("bank initializer create top-up account: %w", err)
	}
	logger.Info("bank initializer provisioned top-up account", logger.Fields{
		"accountId": created.ID,
	})
	return nil
}

func (b *BankInitializer) ensureWithdrawalAccount(ctx context.Context) error {
	_, err := b.accounts.FindWithdrawalAccount(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, commons.ErrNoFundingAccount) {
		return fmt.Errorf("bank initializer withdrawal lookup: %w", err)
	}

	created, err := b.accounts.CreateWithdrawalAccount(ctx, "Bank withdrawal account", bankSeedBalance)
	if err != nil {
		return fmt.Errorf("bank initializer create withdrawal account: %w", err)
	}
	logger.Info("bank initializer provisioned withdrawal account", logger.Fields{
		"accountId": created.ID,
	})
	return nil
}
