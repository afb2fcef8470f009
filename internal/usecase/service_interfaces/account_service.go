package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type AccountService interface {
	CreatePersonalAccount(ctx context.Context, name string) (domain.Account, error)
	CreateTopUpAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error)
	CreateWithdrawalAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error)
	FindAccount(ctx context.Context, id string) (domain.Account, error)
	// FindTopUpAccount selects the bank-owned funding account with the
	// smallest balance, spreading usage across funding accounts. Fails with
	// commons.ErrNoFundingAccount when none is provisioned.
	FindTopUpAccount(ctx context.Context) (domain.Account, error)
	// FindWithdrawalAccount selects the bank-owned draining account with the
	// largest balance.
	FindWithdrawalAccount(ctx context.Context) (domain.Account, error)
}
