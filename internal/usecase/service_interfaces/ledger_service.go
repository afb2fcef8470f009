package service_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type LedgerService interface {
	EntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error)
	// CalculatedBalance recomputes an account's balance from its settlement
	// entries alone. It is an audit view: for accounts opened with a zero
	// balance it must agree with the stored balance.
	CalculatedBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}
