package repo_interfaces

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account domain.Account) (domain.Account, error)
	GetAccount(ctx context.Context, id string) (domain.Account, error)
	FindAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error)
	// UpdateAccountBalance writes a new balance for the account, guarded by
	// the version the caller read earlier. A mismatch with the stored version
	// yields commons.ErrConflict and the write is rejected.
	UpdateAccountBalance(ctx context.Context, id string, expectedVersion int, balance decimal.Decimal) error
}

type TransferRequestRepository interface {
	CreateRequest(ctx context.Context, request domain.TransferRequest) (domain.TransferRequest, error)
	GetRequest(ctx context.Context, id string) (domain.TransferRequest, error)
	FindRequestsInState(ctx context.Context, state domain.TransferRequestState) ([]domain.TransferRequest, error)
	FindRequestsForAccount(ctx context.Context, accountID string) ([]domain.TransferRequest, error)
	// UpdateRequestState is version-guarded the same way as
	// UpdateAccountBalance.
	UpdateRequestState(ctx context.Context, id string, expectedVersion int, state domain.TransferRequestState) error
}

type SettlementEntryRepository interface {
	// CreateEntry appends one immutable settlement entry. A second entry for
	// the same request yields commons.ErrDuplicateEntry.
	CreateEntry(ctx context.Context, entry domain.SettlementEntry) (domain.SettlementEntry, error)
	FindEntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error)
}

type Store interface {
	AccountRepository
	TransferRequestRepository
	SettlementEntryRepository
}

// Ledger is a Store that can also run a group of operations as one
// all-or-nothing unit. When fn returns an error, or any version-guarded
// write inside fn is rejected, none of the unit's writes become visible.
type Ledger interface {
	Store
	Execute(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
