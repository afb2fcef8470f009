package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/domain"
)

type LedgerService struct {
	store repo_interfaces.Ledger
}

func NewLedgerService(store repo_interfaces.Ledger) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) EntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error) {
	if _, err := s.store.GetAccount(ctx, accountID); err != nil {
		return nil, fmt.Errorf("find account %s: %w", accountID, err)
	}

	entries, err := s.store.FindEntriesForAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("find entries for account %s: %w", accountID, err)
	}
	return entries, nil
}

func (s *LedgerService) CalculatedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	entries, err := s.EntriesForAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, entry := range entries {
		if entry.ToAccountID == accountID {
			balance = balance.Add(entry.Amount)
		}
		if entry.FromAccountID == accountID {
			balance = balance.Sub(entry.Amount)
		}
	}
	return balance, nil
}
