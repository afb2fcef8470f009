package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
)

func TestLedgerUpdateAccountBalanceBumpsVersion(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	account, err := ledger.CreateAccount(ctx, domain.Account{
		Type:    domain.AccountTypePersonal,
		Name:    "alice",
		Balance: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := ledger.UpdateAccountBalance(ctx, account.ID, account.Version, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("update balance: %v", err)
	}

	updated, err := ledger.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !updated.Balance.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected balance 25, got %s", updated.Balance)
	}
	if updated.Version != account.Version+1 {
		t.Fatalf("expected version %d, got %d", account.Version+1, updated.Version)
	}
}

func TestLedgerUpdateAccountBalanceStaleVersionConflicts(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	account, err := ledger.CreateAccount(ctx, domain.Account{
		Type:    domain.AccountTypePersonal,
		Name:    "alice",
		Balance: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if err := ledger.UpdateAccountBalance(ctx, account.ID, account.Version, decimal.NewFromInt(20)); err != nil {
		t.Fatalf("first update: %v", err)
	}

	err = ledger.UpdateAccountBalance(ctx, account.ID, account.Version, decimal.NewFromInt(30))
	if !errors.Is(err, commons.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale version, got %v", err)
	}

	current, err := ledger.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !current.Balance.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected losing write to be discarded, balance is %s", current.Balance)
	}
}

func TestLedgerUpdateUnknownAccountNotFound(t *testing.T) {
	ledger := memory.NewLedger()

	err := ledger.UpdateAccountBalance(context.Background(), "missing", 0, decimal.NewFromInt(1))
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestLedgerDuplicateEntryRejected(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	from, to, request := seedSettlementFixture(t, ledger)

	entry := domain.SettlementEntry{
		RequestID:     request.ID,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        request.Amount,
	}
	if _, err := ledger.CreateEntry(ctx, entry); err != nil {
		t.Fatalf("first entry: %v", err)
	}
	if _, err := ledger.CreateEntry(ctx, entry); !errors.Is(err, commons.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestLedgerExecuteIsAllOrNothing(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	from, to, request := seedSettlementFixture(t, ledger)

	err := ledger.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		if err := tx.UpdateAccountBalance(ctx, from.ID, from.Version, decimal.NewFromInt(0)); err != nil {
			return err
		}
		// Stale version: the whole unit must be discarded at commit.
		return tx.UpdateAccountBalance(ctx, to.ID, to.Version+5, decimal.NewFromInt(100))
	})
	if !errors.Is(err, commons.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	current, err := ledger.GetAccount(ctx, from.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !current.Balance.Equal(from.Balance) {
		t.Fatalf("expected staged debit to be discarded, balance is %s", current.Balance)
	}
	if got, _ := ledger.GetRequest(ctx, request.ID); got.State != domain.RequestStateReceived {
		t.Fatalf("expected request untouched, state is %s", got.State)
	}
}

func TestLedgerExecuteReadsSeeStagedWrites(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	from, _, _ := seedSettlementFixture(t, ledger)

	err := ledger.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		if err := tx.UpdateAccountBalance(ctx, from.ID, from.Version, decimal.NewFromInt(7)); err != nil {
			return err
		}
		staged, err := tx.GetAccount(ctx, from.ID)
		if err != nil {
			return err
		}
		if !staged.Balance.Equal(decimal.NewFromInt(7)) {
			t.Fatalf("expected staged balance 7, got %s", staged.Balance)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func seedSettlementFixture(t *testing.T, ledger *memory.Ledger) (domain.Account, domain.Account, domain.TransferRequest) {
	t.Helper()
	ctx := context.Background()

	from, err := ledger.CreateAccount(ctx, domain.Account{
		Type:    domain.AccountTypePersonal,
		Name:    "from",
		Balance: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("create from account: %v", err)
	}
	to, err := ledger.CreateAccount(ctx, domain.Account{
		Type:    domain.AccountTypePersonal,
		Name:    "to",
		Balance: decimal.NewFromInt(0),
	})
	if err != nil {
		t.Fatalf("create to account: %v", err)
	}
	request, err := ledger.CreateRequest(ctx, domain.TransferRequest{
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        decimal.NewFromInt(50),
		State:         domain.RequestStateReceived,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return from, to, request
}
