package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/usecase/services"
)

func newRequestService(ledger *memory.Ledger) *services.RequestService {
	return services.NewRequestService(ledger, services.NewAccountService(ledger))
}

func TestRequestServiceReceivesTransfer(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)

	request, err := svc.ReceiveTransferRequest(ctx, from.ID, to.ID, decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("receive transfer request: %v", err)
	}
	if request.State != domain.RequestStateReceived {
		t.Fatalf("expected RECEIVED, got %s", request.State)
	}
	if request.FromAccountID != from.ID || request.ToAccountID != to.ID {
		t.Fatalf("unexpected accounts on request: %s -> %s", request.FromAccountID, request.ToAccountID)
	}

	// Intake never touches balances. Settlement does that later.
	assertBalance(t, ledger, from.ID, 100)
	assertBalance(t, ledger, to.ID, 0)
}

func TestRequestServiceRejectsNonPositiveAmount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)

	_, err := svc.ReceiveTransferRequest(context.Background(), from.ID, to.ID, decimal.Zero)
	if !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}

func TestRequestServiceRejectsSameAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)

	_, err := svc.ReceiveTransferRequest(context.Background(), from.ID, from.ID, decimal.NewFromInt(10))
	if !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error for same account, got %v", err)
	}
}

func TestRequestServiceRejectsTransferWithBankAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	bank := createAccount(t, ledger, domain.AccountTypeTopUp, "bank", 0)

	_, err := svc.ReceiveTransferRequest(context.Background(), from.ID, bank.ID, decimal.NewFromInt(10))
	if !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error for bank-owned destination, got %v", err)
	}
}

func TestRequestServiceTransferUnknownAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)

	_, err := svc.ReceiveTransferRequest(context.Background(), from.ID, "missing", decimal.NewFromInt(10))
	if !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRequestServiceTopUpUsesFundingAccountAsSource(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	account := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 0)
	bank := createAccount(t, ledger, domain.AccountTypeTopUp, "bank top-up", 0)

	request, err := svc.TopUpRequest(ctx, account.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("top-up request: %v", err)
	}
	if request.FromAccountID != bank.ID {
		t.Fatalf("expected funding source %s, got %s", bank.ID, request.FromAccountID)
	}
	if request.ToAccountID != account.ID {
		t.Fatalf("expected destination %s, got %s", account.ID, request.ToAccountID)
	}
}

func TestRequestServiceTopUpWithoutFundingAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	account := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 0)

	_, err := svc.TopUpRequest(context.Background(), account.ID, decimal.NewFromInt(100))
	if !errors.Is(err, commons.ErrNoFundingAccount) {
		t.Fatalf("expected ErrNoFundingAccount, got %v", err)
	}
}

func TestRequestServiceTopUpRejectsBankAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)

	bank := createAccount(t, ledger, domain.AccountTypeTopUp, "bank top-up", 0)

	_, err := svc.TopUpRequest(context.Background(), bank.ID, decimal.NewFromInt(100))
	if !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequestServiceWithdrawalUsesFundingAccountAsDestination(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	account := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	bank := createAccount(t, ledger, domain.AccountTypeWithdrawal, "bank withdrawal", 0)

	request, err := svc.WithdrawalRequest(ctx, account.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("withdrawal request: %v", err)
	}
	if request.FromAccountID != account.ID {
		t.Fatalf("expected source %s, got %s", account.ID, request.FromAccountID)
	}
	if request.ToAccountID != bank.ID {
		t.Fatalf("expected funding destination %s, got %s", bank.ID, request.ToAccountID)
	}
}

func TestRequestServiceRequestState(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)
	request := createRequest(t, ledger, from.ID, to.ID, 10)

	state, err := svc.RequestState(ctx, request.ID)
	if err != nil {
		t.Fatalf("request state: %v", err)
	}
	if state != domain.RequestStateReceived {
		t.Fatalf("expected RECEIVED, got %s", state)
	}

	if _, err := svc.RequestState(ctx, "missing"); !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestRequestServiceListRequestsForAccount(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)
	bank := createAccount(t, ledger, domain.AccountTypeTopUp, "bank", 0)
	createRequest(t, ledger, from.ID, to.ID, 10)
	createRequest(t, ledger, to.ID, from.ID, 5)

	list, err := svc.ListRequestsForAccount(ctx, from.ID)
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(list))
	}

	if _, err := svc.ListRequestsForAccount(ctx, bank.ID); !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error for bank-owned account, got %v", err)
	}
}

func TestRequestServiceListRequestsToProcess(t *testing.T) {
	ledger := memory.NewLedger()
	svc := newRequestService(ledger)
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)
	pending := createRequest(t, ledger, from.ID, to.ID, 10)

	settled := createRequest(t, ledger, from.ID, to.ID, 5)
	if err := ledger.UpdateRequestState(ctx, settled.ID, settled.Version, domain.RequestStateOK); err != nil {
		t.Fatalf("mark settled: %v", err)
	}

	list, err := svc.ListRequestsToProcess(ctx)
	if err != nil {
		t.Fatalf("list requests to process: %v", err)
	}
	if len(list) != 1 || list[0].ID != pending.ID {
		t.Fatalf("expected only the pending request, got %d", len(list))
	}
}
