package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/usecase/services"
)

func TestCoordinatorSettlesQueuedRequests(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)
	first := createRequest(t, ledger, from.ID, to.ID, 30)
	second := createRequest(t, ledger, from.ID, to.ID, 20)

	accounts := services.NewAccountService(ledger)
	requests := services.NewRequestService(ledger, accounts)
	transactor := services.NewTransactor(ledger)
	transactor.Start()
	defer transactor.Stop()

	coordinator := services.NewCoordinator(2, time.Millisecond, 5*time.Millisecond, time.Second, requests, transactor)
	coordinator.Start()
	defer coordinator.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		a, err := ledger.GetRequest(ctx, first.ID)
		if err != nil {
			t.Fatalf("get request: %v", err)
		}
		b, err := ledger.GetRequest(ctx, second.ID)
		if err != nil {
			t.Fatalf("get request: %v", err)
		}
		if a.State == domain.RequestStateOK && b.State == domain.RequestStateOK {
			assertBalance(t, ledger, from.ID, 50)
			assertBalance(t, ledger, to.ID, 50)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("requests were not settled before the deadline")
}

func TestCoordinatorStopIsIdempotent(t *testing.T) {
	ledger := memory.NewLedger()

	accounts := services.NewAccountService(ledger)
	requests := services.NewRequestService(ledger, accounts)
	transactor := services.NewTransactor(ledger)
	coordinator := services.NewCoordinator(1, time.Millisecond, 5*time.Millisecond, time.Second, requests, transactor)

	// Stop before start is a no-op.
	coordinator.Stop()

	coordinator.Start()
	coordinator.Start()
	coordinator.Stop()
	coordinator.Stop()
}

func TestCoordinatorRestartResumesPending(t *testing.T) {
	ledger := memory.NewLedger()
	ctx := context.Background()

	from := createAccount(t, ledger, domain.AccountTypePersonal, "alice", 100)
	to := createAccount(t, ledger, domain.AccountTypePersonal, "bob", 0)

	accounts := services.NewAccountService(ledger)
	requests := services.NewRequestService(ledger, accounts)
	transactor := services.NewTransactor(ledger)
	coordinator := services.NewCoordinator(1, time.Millisecond, 5*time.Millisecond, time.Second, requests, transactor)

	// The transactor is stopped: dispatched requests stay RECEIVED.
	coordinator.Start()
	request := createRequest(t, ledger, from.ID, to.ID, 30)
	time.Sleep(50 * time.Millisecond)
	coordinator.Stop()

	current, err := ledger.GetRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if current.State != domain.RequestStateReceived {
		t.Fatalf("expected request to stay RECEIVED while transactor is stopped, got %s", current.State)
	}

	transactor.Start()
	defer transactor.Stop()
	coordinator.Start()
	defer coordinator.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		current, err := ledger.GetRequest(ctx, request.ID)
		if err != nil {
			t.Fatalf("get request: %v", err)
		}
		if current.State == domain.RequestStateOK {
			assertBalance(t, ledger, from.ID, 70)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("request was not settled after restart")
}
