package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
	"github.com/api-sage/ledger-settlement/internal/usecase/service_interfaces"
)

// Transactor settles transfer requests. Each Process call runs as one
// all-or-nothing store unit; every write carries the version read earlier in
// the same call, so concurrent settlement attempts for the same request or
// account resolve through the store's version check, not through in-process
// locking.
type Transactor struct {
	store        repo_interfaces.Ledger
	running      atomic.Bool
	beforeSettle func()
}

// The optional beforeSettle hook runs after the funds check and before any
// write is staged. Tests use it to interleave conflicting writes.
func NewTransactor(store repo_interfaces.Ledger, beforeSettle ...func()) *Transactor {
	t := &Transactor{store: store}
	if len(beforeSettle) > 0 {
		t.beforeSettle = beforeSettle[0]
	}
	return t
}

func (t *Transactor) Start() {
	t.running.Store(true)
}

func (t *Transactor) Stop() {
	t.running.Store(false)
}

func (t *Transactor) Process(ctx context.Context, request domain.TransferRequest) (service_interfaces.ResultState, error) {
	if !t.running.Load() {
		logger.Info("transactor not running, skipping request", logger.Fields{
			"requestId": request.ID,
		})
		return service_interfaces.ResultStopped, nil
	}

	var result service_interfaces.ResultState
	err := t.store.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		// Never trust the polled copy: it may already have been settled by
		// an overlapping cycle.
		current, err := tx.GetRequest(ctx, request.ID)
		if err != nil {
			return fmt.Errorf("fetch transfer request %s: %w", request.ID, err)
		}
		if current.State != domain.RequestStateReceived {
			logger.Info("transfer request already processed, skipping", logger.Fields{
				"requestId": current.ID,
				"state":     current.State,
			})
			result = service_interfaces.ResultInvalidState
			return nil
		}

		fromAccount, err := tx.GetAccount(ctx, current.FromAccountID)
		if err != nil {
			return fmt.Errorf("fetch source account %s: %w", current.FromAccountID, err)
		}
		toAccount, err := tx.GetAccount(ctx, current.ToAccountID)
		if err != nil {
			return fmt.Errorf("fetch destination account %s: %w", current.ToAccountID, err)
		}

		if fromAccount.Type.FundsChecked() && fromAccount.Balance.LessThan(current.Amount) {
			logger.Info("transfer request has insufficient funds", logger.Fields{
				"requestId":     current.ID,
				"fromAccountId": fromAccount.ID,
				"amount":        current.Amount,
				"balance":       fromAccount.Balance,
			})
			if err := tx.UpdateRequestState(ctx, current.ID, current.Version, domain.RequestStateNoFunds); err != nil {
				return fmt.Errorf("mark transfer request %s as no-funds: %w", current.ID, err)
			}
			result = service_interfaces.ResultNoFunds
			return nil
		}

		if t.beforeSettle != nil {
			t.beforeSettle()
		}

		if _, err := tx.CreateEntry(ctx, domain.SettlementEntry{
			RequestID:     current.ID,
			FromAccountID: fromAccount.ID,
			ToAccountID:   toAccount.ID,
			Amount:        current.Amount,
			DateSettled:   time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("record settlement entry for request %s: %w", current.ID, err)
		}

		if err := tx.UpdateAccountBalance(ctx, fromAccount.ID, fromAccount.Version, fromAccount.Balance.Sub(current.Amount)); err != nil {
			return fmt.Errorf("debit account %s: %w", fromAccount.ID, err)
		}
		if err := tx.UpdateAccountBalance(ctx, toAccount.ID, toAccount.Version, toAccount.Balance.Add(current.Amount)); err != nil {
			return fmt.Errorf("credit account %s: %w", toAccount.ID, err)
		}
		if err := tx.UpdateRequestState(ctx, current.ID, current.Version, domain.RequestStateOK); err != nil {
			return fmt.Errorf("mark transfer request %s as settled: %w", current.ID, err)
		}

		logger.Info("transfer request settled", logger.Fields{
			"requestId":     current.ID,
			"fromAccountId": fromAccount.ID,
			"toAccountId":   toAccount.ID,
			"amount":        current.Amount,
		})
		result = service_interfaces.ResultMoneySent
		return nil
	})
	if err != nil {
		if errors.Is(err, commons.ErrConflict) || errors.Is(err, commons.ErrDuplicateEntry) {
			// Expected contention: another attempt won the version race. The
			// request stays RECEIVED and the next poll cycle retries it.
			logger.Info("transfer request settlement conflicted", logger.Fields{
				"requestId": request.ID,
				"cause":     err.Error(),
			})
		} else {
			logger.Error("transfer request settlement failed", err, logger.Fields{
				"requestId": request.ID,
			})
		}
		return "", err
	}

	return result, nil
}
