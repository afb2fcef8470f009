package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
)

// Ledger is an in-memory repo_interfaces.Ledger with the same optimistic
// versioning contract as the postgres store. A unit of work stages its
// writes and commits them under one lock: every expected version is
// re-validated against the committed state, and either all writes apply or
// none do. Reads inside a unit see that unit's staged writes; reads outside
// see committed state only.
type Ledger struct {
	mu            sync.Mutex
	accounts      map[string]domain.Account
	requests      map[string]domain.TransferRequest
	entries       []domain.SettlementEntry
	entryRequests map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts:      make(map[string]domain.Account),
		requests:      make(map[string]domain.TransferRequest),
		entryRequests: make(map[string]struct{}),
	}
}

func (l *Ledger) Execute(ctx context.Context, fn func(ctx context.Context, tx repo_interfaces.Store) error) error {
	tx := &memTx{ledger: l}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (l *Ledger) CreateAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	var created domain.Account
	err := l.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		var err error
		created, err = tx.CreateAccount(ctx, account)
		return err
	})
	return created, err
}

func (l *Ledger) GetAccount(_ context.Context, id string) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (l *Ledger) FindAccountsByType(_ context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := make([]domain.Account, 0)
	for _, account := range l.accounts {
		if account.Type == accountType {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (l *Ledger) UpdateAccountBalance(ctx context.Context, id string, expectedVersion int, balance decimal.Decimal) error {
	return l.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		return tx.UpdateAccountBalance(ctx, id, expectedVersion, balance)
	})
}

func (l *Ledger) CreateRequest(ctx context.Context, request domain.TransferRequest) (domain.TransferRequest, error) {
	var created domain.TransferRequest
	err := l.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		var err error
		created, err = tx.CreateRequest(ctx, request)
		return err
	})
	return created, err
}

func (l *Ledger) GetRequest(_ context.Context, id string) (domain.TransferRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	request, ok := l.requests[id]
	if !ok {
		return domain.TransferRequest{}, commons.ErrRecordNotFound
	}
	return request, nil
}

func (l *Ledger) FindRequestsInState(_ context.Context, state domain.TransferRequestState) ([]domain.TransferRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	requests := make([]domain.TransferRequest, 0)
	for _, request := range l.requests {
		if request.State == state {
			requests = append(requests, request)
		}
	}
	sortRequests(requests)
	return requests, nil
}

func (l *Ledger) FindRequestsForAccount(_ context.Context, accountID string) ([]domain.TransferRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	requests := make([]domain.TransferRequest, 0)
	for _, request := range l.requests {
		if request.FromAccountID == accountID || request.ToAccountID == accountID {
			requests = append(requests, request)
		}
	}
	sortRequests(requests)
	return requests, nil
}

func (l *Ledger) UpdateRequestState(ctx context.Context, id string, expectedVersion int, state domain.TransferRequestState) error {
	return l.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		return tx.UpdateRequestState(ctx, id, expectedVersion, state)
	})
}

func (l *Ledger) CreateEntry(ctx context.Context, entry domain.SettlementEntry) (domain.SettlementEntry, error) {
	var created domain.SettlementEntry
	err := l.Execute(ctx, func(ctx context.Context, tx repo_interfaces.Store) error {
		var err error
		created, err = tx.CreateEntry(ctx, entry)
		return err
	})
	return created, err
}

func (l *Ledger) FindEntriesForAccount(_ context.Context, accountID string) ([]domain.SettlementEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.SettlementEntry, 0)
	for _, entry := range l.entries {
		if entry.FromAccountID == accountID || entry.ToAccountID == accountID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func sortRequests(requests []domain.TransferRequest) {
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].DateCreated.Equal(requests[j].DateCreated) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].DateCreated.Before(requests[j].DateCreated)
	})
}

type opKind int

const (
	opCreateAccount opKind = iota
	opUpdateBalance
	opCreateRequest
	opUpdateState
	opCreateEntry
)

type stagedOp struct {
	kind            opKind
	account         domain.Account
	request         domain.TransferRequest
	entry           domain.SettlementEntry
	id              string
	expectedVersion int
	balance         decimal.Decimal
	state           domain.TransferRequestState
}

type memTx struct {
	ledger *Ledger
	ops    []stagedOp
}

func (t *memTx) CreateAccount(_ context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.DateOpened.IsZero() {
		account.DateOpened = time.Now().UTC()
	}
	account.Version = 0

	t.ops = append(t.ops, stagedOp{kind: opCreateAccount, account: account})
	return account, nil
}

func (t *memTx) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	account, err := t.ledger.GetAccount(ctx, id)
	found := err == nil

	for _, op := range t.ops {
		switch op.kind {
		case opCreateAccount:
			if op.account.ID == id {
				account = op.account
				found = true
			}
		case opUpdateBalance:
			if op.id == id && found {
				account.Balance = op.balance
				account.Version++
			}
		}
	}

	if !found {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return account, nil
}

func (t *memTx) FindAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	return t.ledger.FindAccountsByType(ctx, accountType)
}

func (t *memTx) UpdateAccountBalance(_ context.Context, id string, expectedVersion int, balance decimal.Decimal) error {
	t.ops = append(t.ops, stagedOp{kind: opUpdateBalance, id: id, expectedVersion: expectedVersion, balance: balance})
	return nil
}

func (t *memTx) CreateRequest(_ context.Context, request domain.TransferRequest) (domain.TransferRequest, error) {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.DateCreated.IsZero() {
		request.DateCreated = time.Now().UTC()
	}
	request.Version = 0

	t.ops = append(t.ops, stagedOp{kind: opCreateRequest, request: request})
	return request, nil
}

func (t *memTx) GetRequest(ctx context.Context, id string) (domain.TransferRequest, error) {
	request, err := t.ledger.GetRequest(ctx, id)
	found := err == nil

	for _, op := range t.ops {
		switch op.kind {
		case opCreateRequest:
			if op.request.ID == id {
				request = op.request
				found = true
			}
		case opUpdateState:
			if op.id == id && found {
				request.State = op.state
				request.Version++
			}
		}
	}

	if !found {
		return domain.TransferRequest{}, commons.ErrRecordNotFound
	}
	return request, nil
}

func (t *memTx) FindRequestsInState(ctx context.Context, state domain.TransferRequestState) ([]domain.TransferRequest, error) {
	return t.ledger.FindRequestsInState(ctx, state)
}

func (t *memTx) FindRequestsForAccount(ctx context.Context, accountID string) ([]domain.TransferRequest, error) {
	return t.ledger.FindRequestsForAccount(ctx, accountID)
}

func (t *memTx) UpdateRequestState(_ context.Context, id string, expectedVersion int, state domain.TransferRequestState) error {
	t.ops = append(t.ops, stagedOp{kind: opUpdateState, id: id, expectedVersion: expectedVersion, state: state})
	return nil
}

func (t *memTx) CreateEntry(_ context.Context, entry domain.SettlementEntry) (domain.SettlementEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.DateSettled.IsZero() {
		entry.DateSettled = time.Now().UTC()
	}

	t.ops = append(t.ops, stagedOp{kind: opCreateEntry, entry: entry})
	return entry, nil
}

func (t *memTx) FindEntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error) {
	return t.ledger.FindEntriesForAccount(ctx, accountID)
}

// commit validates every staged operation against committed state and
// applies them in order, or applies nothing.
func (t *memTx) commit() error {
	l := t.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := make(map[string]domain.Account)
	requests := make(map[string]domain.TransferRequest)
	entries := make([]domain.SettlementEntry, 0, 2)
	entryRequests := make(map[string]struct{})

	for _, op := range t.ops {
		switch op.kind {
		case opCreateAccount:
			if _, exists := l.accounts[op.account.ID]; exists {
				return fmt.Errorf("account %s already exists", op.account.ID)
			}
			accounts[op.account.ID] = op.account

		case opUpdateBalance:
			account, ok := accounts[op.id]
			if !ok {
				account, ok = l.accounts[op.id]
			}
			if !ok {
				return commons.ErrRecordNotFound
			}
			if account.Version != op.expectedVersion {
				return commons.ErrConflict
			}
			account.Balance = op.balance
			account.Version++
			accounts[op.id] = account

		case opCreateRequest:
			if _, exists := l.requests[op.request.ID]; exists {
				return fmt.Errorf("transfer request %s already exists", op.request.ID)
			}
			requests[op.request.ID] = op.request

		case opUpdateState:
			request, ok := requests[op.id]
			if !ok {
				request, ok = l.requests[op.id]
			}
			if !ok {
				return commons.ErrRecordNotFound
			}
			if request.Version != op.expectedVersion {
				return commons.ErrConflict
			}
			request.State = op.state
			request.Version++
			requests[op.id] = request

		case opCreateEntry:
			if _, exists := l.entryRequests[op.entry.RequestID]; exists {
				return commons.ErrDuplicateEntry
			}
			if _, staged := entryRequests[op.entry.RequestID]; staged {
				return commons.ErrDuplicateEntry
			}
			entries = append(entries, op.entry)
			entryRequests[op.entry.RequestID] = struct{}{}
		}
	}

	for id, account := range accounts {
		l.accounts[id] = account
	}
	for id, request := range requests {
		l.requests[id] = request
	}
	l.entries = append(l.entries, entries...)
	for id := range entryRequests {
		l.entryRequests[id] = struct{}{}
	}

	return nil
}
