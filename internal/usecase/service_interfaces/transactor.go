package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type ResultState string

const (
	ResultMoneySent    ResultState = "MONEY_SENT"
	ResultNoFunds      ResultState = "NO_FUNDS"
	ResultInvalidState ResultState = "INVALID_STATE"
	ResultStopped      ResultState = "STOPPED"
)

type Transactor interface {
	// Process settles one transfer request as a single atomic store unit.
	// A version conflict aborts the whole unit and surfaces as an error;
	// the request then stays RECEIVED and a later poll cycle retries it.
	Process(ctx context.Context, request domain.TransferRequest) (ResultState, error)
	Start()
	Stop()
}

type Coordinator interface {
	Start()
	Stop()
}

type BankInitializer interface {
	Init(ctx context.Context) error
}
