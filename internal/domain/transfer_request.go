package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferRequestState string

const (
	RequestStateReceived TransferRequestState = "RECEIVED"
	RequestStateOK       TransferRequestState = "OK"
	RequestStateNoFunds  TransferRequestState = "NO_FUNDS"
)

func (s TransferRequestState) Valid() bool {
	switch s {
	case RequestStateReceived, RequestStateOK, RequestStateNoFunds:
		return true
	}
	return false
}

// Terminal reports whether the state may never change again. RECEIVED is
// the only non-terminal state.
func (s TransferRequestState) Terminal() bool {
	switch s {
	case RequestStateOK, RequestStateNoFunds:
		return true
	case RequestStateReceived:
		return false
	}
	return false
}

type TransferRequest struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	State         TransferRequestState
	DateCreated   time.Time
	Version       int
}
