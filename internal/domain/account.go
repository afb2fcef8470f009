package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypePersonal   AccountType = "PERSONAL"
	AccountTypeTopUp      AccountType = "TOP_UP"
	AccountTypeWithdrawal AccountType = "WITHDRAWAL"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypePersonal, AccountTypeTopUp, AccountTypeWithdrawal:
		return true
	}
	return false
}

// FundsChecked reports whether outgoing transfers from an account of this
// type must keep the balance non-negative. Bank-owned funding and draining
// accounts are exempt.
func (t AccountType) FundsChecked() bool {
	switch t {
	case AccountTypePersonal:
		return true
	case AccountTypeTopUp, AccountTypeWithdrawal:
		return false
	}
	return false
}

type Account struct {
	ID         string
	Type       AccountType
	Name       string
	Balance    decimal.Decimal
	DateOpened time.Time
	Version    int
}
