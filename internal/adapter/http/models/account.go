package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type CreateAccountRequest struct {
	Name string `json:"name"`
}

func (r CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type AccountResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Balance    string `json:"balance"`
	DateOpened string `json:"dateOpened"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID,
		Type:       string(account.Type),
		Name:       account.Name,
		Balance:    account.Balance.String(),
		DateOpened: account.DateOpened.Format(time.RFC3339),
	}
}

type CalculatedBalanceResponse struct {
	AccountID         string `json:"accountId"`
	CalculatedBalance string `json:"calculatedBalance"`
}

type EntryResponse struct {
	ID               string `json:"id"`
	RequestID        string `json:"requestId"`
	FromAccountID    string `json:"fromAccountId"`
	ToAccountID      string `json:"toAccountId"`
	CounterpartyName string `json:"counterpartyName,omitempty"`
	Amount           string `json:"amount"`
	DateSettled      string `json:"dateSettled"`
}

func NewEntryResponse(entry domain.SettlementEntry, counterpartyName string) EntryResponse {
	return EntryResponse{
		ID:               entry.ID,
		RequestID:        entry.RequestID,
		FromAccountID:    entry.FromAccountID,
		ToAccountID:      entry.ToAccountID,
		CounterpartyName: counterpartyName,
		Amount:           entry.Amount.String(),
		DateSettled:      entry.DateSettled.Format(time.RFC3339),
	}
}
