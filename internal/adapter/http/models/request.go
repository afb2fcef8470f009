package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/domain"
)

type TransferPayload struct {
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        string `json:"amount"`
}

func (r TransferPayload) Validate() error {
	var errs []string

	if strings.TrimSpace(r.FromAccountID) == "" {
		errs = append(errs, "fromAccountId is required")
	}
	if strings.TrimSpace(r.ToAccountID) == "" {
		errs = append(errs, "toAccountId is required")
	}
	if strings.TrimSpace(r.FromAccountID) != "" &&
		strings.TrimSpace(r.FromAccountID) == strings.TrimSpace(r.ToAccountID) {
		errs = append(errs, "fromAccountId and toAccountId cannot be the same")
	}
	errs = appendAmountErrors(errs, r.Amount)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type FundingPayload struct {
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
}

func (r FundingPayload) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AccountID) == "" {
		errs = append(errs, "accountId is required")
	}
	errs = appendAmountErrors(errs, r.Amount)

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func appendAmountErrors(errs []string, amount string) []string {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return append(errs, "amount is required")
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return append(errs, "amount must be numeric")
	}
	if parsed.LessThanOrEqual(decimal.Zero) {
		return append(errs, "amount must be greater than zero")
	}
	return errs
}

type TransferRequestResponse struct {
	ID            string `json:"id"`
	FromAccountID string `json:"fromAccountId"`
	ToAccountID   string `json:"toAccountId"`
	Amount        string `json:"amount"`
	State         string `json:"state"`
	DateCreated   string `json:"dateCreated"`
}

func NewTransferRequestResponse(request domain.TransferRequest) TransferRequestResponse {
	return TransferRequestResponse{
		ID:            request.ID,
		FromAccountID: request.FromAccountID,
		ToAccountID:   request.ToAccountID,
		Amount:        request.Amount.String(),
		State:         string(request.State),
		DateCreated:   request.DateCreated.Format(time.RFC3339),
	}
}

type RequestStateResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}
