package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/http/models"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
)

type AccountService interface {
	CreatePersonalAccount(ctx context.Context, name string) (domain.Account, error)
	FindAccount(ctx context.Context, id string) (domain.Account, error)
}

type LedgerService interface {
	EntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error)
	CalculatedBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type AccountController struct {
	accounts AccountService
	ledger   LedgerService
}

func NewAccountController(accounts AccountService, ledger LedgerService) *AccountController {
	return &AccountController{accounts: accounts, ledger: ledger}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /accounts", wrap(c.createAccount, authMiddleware))
	mux.Handle("GET /accounts/{id}", wrap(c.getAccount, authMiddleware))
	mux.Handle("GET /accounts/{id}/calculated-balance", wrap(c.calculatedBalance, authMiddleware))
	mux.Handle("GET /accounts/{id}/entries", wrap(c.listEntries, authMiddleware))
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()))
		return
	}

	account, err := c.accounts.CreatePersonalAccount(r.Context(), req.Name)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.AccountResponse]("create account failed", err.Error()))
		return
	}

	logResponse(r, http.StatusCreated, start)
	writeJSON(w, http.StatusCreated, commons.SuccessResponse("account created", models.NewAccountResponse(account)))
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	account, err := c.accounts.FindAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.AccountResponse]("get account failed", err.Error()))
		return
	}

	logResponse(r, http.StatusOK, start)
	writeJSON(w, http.StatusOK, commons.SuccessResponse("account fetched", models.NewAccountResponse(account)))
}

func (c *AccountController) calculatedBalance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accountID := r.PathValue("id")
	balance, err := c.ledger.CalculatedBalance(r.Context(), accountID)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.CalculatedBalanceResponse]("calculated balance failed", err.Error()))
		return
	}

	logResponse(r, http.StatusOK, start)
	writeJSON(w, http.StatusOK, commons.SuccessResponse("calculated balance fetched", models.CalculatedBalanceResponse{
		AccountID:         accountID,
		CalculatedBalance: balance.String(),
	}))
}

func (c *AccountController) listEntries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	accountID := r.PathValue("id")
	entries, err := c.ledger.EntriesForAccount(r.Context(), accountID)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[[]models.EntryResponse]("list entries failed", err.Error()))
		return
	}

	response := make([]models.EntryResponse, 0, len(entries))
	names := map[string]string{}
	for _, entry := range entries {
		counterpartyID := entry.FromAccountID
		if counterpartyID == accountID {
			counterpartyID = entry.ToAccountID
		}
		response = append(response, models.NewEntryResponse(entry, c.counterpartyName(r.Context(), counterpartyID, names)))
	}

	logResponse(r, http.StatusOK, start)
	writeJSON(w, http.StatusOK, commons.SuccessResponse("entries fetched", response))
}

// counterpartyName resolves the display name of the other side of an entry.
// Bank-owned funding accounts are masked so statements never leak internal
// account names.
func (c *AccountController) counterpartyName(ctx context.Context, accountID string, cache map[string]string) string {
	if name, ok := cache[accountID]; ok {
		return name
	}

	name := ""
	account, err := c.accounts.FindAccount(ctx, accountID)
	if err == nil && account.Type == domain.AccountTypePersonal {
		name = account.Name
	}
	cache[accountID] = name
	return name
}

func wrap(handler http.HandlerFunc, authMiddleware func(http.Handler) http.Handler) http.Handler {
	if authMiddleware != nil {
		return authMiddleware(handler)
	}
	return handler
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, commons.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, commons.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, commons.ErrNoFundingAccount):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
