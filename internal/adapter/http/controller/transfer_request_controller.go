package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/adapter/http/models"
	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
)

type RequestService interface {
	ReceiveTransferRequest(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	TopUpRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	WithdrawalRequest(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error)
	RequestState(ctx context.Context, id string) (domain.TransferRequestState, error)
}

type TransferRequestController struct {
	requests RequestService
}

func NewTransferRequestController(requests RequestService) *TransferRequestController {
	return &TransferRequestController{requests: requests}
}

func (c *TransferRequestController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /transfer-requests/transfer", wrap(c.transfer, authMiddleware))
	mux.Handle("POST /transfer-requests/top-up", wrap(c.topUp, authMiddleware))
	mux.Handle("POST /transfer-requests/withdrawal", wrap(c.withdrawal, authMiddleware))
	mux.Handle("GET /transfer-requests/{id}/state", wrap(c.requestState, authMiddleware))
}

func (c *TransferRequestController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.TransferPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferRequestResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferRequestResponse]("validation failed", err.Error()))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	created, err := c.requests.ReceiveTransferRequest(r.Context(), req.FromAccountID, req.ToAccountID, amount)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.TransferRequestResponse]("transfer request failed", err.Error()))
		return
	}

	logResponse(r, http.StatusAccepted, start)
	writeJSON(w, http.StatusAccepted, commons.SuccessResponse("transfer request received", models.NewTransferRequestResponse(created)))
}

func (c *TransferRequestController) topUp(w http.ResponseWriter, r *http.Request) {
	c.funding(w, r, "top-up request received", "top-up request failed", c.requests.TopUpRequest)
}

func (c *TransferRequestController) withdrawal(w http.ResponseWriter, r *http.Request) {
	c.funding(w, r, "withdrawal request received", "withdrawal request failed", c.requests.WithdrawalRequest)
}

func (c *TransferRequestController) funding(
	w http.ResponseWriter,
	r *http.Request,
	okMessage, failMessage string,
	receive func(ctx context.Context, accountID string, amount decimal.Decimal) (domain.TransferRequest, error),
) {
	start := time.Now()

	var req models.FundingPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferRequestResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransferRequestResponse]("validation failed", err.Error()))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	created, err := receive(r.Context(), req.AccountID, amount)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.TransferRequestResponse](failMessage, err.Error()))
		return
	}

	logResponse(r, http.StatusAccepted, start)
	writeJSON(w, http.StatusAccepted, commons.SuccessResponse(okMessage, models.NewTransferRequestResponse(created)))
}

func (c *TransferRequestController) requestState(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id := r.PathValue("id")
	state, err := c.requests.RequestState(r.Context(), id)
	if err != nil {
		status := errorStatus(err)
		logError(r, err, nil)
		writeJSON(w, status, commons.ErrorResponse[models.RequestStateResponse]("get request state failed", err.Error()))
		return
	}

	logResponse(r, http.StatusOK, start)
	writeJSON(w, http.StatusOK, commons.SuccessResponse("request state fetched", models.RequestStateResponse{
		ID:    id,
		State: string(state),
	}))
}
