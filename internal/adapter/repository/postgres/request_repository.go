package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
)

func (s *store) CreateRequest(ctx context.Context, request domain.TransferRequest) (domain.TransferRequest, error) {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}

	logger.Info("request repository create", logger.Fields{
		"requestId":     request.ID,
		"fromAccountId": request.FromAccountID,
		"toAccountId":   request.ToAccountID,
		"state":         request.State,
	})

	const query = `
INSERT INTO transfer_requests (id, from_account_id, to_account_id, amount, state, version)
VALUES ($1, $2, $3, $4, $5, 0)
RETURNING date_created, version`

	if err := s.q.QueryRowContext(
		ctx,
		query,
		request.ID,
		request.FromAccountID,
		request.ToAccountID,
		request.Amount,
		request.State,
	).Scan(&request.DateCreated, &request.Version); err != nil {
		logger.Error("request repository create failed", err, logger.Fields{
			"requestId": request.ID,
		})
		return domain.TransferRequest{}, fmt.Errorf("create transfer request: %w", err)
	}

	return request, nil
}

func (s *store) GetRequest(ctx context.Context, id string) (domain.TransferRequest, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, state, date_created, version
FROM transfer_requests
WHERE id = $1`

	var request domain.TransferRequest
	if err := s.q.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.FromAccountID,
		&request.ToAccountID,
		&request.Amount,
		&request.State,
		&request.DateCreated,
		&request.Version,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.TransferRequest{}, commons.ErrRecordNotFound
		}
		return domain.TransferRequest{}, fmt.Errorf("get transfer request: %w", err)
	}

	return request, nil
}

func (s *store) FindRequestsInState(ctx context.Context, state domain.TransferRequestState) ([]domain.TransferRequest, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, state, date_created, version
FROM transfer_requests
WHERE state = $1
ORDER BY date_created`

	return s.queryRequests(ctx, query, state)
}

func (s *store) FindRequestsForAccount(ctx context.Context, accountID string) ([]domain.TransferRequest, error) {
	const query = `
SELECT id, from_account_id, to_account_id, amount, state, date_created, version
FROM transfer_requests
WHERE from_account_id = $1
   OR to_account_id = $1
ORDER BY date_created`

	return s.queryRequests(ctx, query, accountID)
}

func (s *store) queryRequests(ctx context.Context, query string, args ...any) ([]domain.TransferRequest, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transfer requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.TransferRequest, 0)
	for rows.Next() {
		var request domain.TransferRequest
		if err := rows.Scan(
			&request.ID,
			&request.FromAccountID,
			&request.ToAccountID,
			&request.Amount,
			&request.State,
			&request.DateCreated,
			&request.Version,
		); err != nil {
			return nil, fmt.Errorf("scan transfer request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer requests: %w", err)
	}

	return requests, nil
}

func (s *store) UpdateRequestState(ctx context.Context, id string, expectedVersion int, state domain.TransferRequestState) error {
	logger.Info("request repository update state", logger.Fields{
		"requestId":       id,
		"state":           state,
		"expectedVersion": expectedVersion,
	})

	const query = `
UPDATE transfer_requests
SET state = $3,
    version = version + 1
WHERE id = $1
  AND version = $2`

	result, err := s.q.ExecContext(ctx, query, id, expectedVersion, state)
	if err != nil {
		logger.Error("request repository update state failed", err, logger.Fields{
			"requestId": id,
		})
		return fmt.Errorf("update transfer request state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transfer request state rows affected: %w", err)
	}
	if rows == 0 {
		return s.requestWriteRejected(ctx, id, expectedVersion)
	}

	return nil
}

func (s *store) requestWriteRejected(ctx context.Context, id string, expectedVersion int) error {
	var exists bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM transfer_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check transfer request existence: %w", err)
	}
	if !exists {
		return commons.ErrRecordNotFound
	}

	logger.Info("request repository state write conflicted", logger.Fields{
		"requestId":       id,
		"expectedVersion": expectedVersion,
	})
	return commons.ErrConflict
}
