package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
)

func (s *store) CreateEntry(ctx context.Context, entry domain.SettlementEntry) (domain.SettlementEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
INSERT INTO settlement_entries (id, request_id, from_account_id, to_account_id, amount, date_settled)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING date_settled`

	if err := s.q.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.RequestID,
		entry.FromAccountID,
		entry.ToAccountID,
		entry.Amount,
		entry.DateSettled,
	).Scan(&entry.DateSettled); err != nil {
		if isUniqueViolation(err) {
			logger.Info("entry repository duplicate settlement entry rejected", logger.Fields{
				"requestId": entry.RequestID,
			})
			return domain.SettlementEntry{}, commons.ErrDuplicateEntry
		}
		logger.Error("entry repository create failed", err, logger.Fields{
			"requestId": entry.RequestID,
		})
		return domain.SettlementEntry{}, fmt.Errorf("create settlement entry: %w", err)
	}

	return entry, nil
}

func (s *store) FindEntriesForAccount(ctx context.Context, accountID string) ([]domain.SettlementEntry, error) {
	const query = `
SELECT id, request_id, from_account_id, to_account_id, amount, date_settled
FROM settlement_entries
WHERE from_account_id = $1
   OR to_account_id = $1
ORDER BY date_settled`

	rows, err := s.q.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("find settlement entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.SettlementEntry, 0)
	for rows.Next() {
		var entry domain.SettlementEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.FromAccountID,
			&entry.ToAccountID,
			&entry.Amount,
			&entry.DateSettled,
		); err != nil {
			return nil, fmt.Errorf("scan settlement entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlement entries: %w", err)
	}

	return entries, nil
}
