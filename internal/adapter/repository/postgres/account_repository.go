package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/api-sage/ledger-settlement/internal/commons"
	"github.com/api-sage/ledger-settlement/internal/domain"
	"github.com/api-sage/ledger-settlement/internal/logger"
)

func (s *store) CreateAccount(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	const query = `
INSERT INTO accounts (id, type, name, balance, version)
VALUES ($1, $2, $3, $4, 0)
RETURNING date_opened, version`

	if err := s.q.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.Type,
		account.Name,
		account.Balance,
	).Scan(&account.DateOpened, &account.Version); err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (s *store) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	const query = `
SELECT id, type, name, balance, date_opened, version
FROM accounts
WHERE id = $1`

	var account domain.Account
	if err := s.q.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Type,
		&account.Name,
		&account.Balance,
		&account.DateOpened,
		&account.Version,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (s *store) FindAccountsByType(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	const query = `
SELECT id, type, name, balance, date_opened, version
FROM accounts
WHERE type = $1
ORDER BY name`

	rows, err := s.q.QueryContext(ctx, query, accountType)
	if err != nil {
		return nil, fmt.Errorf("find accounts of type %s: %w", accountType, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Type,
			&account.Name,
			&account.Balance,
			&account.DateOpened,
			&account.Version,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func (s *store) UpdateAccountBalance(ctx context.Context, id string, expectedVersion int, balance decimal.Decimal) error {
	const query = `
UPDATE accounts
SET balance = $3,
    version = version + 1
WHERE id = $1
  AND version = $2`

	result, err := s.q.ExecContext(ctx, query, id, expectedVersion, balance)
	if err != nil {
		logger.Error("account repository update balance failed", err, logger.Fields{
			"accountId": id,
		})
		return fmt.Errorf("update account balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account balance rows affected: %w", err)
	}
	if rows == 0 {
		return s.accountWriteRejected(ctx, id, expectedVersion)
	}

	return nil
}

func (s *store) accountWriteRejected(ctx context.Context, id string, expectedVersion int) error {
	var exists bool
	if err := s.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check account existence: %w", err)
	}
	if !exists {
		return commons.ErrRecordNotFound
	}

	logger.Info("account repository balance write conflicted", logger.Fields{
		"accountId":       id,
		"expectedVersion": expectedVersion,
	})
	return commons.ErrConflict
}
