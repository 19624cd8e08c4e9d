// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `account_number, holder_username, balance, created_at, closed_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var (
		a        domain.Account
		closedAt sql.NullTime
	)

	err := row.Scan(
		&a.AccountNumber,
		&a.HolderUsername,
		&a.Balance,
		&a.CreatedAt,
		&closedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	if closedAt.Valid {
		a.ClosedAt = &closedAt.Time
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE account_number = $2 AND closed_at IS NULL
RETURNING ` + accountColumns

// AddBalance changes the account's balance and returns the changed account.
//
// Callers must hold the row lock taken by GetForUpdate in the same transaction.
func (r *RepoPGS) AddBalance(ctx context.Context, amount decimal.Decimal, accountNumber int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		if dbpkg.Constraint(err) == "accounts_balance_check" {
			return a, domain.ErrInsufficientFunds
		}

		return a, dbpkg.TranslateError(err)
	}

	return a, nil
}

const createQuery = `
INSERT INTO 
    accounts (holder_username, balance)
VALUES
    ($1, $2)
RETURNING ` + accountColumns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, username string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, createQuery, username, balance))
	if err != nil {
		l.Error().Err(err).Send()

		if dbpkg.Constraint(err) == "accounts_balance_check" {
			return a, domain.ErrInvalidBalance
		}

		return a, dbpkg.TranslateError(err)
	}

	return a, nil
}

const deleteQuery = `
UPDATE accounts
SET closed_at = now()
WHERE account_number = $1 AND closed_at IS NULL
`

// Delete closes the account with the given number. Its transactions are kept.
func (r *RepoPGS) Delete(ctx context.Context, accountNumber int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, accountNumber)
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.TranslateError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1 AND closed_at IS NULL
`

// Get returns the open account with the given number.
func (r *RepoPGS) Get(ctx context.Context, accountNumber int64) (domain.Account, error) {
	return r.get(ctx, getQuery, accountNumber)
}

const findQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1
`

// Find returns the account with the given number, closed or not.
func (r *RepoPGS) Find(ctx context.Context, accountNumber int64) (domain.Account, error) {
	return r.get(ctx, findQuery, accountNumber)
}

const getForUpdateQuery = getQuery + `FOR UPDATE`

// GetForUpdate returns the open account and locks its row until the transaction ends.
func (r *RepoPGS) GetForUpdate(ctx context.Context, accountNumber int64) (domain.Account, error) {
	return r.get(ctx, getForUpdateQuery, accountNumber)
}

func (r *RepoPGS) get(ctx context.Context, query string, accountNumber int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, dbpkg.TranslateError(err)
	}

	return a, nil
}

const listByUsernameQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE holder_username = $1 AND closed_at IS NULL
ORDER BY account_number
`

// ListByUsername returns the open accounts of the given holder.
func (r *RepoPGS) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByUsernameQuery, username)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, dbpkg.TranslateError(err)
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}

	return items, nil
}
