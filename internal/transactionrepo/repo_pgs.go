// Package transactionrepo manages repository layer of ledger transactions.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const transactionColumns = `id, kind, account_number, amount, resulting_balance, counterparty_account, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t            domain.Transaction
		counterparty sql.NullInt64
	)

	err := row.Scan(
		&t.ID,
		&t.Kind,
		&t.AccountNumber,
		&t.Amount,
		&t.ResultingBalance,
		&counterparty,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}

	if counterparty.Valid {
		t.CounterpartyAccount = &counterparty.Int64
	}

	return t, nil
}

const createQuery = `
INSERT INTO
    transactions (kind, account_number, amount, resulting_balance, counterparty_account)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + transactionColumns

// Create records the transaction and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var counterparty sql.NullInt64
	if arg.CounterpartyAccount != nil {
		counterparty = sql.NullInt64{Int64: *arg.CounterpartyAccount, Valid: true}
	}

	t, err := scanTransaction(r.db.QueryRowContext(ctx, createQuery,
		arg.Kind,
		arg.AccountNumber,
		arg.Amount,
		arg.ResultingBalance,
		counterparty,
	))
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		switch dbpkg.Constraint(err) {
		case "transactions_account_number_fkey", "transactions_counterparty_account_fkey":
			return t, domain.ErrAccountNotFound
		case "transactions_amount_check":
			return t, domain.ErrInvalidAmount
		case "transactions_resulting_balance_check":
			return t, domain.ErrInsufficientFunds
		}

		return t, dbpkg.TranslateError(err)
	}

	return t, nil
}

const listQuery = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE account_number = $1
ORDER BY id DESC
`

// List returns the transactions of the account, newest first.
func (r *RepoPGS) List(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, accountNumber)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, dbpkg.TranslateError(err)
		}

		items = append(items, t)
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
