// Package ledgerrepo applies balance mutations inside database transactions.
package ledgerrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	conn *sql.DB
}

// NewRepoPGS returns ledger RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{conn: db}
}

type txRepos struct {
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

// execTx runs fn within a single database transaction.
func (r *RepoPGS) execTx(ctx context.Context, fn func(txRepos) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.TranslateError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	repos := txRepos{
		accounts:     accountrepo.NewRepoPGS(tx),
		transactions: transactionrepo.NewRepoPGS(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return dbpkg.TranslateError(err)
	}

	return nil
}

// Deposit adds amount to the account balance and records the transaction.
func (r *RepoPGS) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error) {
	var result domain.Transaction

	err := r.execTx(ctx, func(repos txRepos) error {
		if _, err := repos.accounts.GetForUpdate(ctx, accountNumber); err != nil {
			return err
		}

		var err error
		result, err = apply(ctx, repos, domain.KindDeposit, accountNumber, amount, nil)

		return err
	})

	return result, err
}

// Withdraw subtracts amount from the account balance and records the transaction.
func (r *RepoPGS) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error) {
	var result domain.Transaction

	err := r.execTx(ctx, func(repos txRepos) error {
		account, err := repos.accounts.GetForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		if account.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		result, err = apply(ctx, repos, domain.KindWithdrawal, accountNumber, amount, nil)

		return err
	})

	return result, err
}

// Transfer performs a money transfer between two accounts.
//
// It locks both accounts, updates their balances and records a withdrawal
// and a deposit within a single database transaction.
func (r *RepoPGS) Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.TransferResult, error) {
	var result domain.TransferResult

	if from == to {
		return result, domain.ErrSameAccount
	}

	err := r.execTx(ctx, func(repos txRepos) error {
		// To avoid deadlocks lock rows in consistent account number order
		first, second := from, to
		if second < first {
			first, second = second, first
		}

		locked := make(map[int64]domain.Account, 2)

		for _, n := range []int64{first, second} {
			a, err := repos.accounts.GetForUpdate(ctx, n)
			if err != nil {
				return err
			}

			locked[n] = a
		}

		if locked[from].Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}

		var err error

		result.Withdrawal, err = apply(ctx, repos, domain.KindWithdrawal, from, amount, &to)
		if err != nil {
			return err
		}

		result.Deposit, err = apply(ctx, repos, domain.KindDeposit, to, amount, &from)

		return err
	})
	if err != nil {
		return domain.TransferResult{}, err
	}

	return result, nil
}

func apply(ctx context.Context, repos txRepos, kind domain.TransactionKind, accountNumber int64, amount decimal.Decimal, counterparty *int64) (domain.Transaction, error) {
	delta := amount
	if kind == domain.KindWithdrawal {
		delta = amount.Neg()
	}

	account, err := repos.accounts.AddBalance(ctx, delta, accountNumber)
	if err != nil {
		return domain.Transaction{}, err
	}

	return repos.transactions.Create(ctx, domain.CreateTransactionParams{
		Kind:                kind,
		AccountNumber:       accountNumber,
		Amount:              amount,
		ResultingBalance:    account.Balance,
		CounterpartyAccount: counterparty,
	})
}
