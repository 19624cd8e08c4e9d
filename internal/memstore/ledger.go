package memstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// LedgerRepo applies balance mutations on top of Store.
type LedgerRepo struct {
	s *Store
}

// Deposit adds amount to the account balance and records the transaction.
func (r *LedgerRepo) Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error) {
	locked, unlock, err := r.s.lockAccounts(ctx, accountNumber)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.apply(domain.KindDeposit, locked[accountNumber], amount, nil, time.Now().UTC()), nil
}

// Withdraw subtracts amount from the account balance and records the transaction.
func (r *LedgerRepo) Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error) {
	locked, unlock, err := r.s.lockAccounts(ctx, accountNumber)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer unlock()

	a := locked[accountNumber]
	if a.data.Balance.LessThan(amount) {
		return domain.Transaction{}, domain.ErrInsufficientFunds
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.apply(domain.KindWithdrawal, a, amount, nil, time.Now().UTC()), nil
}

// Transfer moves amount between two accounts as a single atomic unit.
func (r *LedgerRepo) Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.TransferResult, error) {
	var result domain.TransferResult

	if from == to {
		return result, domain.ErrSameAccount
	}

	locked, unlock, err := r.s.lockAccounts(ctx, from, to)
	if err != nil {
		return result, err
	}
	defer unlock()

	if locked[from].data.Balance.LessThan(amount) {
		return result, domain.ErrInsufficientFunds
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	result.Withdrawal = r.s.apply(domain.KindWithdrawal, locked[from], amount, &to, now)
	result.Deposit = r.s.apply(domain.KindDeposit, locked[to], amount, &from, now)

	return result, nil
}

// apply must be called with the account lock and the store write lock held.
func (s *Store) apply(kind domain.TransactionKind, a *account, amount decimal.Decimal, counterparty *int64, at time.Time) domain.Transaction {
	accountNumber := a.data.AccountNumber

	if kind == domain.KindWithdrawal {
		a.data.Balance = a.data.Balance.Sub(amount)
	} else {
		a.data.Balance = a.data.Balance.Add(amount)
	}

	s.lastTransactionID++

	t := domain.Transaction{
		ID:                  s.lastTransactionID,
		Kind:                kind,
		AccountNumber:       accountNumber,
		Amount:              amount,
		ResultingBalance:    a.data.Balance,
		CounterpartyAccount: counterparty,
		CreatedAt:           at,
	}
	s.transactions[accountNumber] = append(s.transactions[accountNumber], t)

	return t
}
