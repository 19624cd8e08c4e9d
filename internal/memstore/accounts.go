package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// AccountRepo implements the account repository on top of Store.
type AccountRepo struct {
	s *Store
}

// Create creates the account and then returns it.
func (r *AccountRepo) Create(ctx context.Context, username string, balance decimal.Decimal) (domain.Account, error) {
	if ctx.Err() != nil {
		return domain.Account{}, errorspkg.ErrUpstreamUnavailable
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastAccountNumber++

	a := &account{
		lock: make(accountLock, 1),
		data: domain.Account{
			AccountNumber:  r.s.lastAccountNumber,
			HolderUsername: username,
			Balance:        balance,
			CreatedAt:      time.Now().UTC(),
		},
	}
	r.s.accounts[a.data.AccountNumber] = a

	return a.data, nil
}

// Get returns the open account with the given number.
func (r *AccountRepo) Get(ctx context.Context, accountNumber int64) (domain.Account, error) {
	a, err := r.Find(ctx, accountNumber)
	if err != nil {
		return domain.Account{}, err
	}

	if a.Closed() {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// Find returns the account with the given number, closed or not.
func (r *AccountRepo) Find(ctx context.Context, accountNumber int64) (domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a.data, nil
}

// ListByUsername returns the open accounts of the given holder ordered by account number.
func (r *AccountRepo) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []domain.Account{}

	for _, a := range r.s.accounts {
		if a.data.HolderUsername == username && !a.data.Closed() {
			items = append(items, a.data)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].AccountNumber < items[j].AccountNumber
	})

	return items, nil
}

// Delete closes the account. Its transactions are kept.
func (r *AccountRepo) Delete(ctx context.Context, accountNumber int64) error {
	locked, unlock, err := r.s.lockAccounts(ctx, accountNumber)
	if err != nil {
		return err
	}
	defer unlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	closedAt := time.Now().UTC()
	locked[accountNumber].data.ClosedAt = &closedAt

	return nil
}
