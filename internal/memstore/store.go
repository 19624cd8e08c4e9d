// Package memstore keeps accounts, transactions, audit entries and idempotency keys in memory.
//
// Every balance mutation holds the lock of each account it touches, acquired
// in ascending account number order, and publishes its effects under the
// store write lock, so readers never observe a half-applied transfer.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

type accountLock chan struct{}

func (l accountLock) lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return errorspkg.ErrUpstreamUnavailable
	}
}

func (l accountLock) unlock() {
	<-l
}

type account struct {
	lock accountLock
	data domain.Account
}

// Store is the shared in-memory state behind the repositories.
type Store struct {
	mu sync.RWMutex

	accounts          map[int64]*account
	lastAccountNumber int64

	transactions      map[int64][]domain.Transaction
	lastTransactionID int64

	audit       []domain.AuditEntry
	lastAuditID int64

	idempotency map[string]domain.IdempotencyRecord
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts:     make(map[int64]*account),
		transactions: make(map[int64][]domain.Transaction),
		idempotency:  make(map[string]domain.IdempotencyRecord),
	}
}

// Accounts returns the account repository.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// Ledger returns the ledger repository.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Transactions returns the transaction history repository.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Audit returns the audit entries repository.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Idempotency returns the idempotency keys repository.
func (s *Store) Idempotency() *IdempotencyRepo { return &IdempotencyRepo{s: s} }

// lockAccounts locks the given open accounts in ascending order and returns them by number.
// The returned func releases every acquired lock.
func (s *Store) lockAccounts(ctx context.Context, numbers ...int64) (map[int64]*account, func(), error) {
	ordered := append([]int64(nil), numbers...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	acquired := make([]*account, 0, len(ordered))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].lock.unlock()
		}
	}

	locked := make(map[int64]*account, len(ordered))

	for _, n := range ordered {
		s.mu.RLock()
		a, ok := s.accounts[n]
		s.mu.RUnlock()

		if !ok {
			release()
			return nil, nil, domain.ErrAccountNotFound
		}

		if err := a.lock.lock(ctx); err != nil {
			release()
			return nil, nil, err
		}

		acquired = append(acquired, a)

		if a.data.Closed() {
			release()
			return nil, nil, domain.ErrAccountNotFound
		}

		locked[n] = a
	}

	return locked, release, nil
}
