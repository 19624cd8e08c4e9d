package memstore

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// TransactionRepo reads recorded transactions from Store.
type TransactionRepo struct {
	s *Store
}

// List returns the transactions of the account, newest first.
func (r *TransactionRepo) List(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recorded := r.s.transactions[accountNumber]
	items := make([]domain.Transaction, 0, len(recorded))

	for i := len(recorded) - 1; i >= 0; i-- {
		items = append(items, recorded[i])
	}

	return items, nil
}
