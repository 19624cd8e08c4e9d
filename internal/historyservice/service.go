// Package historyservice serves the transaction history of accounts.
package historyservice

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// AccountRepo finds accounts regardless of whether they are closed.
//
//go:generate mockgen -source service.go -destination service_mock.go -package historyservice
type AccountRepo interface {
	Find(ctx context.Context, accountNumber int64) (domain.Account, error)
}

// Repo lists the transactions recorded for an account.
type Repo interface {
	List(ctx context.Context, accountNumber int64) ([]domain.Transaction, error)
}

// Service facilitates history service layer logic.
type Service struct {
	accounts AccountRepo
	repo     Repo
	timeout  time.Duration
}

// New returns history service.
func New(accounts AccountRepo, repo Repo, timeout time.Duration) *Service {
	return &Service{accounts: accounts, repo: repo, timeout: timeout}
}

// History returns the transactions of the account, newest first.
// Closed accounts keep their history.
func (s *Service) History(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	if accountNumber <= 0 {
		return nil, domain.ErrInvalidAccountNumber
	}

	ctx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.accounts.Find(ctx, accountNumber); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []domain.Transaction{}
	}

	return items, nil
}
