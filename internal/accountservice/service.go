// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, username string, balance decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, accountNumber int64) (domain.Account, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Account, error)
	Delete(ctx context.Context, accountNumber int64) error
}

// Service facilitates account service layer logic.
type Service struct {
	repo    Repo
	timeout time.Duration
}

// New returns account service struct to manage account bussines logic.
//
// Every repository call is bounded by timeout.
func New(ar Repo, timeout time.Duration) *Service {
	return &Service{repo: ar, timeout: timeout}
}

// Create creates and returns account for the given holder and initial balance.
func (s *Service) Create(ctx context.Context, username, balance string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Account{}, domain.ErrInvalidUsername
	}

	initial, err := decimal.NewFromString(balance)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.ErrInvalidBalance
	}

	if initial.IsNegative() {
		return domain.Account{}, domain.ErrInvalidBalance
	}

	ctx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.Create(ctx, username, initial)
	if err != nil {
		return account, err
	}

	l.Info().Int64("account_number", account.AccountNumber).Msg("account created")

	return account, nil
}

// Get returns the open account with the given number.
func (s *Service) Get(ctx context.Context, accountNumber int64) (domain.Account, error) {
	if accountNumber <= 0 {
		return domain.Account{}, domain.ErrInvalidAccountNumber
	}

	ctx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.Get(ctx, accountNumber)
}

// ListByUsername returns the open accounts held by the given user.
func (s *Service) ListByUsername(ctx context.Context, username string) ([]domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidUsername
	}

	ctx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repo.ListByUsername(ctx, username)
}

// Delete closes the account with the given number.
func (s *Service) Delete(ctx context.Context, accountNumber int64) error {
	if accountNumber <= 0 {
		return domain.ErrInvalidAccountNumber
	}

	ctx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Delete(ctx, accountNumber); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("account_number", accountNumber).Msg("account closed")

	return nil
}
