// Package ledgerservice manages business logic layer of balance mutations.
package ledgerservice

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/eventpub"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// Repo provides data access layer interface needed by ledger service layer.
//
// Every method is atomic: either the balance change and its transaction
// records are committed together or nothing is.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	Deposit(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error)
	Withdraw(ctx context.Context, accountNumber int64, amount decimal.Decimal) (domain.Transaction, error)
	Transfer(ctx context.Context, from, to int64, amount decimal.Decimal) (domain.TransferResult, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	repo      Repo
	publisher eventpub.Publisher
	timeout   time.Duration
}

// New returns ledger service struct to manage deposits, withdrawals and transfers.
func New(repo Repo, publisher eventpub.Publisher, timeout time.Duration) *Service {
	if publisher == nil {
		publisher = eventpub.NopPublisher{}
	}

	return &Service{repo: repo, publisher: publisher, timeout: timeout}
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	if !d.IsPositive() {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	return d, nil
}

// Deposit adds amount to the account balance.
func (s *Service) Deposit(ctx context.Context, accountNumber int64, amount string) (domain.Transaction, error) {
	if accountNumber <= 0 {
		return domain.Transaction{}, domain.ErrInvalidAccountNumber
	}

	d, err := parseAmount(amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	storeCtx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.repo.Deposit(storeCtx, accountNumber, d)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.publish(ctx, t)

	return t, nil
}

// Withdraw subtracts amount from the account balance.
// It fails with domain.ErrInsufficientFunds if the balance would become negative.
func (s *Service) Withdraw(ctx context.Context, accountNumber int64, amount string) (domain.Transaction, error) {
	if accountNumber <= 0 {
		return domain.Transaction{}, domain.ErrInvalidAccountNumber
	}

	d, err := parseAmount(amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	storeCtx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.repo.Withdraw(storeCtx, accountNumber, d)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.publish(ctx, t)

	return t, nil
}

// Transfer moves amount between two distinct accounts atomically.
func (s *Service) Transfer(ctx context.Context, from, to int64, amount string) (domain.TransferResult, error) {
	if from <= 0 || to <= 0 {
		return domain.TransferResult{}, domain.ErrInvalidAccountNumber
	}

	if from == to {
		return domain.TransferResult{}, domain.ErrSameAccount
	}

	d, err := parseAmount(amount)
	if err != nil {
		return domain.TransferResult{}, err
	}

	storeCtx, cancel := dbpkg.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.repo.Transfer(storeCtx, from, to, d)
	if err != nil {
		return domain.TransferResult{}, err
	}

	s.publish(ctx, res.Withdrawal)
	s.publish(ctx, res.Deposit)

	return res, nil
}

// publish is best effort: the mutation is already committed.
func (s *Service) publish(ctx context.Context, t domain.Transaction) {
	key := strconv.FormatInt(t.AccountNumber, 10)

	if err := s.publisher.Publish(ctx, key, t.Completed()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("transaction_id", t.ID).Msg("cannot publish transaction event")
	}
}
