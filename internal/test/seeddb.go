// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedAccount creates an Account with the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, username string, balance decimal.Decimal) domain.Account {
	t.Helper()

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), username, balance)
	if err != nil {
		t.Fatalf(`accountRepo.Create(context.Background(), %v, %v) returned error: %v`, username, balance, err)
	}

	return account
}

// SeedAccountWith1000Balance creates Account with 1000 on balance held by a random username.
func SeedAccountWith1000Balance(t *testing.T, db dbpkg.SQLInterface) domain.Account {
	t.Helper()

	return SeedAccount(t, db, randompkg.Username(), decimal.NewFromInt(1000))
}

// SeedTransaction records a transaction row without touching the account balance.
func SeedTransaction(t *testing.T, db dbpkg.SQLInterface, arg domain.CreateTransactionParams) domain.Transaction {
	t.Helper()

	transaction, err := transactionrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf(`transactionRepo.Create(context.Background(), %+v) returned error: %v`, arg, err)
	}

	return transaction
}
