// Package domain provides defenitions of all entities.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

var (
	// ErrAccountNotFound indicates that the account is not found or closed.
	ErrAccountNotFound = errorspkg.New(errorspkg.KindNotFound, "account not found")
	// ErrInvalidBalance indicates that the initial balance is malformed or negative.
	ErrInvalidBalance = errorspkg.New(errorspkg.KindInvalidInput, "invalid balance")
	// ErrInvalidUsername indicates that the holder username is empty.
	ErrInvalidUsername = errorspkg.New(errorspkg.KindInvalidInput, "invalid holder username")
	// ErrInvalidAccountNumber indicates that the account number is not positive.
	ErrInvalidAccountNumber = errorspkg.New(errorspkg.KindInvalidInput, "invalid account number")
)

// Account holds the balance of a single holder's account.
type Account struct {
	AccountNumber  int64           `json:"account_number"`
	HolderUsername string          `json:"holder_username"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// Closed reports whether the account was deleted.
func (a Account) Closed() bool {
	return a.ClosedAt != nil
}
