package test

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// RandomAccount returns random open account held by the given username.
func RandomAccount(username string) domain.Account {
	return domain.Account{
		AccountNumber:  randompkg.IntBetween(1, 100),
		HolderUsername: username,
		Balance:        randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}
