package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

var (
	// ErrInvalidAmount indicates a malformed or non-positive amount.
	ErrInvalidAmount = errorspkg.New(errorspkg.KindInvalidInput, "invalid amount")
	// ErrInsufficientFunds indicates that the account balance is lower than the withdrawn amount.
	ErrInsufficientFunds = errorspkg.New(errorspkg.KindInsufficientFunds, "insufficient funds")
	// ErrSameAccount indicates a transfer from an account to itself.
	ErrSameAccount = errorspkg.New(errorspkg.KindInvalidInput, "transfer accounts must differ")
)

// TransactionKind is the direction of a balance change.
type TransactionKind string

// Transaction kinds.
const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Transaction is an immutable record of a single balance change.
type Transaction struct {
	ID                  int64           `json:"id"`
	Kind                TransactionKind `json:"kind"`
	AccountNumber       int64           `json:"account_number"`
	Amount              decimal.Decimal `json:"amount"` // always positive
	ResultingBalance    decimal.Decimal `json:"resulting_balance"`
	CounterpartyAccount *int64          `json:"counterparty_account,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Signed returns the amount with the sign of its effect on the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindWithdrawal {
		return t.Amount.Neg()
	}

	return t.Amount
}

// CreateTransactionParams is the input data to record a transaction.
type CreateTransactionParams struct {
	Kind                TransactionKind
	AccountNumber       int64
	Amount              decimal.Decimal
	ResultingBalance    decimal.Decimal
	CounterpartyAccount *int64
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	Withdrawal Transaction `json:"withdrawal"`
	Deposit    Transaction `json:"deposit"`
}

// TransactionCompleted is published after a ledger mutation commits.
type TransactionCompleted struct {
	TransactionID       int64           `json:"transaction_id"`
	Kind                TransactionKind `json:"kind"`
	AccountNumber       int64           `json:"account_number"`
	Amount              decimal.Decimal `json:"amount"`
	ResultingBalance    decimal.Decimal `json:"resulting_balance"`
	CounterpartyAccount *int64          `json:"counterparty_account,omitempty"`
	OccurredAt          time.Time       `json:"occurred_at"`
}

// Completed returns the event describing t.
func (t Transaction) Completed() TransactionCompleted {
	return TransactionCompleted{
		TransactionID:       t.ID,
		Kind:                t.Kind,
		AccountNumber:       t.AccountNumber,
		Amount:              t.Amount,
		ResultingBalance:    t.ResultingBalance,
		CounterpartyAccount: t.CounterpartyAccount,
		OccurredAt:          t.CreatedAt,
	}
}
