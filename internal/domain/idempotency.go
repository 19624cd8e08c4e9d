package domain

import (
	"time"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

var (
	// ErrRequestInProgress indicates that a request with the same idempotency key is still running.
	ErrRequestInProgress = errorspkg.New(errorspkg.KindDuplicate, "request with this idempotency key is in progress")
	// ErrIdempotencyKeyReused indicates that the idempotency key was used for another route.
	ErrIdempotencyKeyReused = errorspkg.New(errorspkg.KindInvalidInput, "idempotency key reused for another request")
)

// IdempotencyRecord holds the outcome of a request sent with an idempotency key.
//
// StatusCode is zero while the first request is still being processed.
type IdempotencyRecord struct {
	Key         string
	Method      string
	Path        string
	StatusCode  int
	Body        []byte
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Completed reports whether the response has been stored.
func (r IdempotencyRecord) Completed() bool {
	return r.StatusCode != 0
}

// ErrIdempotencyKeyNotFound indicates that no reservation exists for the key.
var ErrIdempotencyKeyNotFound = errorspkg.New(errorspkg.KindNotFound, "idempotency key not found")
