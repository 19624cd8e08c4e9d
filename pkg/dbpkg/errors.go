package dbpkg

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"

	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Postgres error codes that mean the statement may succeed when retried.
var retryableCodes = map[pq.ErrorCode]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57014": true, // query_canceled
	"08000": true, // connection_exception
	"08003": true, // connection_does_not_exist
	"08006": true, // connection_failure
}

// TranslateError converts a driver error that no repository recognized
// into an application error.
func TranslateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return errorspkg.ErrUpstreamUnavailable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && retryableCodes[pqErr.Code] {
		return errorspkg.ErrUpstreamUnavailable
	}

	return errorspkg.ErrInternal
}

// Constraint returns the name of the violated constraint or an empty string.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}
