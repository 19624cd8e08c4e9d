// Package idempotencyrepo manages repository layer of idempotency keys.
package idempotencyrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates idempotency repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns idempotency RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const reserveQuery = `
INSERT INTO
    idempotency_keys (key, method, path)
VALUES
    ($1, $2, $3)
ON CONFLICT (key) DO NOTHING
`

const getQuery = `
SELECT key, method, path, status_code, body, created_at, completed_at
FROM idempotency_keys
WHERE key = $1
`

// Reserve stores a pending record for the key unless one exists.
// It returns the stored record and whether this call created it.
func (r *RepoPGS) Reserve(ctx context.Context, key, method, path string) (domain.IdempotencyRecord, bool, error) {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, reserveQuery, key, method, path)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.IdempotencyRecord{}, false, dbpkg.TranslateError(err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return domain.IdempotencyRecord{}, false, errorspkg.ErrInternal
	}

	var (
		rec         domain.IdempotencyRecord
		statusCode  sql.NullInt32
		completedAt sql.NullTime
	)

	err = r.db.QueryRowContext(ctx, getQuery, key).Scan(
		&rec.Key,
		&rec.Method,
		&rec.Path,
		&statusCode,
		&rec.Body,
		&rec.CreatedAt,
		&completedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			// Released by a concurrent request between the two statements.
			return domain.IdempotencyRecord{}, false, errorspkg.ErrUpstreamUnavailable
		}

		return domain.IdempotencyRecord{}, false, dbpkg.TranslateError(err)
	}

	rec.StatusCode = int(statusCode.Int32)
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}

	return rec, inserted == 1, nil
}

const completeQuery = `
UPDATE idempotency_keys
SET status_code = $2, body = $3, completed_at = now()
WHERE key = $1
`

// Complete stores the response of the request made with the key.
func (r *RepoPGS) Complete(ctx context.Context, key string, statusCode int, body []byte) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, completeQuery, key, statusCode, body)
	if err != nil {
		l.Error().Err(err).Send()
		return dbpkg.TranslateError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrIdempotencyKeyNotFound
	}

	return nil
}

const releaseQuery = `
DELETE FROM idempotency_keys
WHERE key = $1 AND status_code IS NULL
`

// Release removes a pending reservation so the request can be retried.
func (r *RepoPGS) Release(ctx context.Context, key string) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, releaseQuery, key); err != nil {
		l.Error().Err(err).Send()
		return dbpkg.TranslateError(err)
	}

	return nil
}
