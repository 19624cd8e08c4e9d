package memstore

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// IdempotencyRepo stores idempotency keys in Store.
type IdempotencyRepo struct {
	s *Store
}

// Reserve stores a pending record for the key unless one exists.
// It returns the stored record and whether this call created it.
func (r *IdempotencyRepo) Reserve(ctx context.Context, key, method, path string) (domain.IdempotencyRecord, bool, error) {
	if ctx.Err() != nil {
		return domain.IdempotencyRecord{}, false, errorspkg.ErrUpstreamUnavailable
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec, ok := r.s.idempotency[key]; ok {
		return rec, false, nil
	}

	rec := domain.IdempotencyRecord{
		Key:       key,
		Method:    method,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}
	r.s.idempotency[key] = rec

	return rec, true, nil
}

// Complete stores the response of the request made with the key.
func (r *IdempotencyRepo) Complete(ctx context.Context, key string, statusCode int, body []byte) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.idempotency[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}

	completedAt := time.Now().UTC()
	rec.StatusCode = statusCode
	rec.Body = append([]byte(nil), body...)
	rec.CompletedAt = &completedAt
	r.s.idempotency[key] = rec

	return nil
}

// Release removes a pending reservation so the request can be retried.
func (r *IdempotencyRepo) Release(ctx context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec, ok := r.s.idempotency[key]; ok && !rec.Completed() {
		delete(r.s.idempotency, key)
	}

	return nil
}
