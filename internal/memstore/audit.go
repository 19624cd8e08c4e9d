package memstore

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// AuditRepo stores audit entries in Store.
type AuditRepo struct {
	s *Store
}

// Append records the entry and returns it with its id set.
// A zero CreatedAt is replaced by the insertion time.
func (r *AuditRepo) Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error) {
	if ctx.Err() != nil {
		return domain.AuditEntry{}, errorspkg.ErrUpstreamUnavailable
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastAuditID++
	e.ID = r.s.lastAuditID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	r.s.audit = append(r.s.audit, e)

	return e, nil
}

// List returns audit entries in the order they were appended.
func (r *AuditRepo) List(ctx context.Context, limit, offset int32) ([]domain.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []domain.AuditEntry{}

	if int(offset) >= len(r.s.audit) {
		return items, nil
	}

	end := len(r.s.audit)
	if limit > 0 && int(offset+limit) < end {
		end = int(offset + limit)
	}

	return append(items, r.s.audit[offset:end]...), nil
}
