// Package auditrepo manages repository layer of audit entries.
package auditrepo

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// RepoPGS facilitates audit repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns audit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const appendQuery = `
INSERT INTO
    audit_entries (actor, action, details, created_at)
VALUES
    ($1, $2, $3, COALESCE($4, now()))
RETURNING id, actor, action, details, created_at
`

// Append records the entry and returns it with its id set.
// A zero CreatedAt is replaced by the insertion time.
func (r *RepoPGS) Append(ctx context.Context, e domain.AuditEntry) (domain.AuditEntry, error) {
	l := zerolog.Ctx(ctx)

	var createdAt sql.NullTime
	if !e.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: e.CreatedAt, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, appendQuery, e.Actor, e.Action, e.Details, createdAt)

	var got domain.AuditEntry

	err := row.Scan(
		&got.ID,
		&got.Actor,
		&got.Action,
		&got.Details,
		&got.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.AuditEntry{}, dbpkg.TranslateError(err)
	}

	return got, nil
}

const listQuery = `
SELECT id, actor, action, details, created_at
FROM audit_entries
ORDER BY id
LIMIT $1 OFFSET $2
`

// List returns audit entries in the order they were appended.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.AuditEntry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}
	defer rows.Close()

	items := []domain.AuditEntry{}

	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, dbpkg.TranslateError(err)
		}

		items = append(items, e)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, dbpkg.TranslateError(err)
	}

	return items, nil
}
