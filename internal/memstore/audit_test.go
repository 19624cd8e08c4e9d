package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
)

func TestAuditAppendAndList(t *testing.T) {
	repo := New().Audit()
	ctx := context.Background()

	for _, action := range []string{domain.ActionAccountCreate, domain.ActionAccountDelete, domain.ActionAccountCreate} {
		e, err := repo.Append(ctx, domain.AuditEntry{Actor: "Admin", Action: action, Details: "details"})
		require.NoError(t, err)
		require.NotZero(t, e.ID)
		require.NotZero(t, e.CreatedAt)
	}

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(1), all[0].ID)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, domain.ActionAccountDelete, page[0].Action)

	empty, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestIdempotency(t *testing.T) {
	repo := New().Idempotency()
	ctx := context.Background()

	rec, created, err := repo.Reserve(ctx, "key", "POST", "/accounts")
	require.NoError(t, err)
	require.True(t, created)
	require.False(t, rec.Completed())

	rec, created, err = repo.Reserve(ctx, "key", "POST", "/accounts")
	require.NoError(t, err)
	require.False(t, created)
	require.False(t, rec.Completed())

	require.NoError(t, repo.Complete(ctx, "key", 200, []byte(`{"data":{}}`)))

	rec, created, err = repo.Reserve(ctx, "key", "POST", "/accounts")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, 200, rec.StatusCode)
	require.Equal(t, []byte(`{"data":{}}`), rec.Body)

	// Completed records survive Release.
	require.NoError(t, repo.Release(ctx, "key"))
	_, created, err = repo.Reserve(ctx, "key", "POST", "/accounts")
	require.NoError(t, err)
	require.False(t, created)

	_, created, err = repo.Reserve(ctx, "other", "POST", "/accounts/1/delete")
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, repo.Release(ctx, "other"))

	_, created, err = repo.Reserve(ctx, "other", "POST", "/accounts/1/delete")
	require.NoError(t, err)
	require.True(t, created)

	require.ErrorIs(t, repo.Complete(ctx, "missing", 200, nil), domain.ErrIdempotencyKeyNotFound)
}
