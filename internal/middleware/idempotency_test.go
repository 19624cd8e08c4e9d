package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/memstore"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func send(server http.Handler, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(web.IdempotencyKeyHeader, key)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	return recorder
}

func newIdempotentServer(store IdempotencyStore, handler gin.HandlerFunc) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery(), Idempotency(store))
	server.POST("/accounts", handler)
	server.POST("/accounts/:id/delete", handler)
	server.GET("/accounts", handler)

	return server
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	var calls atomic.Int32

	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		n := calls.Add(1)
		require.Equal(t, "key-1", web.IdempotencyKey(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"call": n}})
	})

	first := send(server, http.MethodPost, "/accounts", "key-1")
	second := send(server, http.MethodPost, "/accounts", "key-1")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "true", second.Header().Get(web.ReplayedHeader))
	require.Empty(t, first.Header().Get(web.ReplayedHeader))
	require.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyStoresClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusPaymentRequired, web.Error(domain.ErrInsufficientFunds))
	})

	first := send(server, http.MethodPost, "/accounts", "key-402")
	second := send(server, http.MethodPost, "/accounts", "key-402")

	require.Equal(t, http.StatusPaymentRequired, first.Code)
	require.Equal(t, http.StatusPaymentRequired, second.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyKeyReusedOnAnotherRoute(t *testing.T) {
	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	require.Equal(t, http.StatusOK, send(server, http.MethodPost, "/accounts", "key-2").Code)

	res := send(server, http.MethodPost, "/accounts/1/delete", "key-2")
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)
	require.Contains(t, res.Body.String(), domain.ErrIdempotencyKeyReused.Error())
}

func TestIdempotencyRequestInProgress(t *testing.T) {
	store := memstore.New().Idempotency()

	_, created, err := store.Reserve(context.Background(), "key-3", http.MethodPost, "/accounts")
	require.NoError(t, err)
	require.True(t, created)

	var calls atomic.Int32

	server := newIdempotentServer(store, func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{})
	})

	res := send(server, http.MethodPost, "/accounts", "key-3")
	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), domain.ErrRequestInProgress.Error())
	require.Zero(t, calls.Load())
}

func TestIdempotencyReleasesOnServerError(t *testing.T) {
	var calls atomic.Int32

	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		if calls.Add(1) == 1 {
			c.JSON(http.StatusServiceUnavailable, web.Error(errorspkg.ErrUpstreamUnavailable))
			return
		}

		c.JSON(http.StatusOK, gin.H{})
	})

	require.Equal(t, http.StatusServiceUnavailable, send(server, http.MethodPost, "/accounts", "key-4").Code)
	require.Equal(t, http.StatusOK, send(server, http.MethodPost, "/accounts", "key-4").Code)
	require.Equal(t, http.StatusOK, send(server, http.MethodPost, "/accounts", "key-4").Code)
	require.Equal(t, int32(2), calls.Load())
}

func TestIdempotencyReleasesOnPanic(t *testing.T) {
	var calls atomic.Int32

	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		if calls.Add(1) == 1 {
			panic("boom")
		}

		c.JSON(http.StatusOK, gin.H{})
	})

	require.Equal(t, http.StatusInternalServerError, send(server, http.MethodPost, "/accounts", "key-5").Code)
	require.Equal(t, http.StatusOK, send(server, http.MethodPost, "/accounts", "key-5").Code)
	require.Equal(t, int32(2), calls.Load())
}

func TestIdempotencyPassThrough(t *testing.T) {
	var calls atomic.Int32

	server := newIdempotentServer(memstore.New().Idempotency(), func(c *gin.Context) {
		calls.Add(1)
		require.Empty(t, web.IdempotencyKey(c.Request.Context()))
		c.JSON(http.StatusOK, gin.H{})
	})

	send(server, http.MethodPost, "/accounts", "")
	send(server, http.MethodPost, "/accounts", "")
	send(server, http.MethodGet, "/accounts", "key-6")
	send(server, http.MethodGet, "/accounts", "key-6")

	require.Equal(t, int32(4), calls.Load())
}

func TestIdempotencyStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockIdempotencyStore(ctrl)
	store.EXPECT().Reserve(gomock.Any(), gomock.Eq("key-7"), gomock.Eq(http.MethodPost), gomock.Eq("/accounts")).
		Times(1).
		Return(domain.IdempotencyRecord{}, false, errorspkg.ErrUpstreamUnavailable)
	store.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	server := newIdempotentServer(store, func(c *gin.Context) {
		t.Error("handler must not run")
	})

	require.Equal(t, http.StatusServiceUnavailable, send(server, http.MethodPost, "/accounts", "key-7").Code)
}

func TestIdempotencyCompleteFailureKeepsKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockIdempotencyStore(ctrl)
	gomock.InOrder(
		store.EXPECT().Reserve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.IdempotencyRecord{}, true, nil),
		store.EXPECT().Complete(gomock.Any(), gomock.Eq("key-8"), gomock.Eq(http.StatusOK), gomock.Any()).
			Return(errorspkg.ErrUpstreamUnavailable),
	)
	store.EXPECT().Release(gomock.Any(), gomock.Any()).Times(0)

	server := newIdempotentServer(store, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})

	require.Equal(t, http.StatusOK, send(server, http.MethodPost, "/accounts", "key-8").Code)
}

// failingCompleteStore fails the first Complete call.
type failingCompleteStore struct {
	*memstore.IdempotencyRepo
	failed atomic.Bool
}

func (s *failingCompleteStore) Complete(ctx context.Context, key string, status int, body []byte) error {
	if s.failed.CompareAndSwap(false, true) {
		return errorspkg.ErrUpstreamUnavailable
	}

	return s.IdempotencyRepo.Complete(ctx, key, status, body)
}

func TestIdempotencyCompleteFailureDoesNotReapply(t *testing.T) {
	var calls atomic.Int32

	store := &failingCompleteStore{IdempotencyRepo: memstore.New().Idempotency()}

	server := newIdempotentServer(store, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"call": calls.Add(1)}})
	})

	first := send(server, http.MethodPost, "/accounts", "key-9")
	require.Equal(t, http.StatusOK, first.Code)

	second := send(server, http.MethodPost, "/accounts", "key-9")
	require.Equal(t, http.StatusConflict, second.Code)
	require.Contains(t, second.Body.String(), domain.ErrRequestInProgress.Error())

	require.Equal(t, int32(1), calls.Load())
}
