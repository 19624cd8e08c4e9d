package middleware

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// IdempotencyStore keeps the outcome of requests sent with an idempotency key.
//
//go:generate mockgen -source idempotency.go -destination idempotency_mock.go -package middleware
type IdempotencyStore interface {
	// Reserve creates a pending record for key. If one already exists it is
	// returned with created set to false.
	Reserve(ctx context.Context, key, method, path string) (rec domain.IdempotencyRecord, created bool, err error)
	Complete(ctx context.Context, key string, statusCode int, body []byte) error
	Release(ctx context.Context, key string) error
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}

	return true
}

// Idempotency replays the stored response of mutating requests repeated with
// the same Idempotency-Key header. Requests without the header pass through.
//
// A key is bound to the method and path of its first request. While that
// request runs, repeats get 409. Responses with a 5xx status and panics
// release the key so the request can be retried. When a served response
// cannot be stored the key stays pending, and repeats keep getting 409.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(web.IdempotencyKeyHeader)
		if key == "" || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		l := zerolog.Ctx(ctx)
		method, path := c.Request.Method, c.Request.URL.Path

		rec, created, err := store.Reserve(ctx, key, method, path)
		if err != nil {
			c.AbortWithStatusJSON(web.StatusCode(err), web.Error(web.PublicError(err)))
			return
		}

		if !created {
			switch {
			case rec.Method != method || rec.Path != path:
				c.AbortWithStatusJSON(http.StatusUnprocessableEntity, web.Error(domain.ErrIdempotencyKeyReused))
			case !rec.Completed():
				c.AbortWithStatusJSON(http.StatusConflict, web.Error(domain.ErrRequestInProgress))
			default:
				l.Info().Str("idempotency_key", key).Msg("replaying stored response")
				c.Header(web.ReplayedHeader, "true")
				c.Data(rec.StatusCode, "application/json; charset=utf-8", rec.Body)
				c.Abort()
			}

			return
		}

		c.Request = c.Request.WithContext(web.WithIdempotencyKey(ctx, key))

		w := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = w

		served := false

		defer func() {
			if served {
				return
			}

			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				l.Error().Err(err).Str("idempotency_key", key).Msg("cannot release idempotency key")
			}
		}()

		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}

		served = true

		if err := store.Complete(context.WithoutCancel(ctx), key, status, w.body.Bytes()); err != nil {
			l.Error().Err(err).Str("idempotency_key", key).Int("status", status).
				Msg("cannot store idempotent response, key stays pending")
		}
	}
}
