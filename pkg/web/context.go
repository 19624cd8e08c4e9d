package web

import "context"

// Headers shared by the services.
const (
	RequestIDHeader      = "X-Request-ID"
	IdempotencyKeyHeader = "Idempotency-Key"
	ActorHeader          = "X-Actor"
	ReplayedHeader       = "Idempotent-Replayed"
)

type (
	requestIDKey      struct{}
	idempotencyKeyKey struct{}
	actorKey          struct{}
)

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithIdempotencyKey returns a copy of ctx carrying the idempotency key of the inbound request.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey{}, key)
}

// IdempotencyKey returns the idempotency key stored in ctx or an empty string.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKeyKey{}).(string)
	return key
}

// WithActor returns a copy of ctx carrying the actor performing the request.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Actor returns the actor stored in ctx or an empty string.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}
