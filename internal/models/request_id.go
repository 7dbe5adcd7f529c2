package models

import "context"

// HeaderRequestID carries the id of the request that caused a mutation, on
// http requests and on published events alike.
const HeaderRequestID = "X-Request-ID"

type requestIDCtxKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID, empty when none.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}
