package ctxkeys

import (
	"context"

	"github.com/caredocs/caredocs/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	CallerKey    contextKey = "caller"
	RequestIDKey contextKey = "request_id"
	ClientIPKey  contextKey = "client_ip"
)

// Caller returns the authenticated caller, or nil for anonymous requests.
func Caller(ctx context.Context) *model.Caller {
	caller, _ := ctx.Value(CallerKey).(*model.Caller)
	return caller
}

func WithCaller(ctx context.Context, caller *model.Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// ClientIP returns the address resolved by the RealIP middleware, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}
