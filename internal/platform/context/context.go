// Package context carries request-scoped values (request id, client id,
// route) through a context.Context, the way stem/pkg/context does for the
// rest of the fleet.
package context

import "context"

type contextKey string

var (
	requestIDKey = contextKey("X-Request-Id")
	methodKey    = contextKey("X-Method")
	routeKey     = contextKey("X-Route")
	remoteIPKey  = contextKey("X-Remote-Ip")
	clientIDKey  = contextKey("X-Client-Id")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey, method)
}

func GetMethod(ctx context.Context) string {
	v, _ := ctx.Value(methodKey).(string)
	return v
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	v, _ := ctx.Value(routeKey).(string)
	return v
}

func SetRemoteIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, remoteIPKey, ip)
}

func GetRemoteIP(ctx context.Context) string {
	v, _ := ctx.Value(remoteIPKey).(string)
	return v
}

// SetClientID records the OAuth client id resolved by the token verifier
// middleware (C8) for the lifetime of the request.
func SetClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

func GetClientID(ctx context.Context) string {
	v, _ := ctx.Value(clientIDKey).(string)
	return v
}
