package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"
	CtxUserID    ContextKey = "ctx_user_id"
	CtxOrgID     ContextKey = "ctx_org_id"
	CtxService   ContextKey = "ctx_service" // set when the caller authenticated with the shared service credential
)

// HTTP headers used across the API surface
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "X-Idempotency-Key"
	HeaderAuthorization  = "Authorization"
	HeaderServiceKey     = "X-Service-Key"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetOrgID(ctx context.Context) string {
	if orgID, ok := ctx.Value(CtxOrgID).(string); ok {
		return orgID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// IsServiceCaller reports whether the request was authenticated with the
// shared service credential rather than an end-user token.
func IsServiceCaller(ctx context.Context) bool {
	v, ok := ctx.Value(CtxService).(bool)
	return ok && v
}

func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

func SetOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, CtxOrgID, orgID)
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

func SetServiceCaller(ctx context.Context) context.Context {
	return context.WithValue(ctx, CtxService, true)
}
