package middleware

import (
	"context"
)

type contextKey string

const (
	OperatorContextKey contextKey = "operator_context"
)

// OperatorContext identifies the caller of a guarded route.
type OperatorContext struct {
	Operator string
	TokenID  string // jti
}

func GetOperatorContext(ctx context.Context) (*OperatorContext, bool) {
	val, ok := ctx.Value(OperatorContextKey).(*OperatorContext)
	return val, ok
}

func WithOperatorContext(ctx context.Context, oc *OperatorContext) context.Context {
	return context.WithValue(ctx, OperatorContextKey, oc)
}
