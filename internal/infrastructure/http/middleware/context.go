package middleware

import (
	"context"

	"github.com/taskstream/taskstream/internal/application/ports"
)

type contextKey string

const authContextKey contextKey = "auth"

// WithAuth injects the verified token claims into the context.
func WithAuth(ctx context.Context, claims *ports.TokenClaims) context.Context {
	return context.WithValue(ctx, authContextKey, claims)
}

// AuthFromContext returns the verified claims from the context, or nil.
func AuthFromContext(ctx context.Context) *ports.TokenClaims {
	v := ctx.Value(authContextKey)
	if v == nil {
		return nil
	}
	c, _ := v.(*ports.TokenClaims)
	return c
}
