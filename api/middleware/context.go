package middleware

import (
	"context"

	"github.com/cybershaala/academy-backend/pkg/auth"
)

type claimsKey struct{}

// WithClaims stores parsed access token claims on the context.
func WithClaims(ctx context.Context, claims *auth.AccessTokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims seeded by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*auth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.AccessTokenClaims)
	return claims, ok && claims != nil
}
