package session

import "context"

type contextKey string

const claimsKey contextKey = "session"

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// CurrentClaims returns the verified session claims placed in ctx by Middleware.
func CurrentClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
