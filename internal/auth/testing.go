package auth

import "context"

// ContextWithPrincipal adds a principal to the context.
// Handler tests in other packages use it to skip token verification.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
