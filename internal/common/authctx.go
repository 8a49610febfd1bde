package common

import "context"

type ctxKey string

const (
	userIDKey ctxKey = "auth/user-id"
	tierKey   ctxKey = "auth/tier"
)

// WithUserID stores the authenticated user identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithTier stores the authenticated customer tier on the provided context.
func WithTier(ctx context.Context, tier string) context.Context {
	return context.WithValue(ctx, tierKey, tier)
}

// TierName extracts the customer tier from the context if present.
func TierName(ctx context.Context) (string, bool) {
	v := ctx.Value(tierKey)
	if v == nil {
		return "", false
	}
	tier, ok := v.(string)
	return tier, ok
}
