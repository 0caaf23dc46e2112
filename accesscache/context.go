package accesscache

import "context"

type bypassContextKey struct{}

// WithBypass marks ctx so searches read straight from the backend. The
// result is neither served from nor stored in the cache.
func WithBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, bypassContextKey{}, true)
}

func isBypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, _ := ctx.Value(bypassContextKey{}).(bool)
	return bypass
}
