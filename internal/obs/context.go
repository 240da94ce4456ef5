package obs

import "context"

type routeKey struct{}

// WithRoute records the chi route pattern that matched the request.
func WithRoute(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routeKey{}, pattern)
}

// Route returns the pattern stored by WithRoute, or "" before routing.
func Route(ctx context.Context) string {
	pattern, _ := ctx.Value(routeKey{}).(string)
	return pattern
}
