package common

import "context"

// PrincipalKind distinguishes the two session realms.
type PrincipalKind string

const (
	PrincipalCustomer PrincipalKind = "customer"
	PrincipalAdmin    PrincipalKind = "admin"
)

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	ID    string
	Kind  PrincipalKind
	Email string
	// TokenID is the session jti, used for revocation on logout.
	TokenID string
}

type ctxKey string

const principalKey ctxKey = "auth/principal"

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal stored on the context, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.ID == "" {
		return Principal{}, false
	}
	return p, true
}

// CustomerID returns the id of an authenticated customer.
func CustomerID(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.Kind != PrincipalCustomer {
		return "", false
	}
	return p.ID, true
}

// AdminID returns the id of an authenticated admin.
func AdminID(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.Kind != PrincipalAdmin {
		return "", false
	}
	return p.ID, true
}
