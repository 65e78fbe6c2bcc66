package photostream

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// routerClaims is the shape the JWT middleware stores in Locals. Duck
// typed so this package does not depend on the middleware's claims
// struct.
type routerClaims interface {
	Subject() string
	UserID() string
	Role() string
	Scope() string
}

// GetRouterIdentity extracts the authenticated identity the JWT
// middleware stored in the router context
func GetRouterIdentity(ctx router.Context, key string) (Identity, bool) {
	if key == "" {
		key = "user" // Default key used by JWT middleware
	}

	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}

	claims, ok := raw.(routerClaims)
	if !ok {
		return nil, false
	}

	return authIdentity{
		id:    claims.UserID(),
		email: claims.Subject(),
		role:  Role(claims.Role()),
	}, true
}
