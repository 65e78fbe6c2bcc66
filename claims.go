package photostream

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenScope partitions tokens by the operation they authorize. A token
// minted for one scope is rejected everywhere another scope is expected.
type TokenScope string

const (
	// ScopeAccess authorizes API requests
	ScopeAccess TokenScope = "access_token"
	// ScopeRefresh authorizes minting a new access token
	ScopeRefresh TokenScope = "refresh_token"
	// ScopeVerification authorizes confirming an email address
	ScopeVerification TokenScope = "email_token"
)

// IsValid checks if the scope is one of the predefined token scopes
func (s TokenScope) IsValid() bool {
	switch s {
	case ScopeAccess, ScopeRefresh, ScopeVerification:
		return true
	default:
		return false
	}
}

// AuthClaims represents structured JWT claims with role and scope checks
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() Role
	Scope() TokenScope
	HasRole(role Role) bool
	IsAtLeast(minRole Role) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID        string         `json:"uid,omitempty"`
	UserRole   string         `json:"role,omitempty"`
	TokenScope string         `json:"scope,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the account email
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the global role. Only access tokens carry one; for
// refresh and verification tokens this is empty.
func (c *JWTClaims) Role() Role {
	return Role(c.UserRole)
}

// Scope returns the token scope
func (c *JWTClaims) Scope() TokenScope {
	return TokenScope(c.TokenScope)
}

// ClaimsMetadata exposes metadata extensions for optional context enrichment.
func (c *JWTClaims) ClaimsMetadata() map[string]any {
	return c.Metadata
}

// HasRole reports an exact role match
func (c *JWTClaims) HasRole(role Role) bool {
	return Role(c.UserRole).Is(role)
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole Role) bool {
	return Role(c.UserRole).AtLeast(minRole)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
