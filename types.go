package photostream

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() Role
}

// TokenService issues and decodes scoped JWTs. Tokens are
// self-contained and never persisted; they become invalid only by
// expiring.
type TokenService interface {
	// IssueAccess mints an access token for the identity. Zero ttl
	// uses the configured default.
	IssueAccess(identity Identity, ttl time.Duration) (string, error)
	// IssueRefresh mints a refresh token for the subject email. Zero
	// ttl uses the configured default.
	IssueRefresh(subject string, ttl time.Duration) (string, error)
	// IssueVerification mints an email-verification token for the
	// subject email.
	IssueVerification(subject string) (string, error)
	// Decode verifies signature, expiry, and scope. Any failure is an
	// authentication error.
	Decode(token string, expected TokenScope) (AuthClaims, error)
	// SignClaims signs arbitrary claims with the configured key
	SignClaims(claims *JWTClaims) (string, error)
}

// TokenPair is the login/register response body
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Config holds auth options. Implementations are built once at startup
// and handed to constructors; nothing here is read from process globals.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
	GetVerificationTokenExpiration() time.Duration
	GetRequireConfirmedEmail() bool
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
