package photostream

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Per-scope expiration defaults, used when callers pass a zero TTL
const (
	DefaultAccessTokenTTL       = 15 * time.Minute
	DefaultRefreshTokenTTL      = 30 * 24 * time.Hour
	DefaultVerificationTokenTTL = 24 * time.Hour
)

// TokenServiceImpl implements the TokenService interface. The signing
// key is fixed for the life of the process; rotating it invalidates
// every outstanding token.
type TokenServiceImpl struct {
	signingKey      []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a new TokenService instance from config
func NewTokenService(config Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	ts := &TokenServiceImpl{
		signingKey:      []byte(config.GetSigningKey()),
		accessTTL:       config.GetAccessTokenExpiration(),
		refreshTTL:      config.GetRefreshTokenExpiration(),
		verificationTTL: config.GetVerificationTokenExpiration(),
		issuer:          config.GetIssuer(),
		audience:        config.GetAudience(),
		logger:          logger,
	}

	if ts.accessTTL == 0 {
		ts.accessTTL = DefaultAccessTokenTTL
	}
	if ts.refreshTTL == 0 {
		ts.refreshTTL = DefaultRefreshTokenTTL
	}
	if ts.verificationTTL == 0 {
		ts.verificationTTL = DefaultVerificationTokenTTL
	}

	return ts
}

// IssueAccess creates an access token carrying the identity's role.
// The subject is the account email.
func (ts *TokenServiceImpl) IssueAccess(identity Identity, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	if ttl == 0 {
		ttl = ts.accessTTL
	}

	claims := ts.newClaims(identity.Email(), ScopeAccess, ttl)
	claims.UID = identity.ID()
	claims.UserRole = string(identity.Role())

	return ts.SignClaims(claims)
}

// IssueRefresh creates a refresh token. It carries no role claim so a
// leaked refresh token cannot be replayed against protected routes.
func (ts *TokenServiceImpl) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required", errors.CategoryBadInput)
	}

	if ttl == 0 {
		ttl = ts.refreshTTL
	}

	return ts.SignClaims(ts.newClaims(subject, ScopeRefresh, ttl))
}

// IssueVerification creates a token for the email confirmation flow
func (ts *TokenServiceImpl) IssueVerification(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required", errors.CategoryBadInput)
	}

	return ts.SignClaims(ts.newClaims(subject, ScopeVerification, ts.verificationTTL))
}

func (ts *TokenServiceImpl) newClaims(subject string, scope TokenScope, ttl time.Duration) *JWTClaims {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   subject,
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenScope: string(scope),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Decode parses and validates a token string, returning structured
// claims. The token must verify against the signing key, be unexpired,
// carry the expected scope, and name a subject.
func (ts *TokenServiceImpl) Decode(tokenString string, expected TokenScope) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService decode encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService decode could not map claims")
		return nil, ErrTokenMalformed
	}

	if claims.Scope() != expected {
		return nil, ErrTokenScopeMismatch.Clone().WithMetadata(map[string]any{
			"expected_scope": string(expected),
			"actual_scope":   string(claims.Scope()),
		})
	}

	if claims.Subject() == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
