package photostream_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	photostream "github.com/goliatone/go-photostream"
	"github.com/stretchr/testify/assert"
)

func TestTokenServiceIssueAccess(t *testing.T) {
	cfg := newTestConfig()
	service := photostream.NewTokenService(cfg, nil)

	identity := testIdentity{
		id:       "user-123",
		username: "tester",
		email:    "tester@example.com",
		role:     photostream.RoleAdmin,
	}

	tokenString, err := service.IssueAccess(identity, 0)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	token, err := jwt.ParseWithClaims(tokenString, &photostream.JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(cfg.signingKey), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(*photostream.JWTClaims)
	assert.True(t, ok)
	assert.Equal(t, "tester@example.com", claims.Subject())
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, photostream.RoleAdmin, claims.Role())
	assert.Equal(t, photostream.ScopeAccess, claims.Scope())
	assert.Equal(t, cfg.issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID, "every token gets a jti")
}

func TestTokenServiceIssueAccessRequiresIdentity(t *testing.T) {
	service := photostream.NewTokenService(newTestConfig(), nil)

	_, err := service.IssueAccess(nil, 0)
	assert.Error(t, err)
}

func TestTokenServiceDefaultExpirations(t *testing.T) {
	cfg := newTestConfig()
	service := photostream.NewTokenService(cfg, nil)

	identity := testIdentity{id: "u1", email: "u1@example.com", role: photostream.RoleUser}

	t.Run("access defaults to 15 minutes", func(t *testing.T) {
		before := time.Now()
		tokenString, err := service.IssueAccess(identity, 0)
		assert.NoError(t, err)

		claims := decodeRaw(t, tokenString, cfg.signingKey)
		expected := before.Add(photostream.DefaultAccessTokenTTL)
		assert.WithinDuration(t, expected, claims.Expires(), 2*time.Second)
	})

	t.Run("refresh defaults to 30 days", func(t *testing.T) {
		before := time.Now()
		tokenString, err := service.IssueRefresh("u1@example.com", 0)
		assert.NoError(t, err)

		claims := decodeRaw(t, tokenString, cfg.signingKey)
		expected := before.Add(photostream.DefaultRefreshTokenTTL)
		assert.WithinDuration(t, expected, claims.Expires(), 2*time.Second)
	})

	t.Run("verification defaults to 24 hours", func(t *testing.T) {
		before := time.Now()
		tokenString, err := service.IssueVerification("u1@example.com")
		assert.NoError(t, err)

		claims := decodeRaw(t, tokenString, cfg.signingKey)
		expected := before.Add(photostream.DefaultVerificationTokenTTL)
		assert.WithinDuration(t, expected, claims.Expires(), 2*time.Second)
	})
}

func TestTokenServiceRoleOnlyInAccessTokens(t *testing.T) {
	cfg := newTestConfig()
	service := photostream.NewTokenService(cfg, nil)

	refresh, err := service.IssueRefresh("u1@example.com", 0)
	assert.NoError(t, err)
	assert.Equal(t, photostream.Role(""), decodeRaw(t, refresh, cfg.signingKey).Role())

	verification, err := service.IssueVerification("u1@example.com")
	assert.NoError(t, err)
	assert.Equal(t, photostream.Role(""), decodeRaw(t, verification, cfg.signingKey).Role())
}

func TestTokenServiceDecode(t *testing.T) {
	cfg := newTestConfig()
	service := photostream.NewTokenService(cfg, nil)

	identity := testIdentity{id: "u1", email: "u1@example.com", role: photostream.RoleUser}

	t.Run("decodes access token", func(t *testing.T) {
		tokenString, err := service.IssueAccess(identity, 0)
		assert.NoError(t, err)

		claims, err := service.Decode(tokenString, photostream.ScopeAccess)
		assert.NoError(t, err)
		assert.Equal(t, "u1@example.com", claims.Subject())
		assert.Equal(t, photostream.RoleUser, claims.Role())
	})

	t.Run("rejects refresh token where access is expected", func(t *testing.T) {
		tokenString, err := service.IssueRefresh("u1@example.com", 0)
		assert.NoError(t, err)

		claims, err := service.Decode(tokenString, photostream.ScopeAccess)
		assert.Nil(t, claims)
		assert.Error(t, err)

		var richErr *errors.Error
		assert.True(t, errors.As(err, &richErr))
		assert.Equal(t, photostream.TextCodeTokenScope, richErr.TextCode)
		assert.Equal(t, "refresh_token", richErr.Metadata["actual_scope"])
		assert.Equal(t, "access_token", richErr.Metadata["expected_scope"])
	})

	t.Run("rejects access token where refresh is expected", func(t *testing.T) {
		tokenString, err := service.IssueAccess(identity, 0)
		assert.NoError(t, err)

		_, err = service.Decode(tokenString, photostream.ScopeRefresh)
		assert.Error(t, err)
	})

	t.Run("rejects verification token on protected decode", func(t *testing.T) {
		tokenString, err := service.IssueVerification("u1@example.com")
		assert.NoError(t, err)

		_, err = service.Decode(tokenString, photostream.ScopeAccess)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		tokenString, err := service.IssueAccess(identity, -time.Hour)
		assert.NoError(t, err)

		claims, err := service.Decode(tokenString, photostream.ScopeAccess)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, photostream.ErrTokenExpired)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		claims, err := service.Decode("not.a.jwt", photostream.ScopeAccess)
		assert.Nil(t, claims)
		assert.Error(t, err)
		assert.True(t, photostream.IsMalformedError(err))
	})

	t.Run("rejects tampered signature", func(t *testing.T) {
		otherCfg := newTestConfig()
		otherCfg.signingKey = "some-other-key"
		otherService := photostream.NewTokenService(otherCfg, nil)

		tokenString, err := otherService.IssueAccess(identity, 0)
		assert.NoError(t, err)

		claims, err := service.Decode(tokenString, photostream.ScopeAccess)
		assert.Nil(t, claims)
		assert.Error(t, err)
		assert.True(t, photostream.IsMalformedError(err))
	})

	t.Run("rejects token without subject", func(t *testing.T) {
		impl := service.(*photostream.TokenServiceImpl)
		tokenString, err := impl.SignClaims(&photostream.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.issuer,
				Audience:  jwt.ClaimStrings(cfg.audience),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			TokenScope: string(photostream.ScopeAccess),
		})
		assert.NoError(t, err)

		claims, err := service.Decode(tokenString, photostream.ScopeAccess)
		assert.Nil(t, claims)
		assert.Error(t, err)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		otherCfg := newTestConfig()
		otherCfg.issuer = "someone-else"
		otherService := photostream.NewTokenService(otherCfg, nil)

		tokenString, err := otherService.IssueAccess(identity, 0)
		assert.NoError(t, err)

		_, err = service.Decode(tokenString, photostream.ScopeAccess)
		assert.Error(t, err)
	})
}

func decodeRaw(t *testing.T, tokenString, key string) *photostream.JWTClaims {
	t.Helper()

	token, err := jwt.ParseWithClaims(tokenString, &photostream.JWTClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(key), nil
	})
	assert.NoError(t, err)

	claims, ok := token.Claims.(*photostream.JWTClaims)
	assert.True(t, ok)

	return claims
}
