package photostream_test

import (
	"testing"

	"github.com/goliatone/go-errors"
	photostream "github.com/goliatone/go-photostream"
	"github.com/stretchr/testify/assert"
)

func TestScopedValidator(t *testing.T) {
	service := photostream.NewTokenService(newTestConfig(), nil)
	identity := testIdentity{id: "u1", email: "u1@example.com", role: photostream.RoleUser}

	access, err := service.IssueAccess(identity, 0)
	assert.NoError(t, err)

	refresh, err := service.IssueRefresh(identity.Email(), 0)
	assert.NoError(t, err)

	validator := photostream.ScopedValidator(service, photostream.ScopeAccess)

	claims, err := validator.Validate(access)
	assert.NoError(t, err)
	assert.Equal(t, "u1@example.com", claims.Subject())

	claims, err = validator.Validate(refresh)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestTokenValidatorFuncNil(t *testing.T) {
	var fn photostream.TokenValidatorFunc

	claims, err := fn.Validate("anything")
	assert.Nil(t, claims)
	assert.Equal(t, photostream.ErrTokenMalformed, err)
}

func TestMultiTokenValidator(t *testing.T) {
	service := photostream.NewTokenService(newTestConfig(), nil)
	identity := testIdentity{id: "u1", email: "u1@example.com", role: photostream.RoleUser}

	access, err := service.IssueAccess(identity, 0)
	assert.NoError(t, err)

	verification, err := service.IssueVerification(identity.Email())
	assert.NoError(t, err)

	t.Run("first match wins", func(t *testing.T) {
		validator := photostream.NewMultiTokenValidator(
			photostream.ScopedValidator(service, photostream.ScopeAccess),
			photostream.ScopedValidator(service, photostream.ScopeVerification),
		)

		claims, err := validator.Validate(access)
		assert.NoError(t, err)
		assert.Equal(t, photostream.ScopeAccess, claims.Scope())
	})

	t.Run("falls through on malformed", func(t *testing.T) {
		malformed := photostream.TokenValidatorFunc(func(string) (photostream.AuthClaims, error) {
			return nil, photostream.ErrTokenMalformed
		})

		validator := photostream.NewMultiTokenValidator(
			malformed,
			photostream.ScopedValidator(service, photostream.ScopeVerification),
		)

		claims, err := validator.Validate(verification)
		assert.NoError(t, err)
		assert.Equal(t, photostream.ScopeVerification, claims.Scope())
	})

	t.Run("non-malformed errors stop the chain", func(t *testing.T) {
		chainErr := errors.New("store unavailable", errors.CategoryInternal)
		failing := photostream.TokenValidatorFunc(func(string) (photostream.AuthClaims, error) {
			return nil, chainErr
		})

		called := false
		next := photostream.TokenValidatorFunc(func(string) (photostream.AuthClaims, error) {
			called = true
			return nil, photostream.ErrTokenMalformed
		})

		validator := photostream.NewMultiTokenValidator(failing, next)

		claims, err := validator.Validate(access)
		assert.Nil(t, claims)
		assert.Equal(t, chainErr, err)
		assert.False(t, called)
	})

	t.Run("all malformed returns the last error", func(t *testing.T) {
		validator := photostream.NewMultiTokenValidator(
			photostream.ScopedValidator(service, photostream.ScopeAccess),
		)

		claims, err := validator.Validate("not.a.jwt")
		assert.Nil(t, claims)
		assert.True(t, photostream.IsMalformedError(err))
	})

	t.Run("no validators", func(t *testing.T) {
		validator := photostream.NewMultiTokenValidator(nil, nil)

		claims, err := validator.Validate(access)
		assert.Nil(t, claims)
		assert.Equal(t, photostream.ErrTokenMalformed, err)
	})
}
