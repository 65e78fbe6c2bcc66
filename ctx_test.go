package photostream_test

import (
	"context"
	"testing"

	photostream "github.com/goliatone/go-photostream"
	"github.com/goliatone/go-photostream/middleware/jwtware"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	user := &photostream.User{ID: uuid.New(), Email: "tester@example.com"}

	ctx := photostream.WithContext(context.Background(), user)

	got, ok := photostream.FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = photostream.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContext(t *testing.T) {
	claims := &photostream.JWTClaims{UID: "u1", UserRole: "user", TokenScope: "access_token"}

	ctx := photostream.WithClaimsContext(context.Background(), claims)

	got, ok := photostream.GetClaims(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", got.UserID())

	_, ok = photostream.GetClaims(context.Background())
	assert.False(t, ok)
}

func TestGetRouterIdentity(t *testing.T) {
	t.Run("reads middleware claims from locals", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = &jwtware.Claims{
			UID:        "user-123",
			UserRole:   "moderator",
			TokenScope: "access_token",
		}

		identity, ok := photostream.GetRouterIdentity(ctx, "user")
		assert.True(t, ok)
		assert.Equal(t, "user-123", identity.ID())
		assert.Equal(t, photostream.RoleModerator, identity.Role())
	})

	t.Run("empty key falls back to the middleware default", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = &jwtware.Claims{UID: "user-123"}

		_, ok := photostream.GetRouterIdentity(ctx, "")
		assert.True(t, ok)
	})

	t.Run("missing locals", func(t *testing.T) {
		ctx := router.NewMockContext()

		identity, ok := photostream.GetRouterIdentity(ctx, "user")
		assert.False(t, ok)
		assert.Nil(t, identity)
	})

	t.Run("unexpected locals shape", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = "not claims"

		_, ok := photostream.GetRouterIdentity(ctx, "user")
		assert.False(t, ok)
	})
}
