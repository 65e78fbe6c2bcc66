package photostream_test

import (
	"context"
	"testing"

	photostream "github.com/goliatone/go-photostream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Walks a new account through the whole lifecycle against the real
// sqlite-backed store: register, get rejected while unconfirmed,
// confirm through the mailed token, log in, refresh.
func TestAccountLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	repo := setupRepos(t)

	cfg := newTestConfig()
	cfg.requireConfirm = true

	var verificationToken string
	mailer := new(MockMailer)
	mailer.On("SendVerification", mock.Anything, "lifecycle@example.com", "lifecycle", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			verificationToken = args.String(3)
		}).
		Return(nil)

	sink := &recordingSink{}
	auther := photostream.NewAuthenticator(repo.Users(), cfg).
		WithMailer(mailer).
		WithActivitySink(sink)

	user, pair, err := auther.Register(ctx, photostream.RegisterInput{
		Username: "lifecycle",
		Email:    "lifecycle@example.com",
		Password: "a-long-password",
	})
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.False(t, user.Confirmed)
	assert.Equal(t, photostream.RoleAdmin, user.Role)
	require.NotEmpty(t, verificationToken)

	// unconfirmed accounts cannot log in
	_, err = auther.Login(ctx, "lifecycle@example.com", "a-long-password")
	assert.Equal(t, photostream.ErrEmailNotConfirmed, err)

	require.NoError(t, auther.VerifyEmail(ctx, verificationToken))

	confirmed, err := repo.Users().GetByEmail(ctx, "lifecycle@example.com")
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)

	pair, err = auther.Login(ctx, "lifecycle@example.com", "a-long-password")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	identity, err := auther.CurrentUser(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "lifecycle@example.com", identity.Email())

	refreshed, err := auther.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	assert.True(t, sink.has(photostream.ActivityEventRegister))
	assert.True(t, sink.has(photostream.ActivityEventEmailVerified))
	assert.True(t, sink.has(photostream.ActivityEventLoginSuccess))
	mailer.AssertExpectations(t)
}
