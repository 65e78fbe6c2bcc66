package photostream_test

import (
	"context"
	"time"

	photostream "github.com/goliatone/go-photostream"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthStore implements photostream.AuthStore
type MockAuthStore struct {
	mock.Mock
}

func (m *MockAuthStore) GetByEmail(ctx context.Context, email string) (*photostream.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photostream.User), args.Error(1)
}

func (m *MockAuthStore) TrackAttemptedLogin(ctx context.Context, user *photostream.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAuthStore) TrackSuccessfulLogin(ctx context.Context, user *photostream.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAuthStore) Register(ctx context.Context, user *photostream.User) (*photostream.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*photostream.User), args.Error(1)
}

func (m *MockAuthStore) ConfirmEmail(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMailer implements photostream.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerification(ctx context.Context, to, username, token string) error {
	args := m.Called(ctx, to, username, token)
	return args.Error(0)
}

// testIdentity is a plain Identity for token issuing tests
type testIdentity struct {
	id       string
	username string
	email    string
	role     photostream.Role
}

func (t testIdentity) ID() string             { return t.id }
func (t testIdentity) Username() string       { return t.username }
func (t testIdentity) Email() string          { return t.email }
func (t testIdentity) Role() photostream.Role { return t.role }

// testConfig implements photostream.Config with sane test values
type testConfig struct {
	signingKey      string
	issuer          string
	audience        []string
	accessTTL       time.Duration
	refreshTTL      time.Duration
	verificationTTL time.Duration
	requireConfirm  bool
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey: "test-signing-key",
		issuer:     "photostream-test",
		audience:   []string{"photostream"},
	}
}

func (c *testConfig) GetSigningKey() string                         { return c.signingKey }
func (c *testConfig) GetSigningMethod() string                      { return "HS256" }
func (c *testConfig) GetContextKey() string                         { return "user" }
func (c *testConfig) GetTokenLookup() string                        { return "header:Authorization" }
func (c *testConfig) GetAuthScheme() string                         { return "Bearer" }
func (c *testConfig) GetIssuer() string                             { return c.issuer }
func (c *testConfig) GetAudience() []string                         { return c.audience }
func (c *testConfig) GetAccessTokenExpiration() time.Duration       { return c.accessTTL }
func (c *testConfig) GetRefreshTokenExpiration() time.Duration      { return c.refreshTTL }
func (c *testConfig) GetVerificationTokenExpiration() time.Duration { return c.verificationTTL }
func (c *testConfig) GetRequireConfirmedEmail() bool                { return c.requireConfirm }

// recordingSink captures activity events for assertions
type recordingSink struct {
	events []photostream.ActivityEvent
}

func (r *recordingSink) Record(ctx context.Context, event photostream.ActivityEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) has(eventType photostream.ActivityEventType) bool {
	for _, e := range r.events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}
