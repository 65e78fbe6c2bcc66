package photostream

import (
	"context"
	"reflect"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// AuthStore is the slice of the users repository the authenticator
// needs
type AuthStore interface {
	UserTracker
	Register(ctx context.Context, user *User) (*User, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID) error
}

// RegisterInput carries a new account's attributes. Username defaults
// to the local part of the email when empty.
type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Avatar   string
	Password string
}

// Auther composes the credential store, password hasher, and token
// service into the auth flows: login, register, refresh, verify-email,
// and the authorization gate.
type Auther struct {
	store        AuthStore
	provider     IdentityProvider
	tokenService TokenService
	mailer       Mailer
	logger       Logger
	activitySink ActivitySink
	phoneRegion  string
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(store AuthStore, opts Config) *Auther {
	provider := NewUserProvider(store).
		WithRequireConfirmedEmail(opts.GetRequireConfirmedEmail())

	return &Auther{
		store:        store,
		provider:     provider,
		tokenService: NewTokenService(opts, defLogger{}),
		mailer:       noopMailer{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		phoneRegion:  "US",
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the default token service
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithIdentityProvider overrides the default user provider
func (s *Auther) WithIdentityProvider(provider IdentityProvider) *Auther {
	if provider != nil {
		s.provider = provider
	}
	return s
}

// WithMailer configures the verification mail sender
func (s *Auther) WithMailer(mailer Mailer) *Auther {
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithPhoneRegion sets the default region for phone normalization
func (s *Auther) WithPhoneRegion(region string) *Auther {
	if region != "" {
		s.phoneRegion = region
	}
	return s
}

// TokenService returns the TokenService instance used by this Auther
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies credentials and returns a fresh token pair. Unknown
// email, wrong password, and unconfirmed email each fail with their
// own unauthorized error.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return nil, ErrInvalidEmail
	}

	pair, err := s.issuePair(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return pair, nil
}

// Register creates an account, issues its first token pair, and sends
// the verification mail. The first account in the store becomes admin.
// Mail delivery is best effort; a send failure is logged, not returned.
func (s *Auther) Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}

	phone, err := s.normalizePhone(input.Phone)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		Username:     usernameOrEmailLocal(input.Username, input.Email),
		Email:        strings.TrimSpace(input.Email),
		Phone:        phone,
		Avatar:       input.Avatar,
		PasswordHash: hash,
	}

	user, err = s.store.Register(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(identityFromUser(user))
	if err != nil {
		return nil, nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventRegister, user.ID.String(), map[string]any{
		"email": user.Email,
		"role":  string(user.Role),
	})

	s.sendVerificationMail(ctx, user)

	return user, pair, nil
}

// RequestVerification re-issues the verification mail for an
// unconfirmed account. Confirmed accounts are a no-op.
func (s *Auther) RequestVerification(ctx context.Context, email string) error {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return err
	}

	if user.Confirmed {
		return nil
	}

	token, err := s.tokenService.IssueVerification(user.Email)
	if err != nil {
		return err
	}

	return s.mailer.SendVerification(ctx, user.Email, user.Username, token)
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is echoed back unchanged; it is never rotated.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenService.Decode(refreshToken, ScopeRefresh)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	access, err := s.tokenService.IssueAccess(identity, 0)
	if err != nil {
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRefresh, identity.ID(), map[string]any{
		"subject": claims.Subject(),
	})

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// VerifyEmail confirms the account named by a verification token.
// Verifying an already confirmed account is a no-op.
func (s *Auther) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokenService.Decode(token, ScopeVerification)
	if err != nil {
		return err
	}

	user, err := s.store.GetByEmail(ctx, claims.Subject())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return err
	}

	if user.Confirmed {
		return nil
	}

	if err := s.store.ConfirmEmail(ctx, user.ID); err != nil {
		return err
	}

	s.emitAuthEvent(ctx, ActivityEventEmailVerified, user.ID.String(), map[string]any{
		"email": user.Email,
	})

	return nil
}

// CurrentUser resolves an access token into an identity. Every failure
// mode is unauthorized: bad signature, expired, wrong scope, or a
// subject that no longer exists.
func (s *Auther) CurrentUser(ctx context.Context, token string) (Identity, error) {
	claims, err := s.tokenService.Decode(token, ScopeAccess)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, goerrors.New("credentials could not be resolved", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode(TextCodeIdentityNotFound)
		}
		return nil, err
	}

	return identity, nil
}

// RequireRole is the authorization gate: the identity's role must
// exactly match the required role. Higher roles do not substitute for
// lower ones.
func (s *Auther) RequireRole(identity Identity, role Role) error {
	if identity == nil {
		return ErrRoleForbidden
	}

	if !identity.Role().Is(role) {
		return ErrRoleForbidden.Clone().WithMetadata(map[string]any{
			"required_role": string(role),
			"actual_role":   string(identity.Role()),
		})
	}

	return nil
}

func (s *Auther) issuePair(identity Identity) (*TokenPair, error) {
	access, err := s.tokenService.IssueAccess(identity, 0)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokenService.IssueRefresh(identity.Email(), 0)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *Auther) sendVerificationMail(ctx context.Context, user *User) {
	token, err := s.tokenService.IssueVerification(user.Email)
	if err != nil {
		s.logger.Error("failed to issue verification token", "error", err, "email", user.Email)
		return
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Username, token); err != nil {
		s.logger.Error("failed to send verification mail", "error", err, "email", user.Email)
	}
}

func (s *Auther) normalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(phone, s.phoneRegion)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Error("activity sink record error", "error", err)
	}
}

func usernameOrEmailLocal(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		return strings.Split(email, "@")[0]
	}

	return username
}
