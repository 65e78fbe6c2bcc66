package photostream

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidEmail      = "auth_invalid_email"
	TextCodeInvalidPassword   = "auth_invalid_password"
	TextCodeEmailNotConfirmed = "auth_email_not_confirmed"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeTokenScope        = "auth_token_wrong_scope"
	TextCodeTooManyAttempts   = "auth_too_many_attempts"
	TextCodeRoleForbidden     = "auth_role_forbidden"
	TextCodeIdentityNotFound  = "auth_identity_not_found"
	TextCodeDuplicateUser     = "auth_duplicate_user"
	TextCodeSelfRating        = "photos_self_rating"
	TextCodeFilterConflict    = "photos_filter_conflict"
	TextCodeEmptyPassword     = "auth_empty_password"
	TextCodePasswordMismatch  = "auth_password_mismatch"
)

// ErrNoEmptyString is returned when an empty password is submitted for
// hashing.
var ErrNoEmptyString = errors.New("password cannot be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password does not
// match its stored digest, including digests that fail to parse.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidEmail is returned when no credential record matches the
// submitted email.
var ErrInvalidEmail = errors.New("invalid email", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidEmail).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidPassword is returned when the submitted password does not
// match the stored hash.
var ErrInvalidPassword = errors.New("invalid password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidPassword).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotConfirmed is returned when the account exists but its
// email address was never verified.
var ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotConfirmed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's exp claim is in the past.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or whose
// signature does not verify.
var ErrTokenMalformed = errors.New("token is malformed or has an invalid signature", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenScopeMismatch is returned when a valid token is presented to
// an operation expecting a different scope, e.g. a refresh token sent
// as an access token.
var ErrTokenScopeMismatch = errors.New("token has the wrong scope for this operation", errors.CategoryAuth).
	WithTextCode(TextCodeTokenScope).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts is returned while the login cooldown window
// is active.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(errors.CodeUnauthorized)

// ErrRoleForbidden is returned when an authenticated identity lacks the
// required role.
var ErrRoleForbidden = errors.New("role not allowed to perform this operation", errors.CategoryAuthz).
	WithTextCode(TextCodeRoleForbidden).
	WithCode(errors.CodeForbidden)

// ErrIdentityNotFound is returned when a token subject no longer maps
// to a stored user.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrDuplicateUser is returned when registration collides with an
// existing email or username.
var ErrDuplicateUser = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUser).
	WithCode(errors.CodeConflict)

// ErrSelfRating is returned when a user votes on their own photo.
var ErrSelfRating = errors.New("cannot rate your own photo", errors.CategoryValidation).
	WithTextCode(TextCodeSelfRating).
	WithCode(errors.CodeBadRequest)

// ErrFilterConflict is returned when a photo search combines the
// rating filter with the created-date filter.
var ErrFilterConflict = errors.New("rating and created-date filters are mutually exclusive", errors.CategoryValidation).
	WithTextCode(TextCodeFilterConflict).
	WithCode(errors.CodeBadRequest)
