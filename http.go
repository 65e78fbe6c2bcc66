package photostream

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-photostream/middleware/jwtware"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteAuthenticator wires the Auther into HTTP middleware and JSON
// error responses
type RouteAuthenticator struct {
	auth         *Auther
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

// Auther exposes the underlying authenticator
func (a *RouteAuthenticator) Auther() *Auther {
	return a.auth
}

// ProtectedRoute guards a route with JWT validation. Only access-scope
// tokens pass; refresh and verification tokens are rejected even when
// their signature is valid.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.protected("", errorHandler)
}

// RequireRoleRoute guards a route with JWT validation plus an exact
// role match
func (a *RouteAuthenticator) RequireRoleRoute(role Role, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return a.protected(role, errorHandler)
}

func (a *RouteAuthenticator) protected(role Role, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeClientRouteAuthErrorHandler(false)
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return jwtware.New(jwtware.Config{
			ErrorHandler:   errorHandler,
			SuccessHandler: hf,
			SigningKey: jwtware.SigningKey{
				Key:    []byte(a.cfg.GetSigningKey()),
				JWTAlg: a.cfg.GetSigningMethod(),
			},
			AuthScheme:    a.cfg.GetAuthScheme(),
			ContextKey:    a.cfg.GetContextKey(),
			TokenLookup:   a.cfg.GetTokenLookup(),
			RequiredScope: string(ScopeAccess),
			RequiredRole:  string(role),
		})
	}
}

// MakeClientRouteAuthErrorHandler maps middleware failures to JSON 401
// responses. With optional=true the request proceeds unauthenticated.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else if !errors.As(err, &richErr) {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return RenderError(c, richErr)
}

// RenderError writes a rich error as a JSON response, using the error's
// HTTP code
func RenderError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	code := richErr.Code
	if code == 0 {
		code = errors.CodeInternal
	}

	body := map[string]any{
		"message":  richErr.Message,
		"category": string(richErr.Category),
	}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}
	if len(richErr.Metadata) > 0 {
		body["metadata"] = richErr.Metadata
	}

	return c.JSON(code, map[string]any{"error": body})
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
