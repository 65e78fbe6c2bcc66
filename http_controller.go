package photostream

import (
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the auth endpoints on the given router
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.Login).
		SetName("auth.login")

	app.Post(controller.Routes.Refresh, controller.Refresh).
		SetName("auth.refresh")

	app.Post(controller.Routes.Register, controller.Register).
		SetName("auth.register")

	app.Post(controller.Routes.VerifyEmail, controller.VerifyEmail).
		SetName("auth.verify-email")

	// the mailed confirmation link is a plain GET on the same path
	app.Get(controller.Routes.VerifyEmail, controller.VerifyEmail).
		SetName("auth.verify-email.link")

	app.Post(controller.Routes.RequestVerification, controller.RequestVerification).
		SetName("auth.request-verification")
}

type AuthControllerRoutes struct {
	Login               string
	Refresh             string
	Register            string
	VerifyEmail         string
	RequestVerification string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       *Auther
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: RenderError,
		Routes: &AuthControllerRoutes{
			Login:               "/auth/login",
			Refresh:             "/auth/refresh",
			Register:            "/auth/register",
			VerifyEmail:         "/auth/verify-email",
			RequestVerification: "/auth/request-verification",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	return c
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// UserDTO is the public shape of a user record
type UserDTO struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Avatar    string     `json:"avatar,omitempty"`
	Role      Role       `json:"role"`
	Confirmed bool       `json:"confirmed"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func NewUserDTO(user *User) UserDTO {
	return UserDTO{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Role:      user.Role,
		Confirmed: user.Confirmed,
		CreatedAt: user.CreatedAt,
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Email,
				validation.Required,
				is.Email,
			),
			validation.Field(
				&r.Password,
				validation.Required,
			),
		)
	}, "Invalid login request payload")
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("auth login", "payload", print.MaybePrettyJSON(payload))
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, pair)
}

// RefreshRequest carries the refresh token; the Authorization header is
// accepted as a fallback
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.RefreshToken,
				validation.Required,
			),
		)
	}, "Invalid refresh request payload")
}

func (a *AuthController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if len(ctx.Body()) > 0 {
		if err := ctx.Bind(payload); err != nil {
			a.Logger.Error("refresh parse payload", "error", err)
			return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
				WithCode(errors.CodeBadRequest))
		}
	}

	if payload.RefreshToken == "" {
		payload.RefreshToken = bearerToken(ctx)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, pair)
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone_number" json:"phone_number"`
	Avatar   string `form:"avatar" json:"avatar"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Length(3, 50)),
			validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		)
	}, "Invalid registration payload")
}

// RegisterResponse returns the created account and its first token pair
type RegisterResponse struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
}

func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("auth register", "email", payload.Email)
	}

	user, pair, err := a.Auther.Register(ctx.Context(), RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Avatar:   payload.Avatar,
		Password: payload.Password,
	})
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, RegisterResponse{
		User:         NewUserDTO(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	})
}

// VerifyEmailRequest carries the verification token when it travels in
// the request body instead of the query string
type VerifyEmailRequest struct {
	Token string `form:"token" json:"token"`
}

// VerifyEmail confirms the account named by the verification token,
// taken from the token query parameter or the request body. A
// malformed or wrong-scope token is a validation failure rather than
// an authentication one: the caller holds a link, not credentials.
func (a *AuthController) VerifyEmail(ctx router.Context) error {
	token := ctx.Query("token", "")
	if token == "" && len(ctx.Body()) > 0 {
		payload := new(VerifyEmailRequest)
		if err := ctx.Bind(payload); err != nil {
			a.Logger.Error("verify email parse payload", "error", err)
			return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
				WithCode(errors.CodeBadRequest))
		}
		token = payload.Token
	}

	if token == "" {
		return a.ErrorHandler(ctx, errors.New("verification token is required", errors.CategoryValidation).
			WithCode(errors.CodeUnprocessable))
	}

	if err := a.Auther.VerifyEmail(ctx.Context(), token); err != nil {
		if errors.Is(err, ErrIdentityNotFound) || errors.IsNotFound(err) {
			return a.ErrorHandler(ctx, ErrIdentityNotFound)
		}

		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			return a.ErrorHandler(ctx, errors.New("Invalid verification token", errors.CategoryValidation).
				WithCode(errors.CodeUnprocessable).
				WithTextCode(richErr.TextCode))
		}

		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"detail": "Email verified",
	})
}

// VerificationRequestPayload asks for a new verification mail
type VerificationRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r VerificationRequestPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Email,
				validation.Required,
				is.Email,
			),
		)
	}, "Invalid verification request payload")
}

func (a *AuthController) RequestVerification(ctx router.Context) error {
	payload := new(VerificationRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verification request parse payload", "error", err)
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryBadInput, "Error parsing body").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Auther.RequestVerification(ctx.Context(), payload.Email); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "Check your email for confirmation",
	})
}

func bearerToken(ctx router.Context) string {
	header := ctx.Header("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}

	return ""
}
