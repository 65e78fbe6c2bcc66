package config

import (
	"fmt"
	"time"
)

// BaseConfig is the root application configuration. Values load from
// config files and environment through the go-config container.
type BaseConfig struct {
	Server      Server      `json:"server" koanf:"server"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
	Storage     Storage     `json:"storage" koanf:"storage"`
	Mail        Mail        `json:"mail" koanf:"mail"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (a *BaseConfig) GetServer() *Server {
	return &a.Server
}

func (a *BaseConfig) GetAuth() *Auth {
	return &a.Auth
}

func (a *BaseConfig) GetPersistence() *Persistence {
	return &a.Persistence
}

func (a *BaseConfig) GetStorage() *Storage {
	return &a.Storage
}

func (a *BaseConfig) GetMail() *Mail {
	return &a.Mail
}

type Server struct {
	Address   string `json:"address" koanf:"address"`
	PublicURL string `json:"public_url" koanf:"public_url"`
}

func (s Server) GetAddress() string {
	if s.Address == "" {
		return ":8080"
	}
	return s.Address
}

func (s Server) GetPublicURL() string {
	if s.PublicURL == "" {
		return "http://localhost:8080"
	}
	return s.PublicURL
}

// Auth configures token signing and the middleware token lookup
type Auth struct {
	SigningKey                    string   `json:"signing_key" koanf:"signing_key"`
	SigningMethod                 string   `json:"signing_method" koanf:"signing_method"`
	ContextKey                    string   `json:"context_key" koanf:"context_key"`
	TokenLookup                   string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme                    string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer                        string   `json:"issuer" koanf:"issuer"`
	Audience                      []string `json:"audience" koanf:"audience"`
	AccessTokenExpiration         string   `json:"access_token_expiration" koanf:"access_token_expiration"`
	RefreshTokenExpiration        string   `json:"refresh_token_expiration" koanf:"refresh_token_expiration"`
	VerificationTokenExpiration   string   `json:"verification_token_expiration" koanf:"verification_token_expiration"`
	AllowUnconfirmedLogin         bool     `json:"allow_unconfirmed_login" koanf:"allow_unconfirmed_login"`
	PhoneRegion                   string   `json:"phone_region" koanf:"phone_region"`
}

func (a *Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a *Auth) GetSigningMethod() string {
	if a.SigningMethod == "" {
		return "HS256"
	}
	return a.SigningMethod
}

func (a *Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "user"
	}
	return a.ContextKey
}

func (a *Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

func (a *Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a *Auth) GetIssuer() string {
	return a.Issuer
}

func (a *Auth) GetAudience() []string {
	return a.Audience
}

func (a *Auth) GetAccessTokenExpiration() time.Duration {
	return parseDurationExpr(a.AccessTokenExpiration)
}

func (a *Auth) GetRefreshTokenExpiration() time.Duration {
	return parseDurationExpr(a.RefreshTokenExpiration)
}

func (a *Auth) GetVerificationTokenExpiration() time.Duration {
	return parseDurationExpr(a.VerificationTokenExpiration)
}

// GetRequireConfirmedEmail defaults to requiring a confirmed account;
// deployments opt out with allow_unconfirmed_login.
func (a *Auth) GetRequireConfirmedEmail() bool {
	return !a.AllowUnconfirmedLogin
}

func (a *Auth) GetPhoneRegion() string {
	if a.PhoneRegion == "" {
		return "US"
	}
	return a.PhoneRegion
}

// parseDurationExpr returns zero for empty or bad expressions; the
// token service falls back to its own defaults on zero.
func parseDurationExpr(expr string) time.Duration {
	if expr == "" {
		return 0
	}
	dur, err := time.ParseDuration(expr)
	if err != nil {
		return 0
	}
	return dur
}

type Persistence struct {
	Debug                 bool   `json:"debug" koanf:"debug"`
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
	Seed                  bool   `json:"seed" koanf:"seed"`
}

func (p *Persistence) GetDebug() bool {
	return p.Debug
}

func (p *Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p *Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:photostream.db?cache=shared&_pragma=foreign_keys(1)"
	}
	return p.DSN
}

func (p *Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

func (p *Persistence) GetSeed() bool {
	return p.Seed
}

type Storage struct {
	Dir       string `json:"dir" koanf:"dir"`
	PublicURL string `json:"public_url" koanf:"public_url"`
}

func (s *Storage) GetDir() string {
	if s.Dir == "" {
		return "./uploads"
	}
	return s.Dir
}

func (s *Storage) GetPublicURL() string {
	if s.PublicURL == "" {
		return "/uploads"
	}
	return s.PublicURL
}

type Mail struct {
	Subject string `json:"subject" koanf:"subject"`
	BaseURL string `json:"base_url" koanf:"base_url"`
}

func (m *Mail) GetSubject() string {
	return m.Subject
}

func (m *Mail) GetBaseURL() string {
	return m.BaseURL
}
