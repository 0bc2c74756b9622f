package config

import (
	"net/url"
	"path/filepath"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Media    MediaConfig    `yaml:"media"`
	Auth     AuthConfig     `yaml:"auth"`
	Verify   VerifyConfig   `yaml:"verify"`
	Submit   SubmitConfig   `yaml:"submit"`
	Relay    RelayConfig    `yaml:"relay"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`

	// RateLimitPerMinute is a per-IP cap applied in front of the API.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT" env-default:"120"`
}

// DatabaseConfig holds SQLite settings. Path is relative to the working
// directory unless absolute.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"data/recipelog.db"`
}

// MediaConfig holds uploaded-photo storage settings.
type MediaConfig struct {
	Root string `yaml:"root" env:"MEDIA_ROOT" env-default:"data/media"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"          env:"AUTH_JWT_SECRET"        env-required:"true"`
	JWTIssuer        string        `yaml:"jwt_issuer"          env:"AUTH_JWT_ISSUER"        env-default:"recipelog"`
	TokenTTL         time.Duration `yaml:"token_ttl"           env:"AUTH_TOKEN_TTL"         env-default:"720h"`
	PasswordHashCost int           `yaml:"password_hash_cost"  env:"AUTH_PASSWORD_COST"     env-default:"10"`
}

// VerifyConfig holds third-party bot-verification settings. An empty Secret
// disables server-side enforcement: the verification gate is skipped and a
// warning is logged instead.
type VerifyConfig struct {
	Secret  string        `yaml:"secret"   env:"VERIFY_SECRET"`
	URL     string        `yaml:"url"      env:"VERIFY_URL"     env-default:"https://challenges.cloudflare.com/turnstile/v0/siteverify"`
	TTL     time.Duration `yaml:"ttl"      env:"VERIFY_TTL"     env-default:"1h"`
	Timeout time.Duration `yaml:"timeout"  env:"VERIFY_TIMEOUT" env-default:"5s"`
}

// Enforced reports whether server-side bot verification is active.
func (c VerifyConfig) Enforced() bool {
	return c.Secret != ""
}

// SubmitConfig holds admission-pipeline limits. RateFailOpen controls what
// happens when the account rate-count query itself fails: true (default)
// lets the submission proceed, false rejects it.
type SubmitConfig struct {
	SessionMax   int  `yaml:"session_max"    env:"SUBMIT_SESSION_MAX"    env-default:"5"`
	DailyMax     int  `yaml:"daily_max"      env:"SUBMIT_DAILY_MAX"      env-default:"20"`
	RateFailOpen bool `yaml:"rate_fail_open" env:"SUBMIT_RATE_FAIL_OPEN" env-default:"true"`
}

// RelayConfig holds listen settings for the local token relay helper.
type RelayConfig struct {
	Host string `yaml:"host" env:"RELAY_HOST" env-default:"127.0.0.1"`
	Port int    `yaml:"port" env:"RELAY_PORT" env-default:"8765"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// MigrationsDir returns the on-disk migrations directory next to the
// database file, used by operator tooling. The server itself applies the
// embedded scripts.
func (c DatabaseConfig) MigrationsDir() string {
	return filepath.Join(filepath.Dir(c.Path), "migrations")
}

// validVerifyURL reports whether s parses as an absolute http(s) URL.
func validVerifyURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
