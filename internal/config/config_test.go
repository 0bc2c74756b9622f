package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes Validate.
func validConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "data/recipelog.db"},
		Media:    MediaConfig{Root: "data/media"},
		Auth: AuthConfig{
			JWTSecret:        "0123456789abcdef0123456789abcdef",
			JWTIssuer:        "recipelog",
			TokenTTL:         720 * time.Hour,
			PasswordHashCost: 10,
		},
		Verify: VerifyConfig{
			URL:     "https://challenges.cloudflare.com/turnstile/v0/siteverify",
			TTL:     time.Hour,
			Timeout: 5 * time.Second,
		},
		Submit: SubmitConfig{SessionMax: 5, DailyMax: 20, RateFailOpen: true},
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ShortJWTSecret(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_VerifyTTLClamped(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Verify.TTL = 500 * time.Hour
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MaxVerifyTTL, cfg.Verify.TTL)
}

func TestConfig_Validate_VerifyTTLZero(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Verify.TTL = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_VerifyURLRequiredWhenEnforced(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Verify.Secret = "secret-key"
	cfg.Verify.URL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg.Verify.URL = "https://verify.example.com/check"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_SubmitLimits(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Submit.SessionMax = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Submit.DailyMax = -1
	assert.Error(t, cfg.Validate())
}

func TestVerifyConfig_Enforced(t *testing.T) {
	t.Parallel()

	assert.False(t, VerifyConfig{}.Enforced())
	assert.True(t, VerifyConfig{Secret: "s"}.Enforced())
}
