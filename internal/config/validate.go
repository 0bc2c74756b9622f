package config

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MaxVerifyTTL is the longest a bot-verification timestamp may be trusted.
// Operators can raise VERIFY_TTL up to this bound; anything larger is clamped.
const MaxVerifyTTL = 168 * time.Hour

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.PasswordHashCost < bcrypt.MinCost || c.Auth.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.password_hash_cost must be between %d and %d (got %d)",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.PasswordHashCost)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Media.Root == "" {
		return fmt.Errorf("media.root must not be empty")
	}

	if err := c.Verify.validate(); err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if err := c.Submit.validate(); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	return nil
}

func (c *VerifyConfig) validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be > 0 (got %v)", c.TTL)
	}
	if c.TTL > MaxVerifyTTL {
		c.TTL = MaxVerifyTTL
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", c.Timeout)
	}
	if c.Enforced() && !validVerifyURL(c.URL) {
		return fmt.Errorf("url %q is not an absolute http(s) URL", c.URL)
	}
	return nil
}

func (c *SubmitConfig) validate() error {
	if c.SessionMax <= 0 {
		return fmt.Errorf("session_max must be > 0 (got %d)", c.SessionMax)
	}
	if c.DailyMax <= 0 {
		return fmt.Errorf("daily_max must be > 0 (got %d)", c.DailyMax)
	}
	return nil
}
