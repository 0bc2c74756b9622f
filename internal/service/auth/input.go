package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/mgoto/recipelog/internal/domain"
)

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username string
	Password string
}

// Validate checks registration input. Username: 3–32 characters, no spaces.
// Password: at least 8 characters.
func (in *RegisterInput) Validate() error {
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 32 {
		return domain.NewValidationError("username", "must be 3 to 32 characters")
	}
	if strings.ContainsAny(in.Username, " \t\n") {
		return domain.NewValidationError("username", "must not contain whitespace")
	}
	if utf8.RuneCountInString(in.Password) < 8 {
		return domain.NewValidationError("password", "must be at least 8 characters")
	}
	return nil
}

// LoginInput is the payload for Login.
type LoginInput struct {
	Username string
	Password string
}

// Validate checks login input.
func (in *LoginInput) Validate() error {
	if in.Username == "" {
		return domain.NewValidationError("username", "is required")
	}
	if in.Password == "" {
		return domain.NewValidationError("password", "is required")
	}
	return nil
}
