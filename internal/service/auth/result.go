package auth

import "github.com/mgoto/recipelog/internal/domain"

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token   string
	Account *domain.Account
	Session *domain.Session
}
