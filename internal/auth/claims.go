package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims carry a back-office session. The token ID (jti) is what logout revokes.
type Claims struct {
	jwt.RegisteredClaims

	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// Validate is called by the jwt validator after the registered claims pass.
func (c Claims) Validate() error {
	switch {
	case c.UserID == "" || c.Email == "":
		return errors.New("subject missing")
	case c.ID == "":
		return errors.New("jti missing")
	case c.TokenType == TokenTypeAccess && c.Role == "":
		return errors.New("role missing in access token")
	}
	return nil
}
