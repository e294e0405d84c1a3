package domain

import (
	"strings"
	"time"
)

// User is the profile returned by the users/me endpoint
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest carries the profile submitted at registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate performs the client-side checks made before calling the server.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return NewNotice(ErrInvalidProfile, "Username is required.")
	}
	if !strings.Contains(r.Email, "@") {
		return NewNotice(ErrInvalidProfile, "A valid email address is required.")
	}
	if r.Password == "" {
		return NewNotice(ErrInvalidProfile, "Password is required.")
	}
	return nil
}

// Token is the credential issued by the token endpoint
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
