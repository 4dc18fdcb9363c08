package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload embedded in a signed token.
// Claims are immutable once signed; issuing a new token is the only
// way to change them.
type Claims struct {
	UserID    int64
	Email     string
	Username  string
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// wireClaims is the JSON shape of the token payload segment:
// {id, email, username, isAdmin, iat, exp}.
type wireClaims struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (w *wireClaims) toClaims() *Claims {
	c := &Claims{
		UserID:   w.UserID,
		Email:    w.Email,
		Username: w.Username,
		IsAdmin:  w.IsAdmin,
	}
	if w.IssuedAt != nil {
		c.IssuedAt = w.IssuedAt.Time
	}
	if w.ExpiresAt != nil {
		c.ExpiresAt = w.ExpiresAt.Time
	}
	return c
}
