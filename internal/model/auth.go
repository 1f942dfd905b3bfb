package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims identifying an authenticated user.
// The user id travels in the standard "sub" claim.
type UserClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token
func (c *UserClaims) UserID() string {
	return c.Subject
}
