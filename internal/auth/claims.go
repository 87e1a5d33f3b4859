package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims decodes the access token's payload without verifying the signature.
// Only the server can verify it; this is for display.
func (c *Client) Claims() (jwt.MapClaims, error) {
	tok := c.Token()
	if tok == "" {
		return nil, ErrNotLoggedIn
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("opaque token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the access token's exp claim, if it has one.
func (c *Client) ExpiresAt() (time.Time, bool) {
	claims, err := c.Claims()
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
