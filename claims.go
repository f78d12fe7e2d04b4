package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims is the claim set carried by every token the core issues.
// Access and refresh tokens carry SignedAt so they can be invalidated
// against the user's password epoch; single-purpose tokens (email
// verification, password reset) omit it and are governed by expiry and
// the blocklist alone.
type AuthClaims struct {
	jwt.RegisteredClaims
	RequestID string           `json:"rid,omitempty"`
	UID       string           `json:"uid,omitempty"`
	Email     string           `json:"email,omitempty"`
	SignedAt  *jwt.NumericDate `json:"signed_at,omitempty"`
}

// IdentityID returns the user id the token is bound to
func (c *AuthClaims) IdentityID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// IdentityUUID parses the identity id as a UUID
func (c *AuthClaims) IdentityUUID() (uuid.UUID, error) {
	return uuid.Parse(c.IdentityID())
}

// SignedAtTime returns the issuance moment used for password-epoch checks.
// The second return is false for single-purpose tokens.
func (c *AuthClaims) SignedAtTime() (time.Time, bool) {
	if c.SignedAt == nil {
		return time.Time{}, false
	}
	return c.SignedAt.Time, true
}

// Expires returns the embedded absolute expiry
func (c *AuthClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
