package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// SimpleConfig is a plain-values Config implementation
type SimpleConfig struct {
	SigningKey                string        `json:"signing_key"`
	Issuer                    string        `json:"issuer"`
	AccessTokenTTL            time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL           time.Duration `json:"refresh_token_ttl"`
	EmailVerificationTokenTTL time.Duration `json:"email_verification_token_ttl"`
	PasswordResetTokenTTL     time.Duration `json:"password_reset_token_ttl"`
	EmailVerificationURL      string        `json:"email_verification_url"`
	PasswordResetURL          string        `json:"password_reset_url"`
}

var _ Config = (*SimpleConfig)(nil)

// DefaultConfig returns a config with the token TTLs the market backend
// ships with. Signing key and callback URLs must still be provided.
func DefaultConfig() *SimpleConfig {
	return &SimpleConfig{
		Issuer:                    "sustainable-market",
		AccessTokenTTL:            15 * time.Minute,
		RefreshTokenTTL:           7 * 24 * time.Hour,
		EmailVerificationTokenTTL: 48 * time.Hour,
		PasswordResetTokenTTL:     time.Hour,
	}
}

// Validate will validate the configuration values
func (c SimpleConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.AccessTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.RefreshTokenTTL, validation.Required, validation.Min(time.Hour)),
		validation.Field(&c.EmailVerificationTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.PasswordResetTokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.EmailVerificationURL, validation.Required, is.URL),
		validation.Field(&c.PasswordResetURL, validation.Required, is.URL),
	)
}

func (c *SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c *SimpleConfig) GetIssuer() string { return c.Issuer }

func (c *SimpleConfig) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

func (c *SimpleConfig) GetRefreshTokenTTL() time.Duration { return c.RefreshTokenTTL }

func (c *SimpleConfig) GetEmailVerificationTokenTTL() time.Duration {
	return c.EmailVerificationTokenTTL
}

func (c *SimpleConfig) GetPasswordResetTokenTTL() time.Duration { return c.PasswordResetTokenTTL }

func (c *SimpleConfig) GetEmailVerificationURL() string { return c.EmailVerificationURL }

func (c *SimpleConfig) GetPasswordResetURL() string { return c.PasswordResetURL }
