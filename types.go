package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the user directory the auth core delegates storage to.
// Implementations must treat email lookups as case-normalized.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
}

// Recipient is the addressee of an outbound notification
type Recipient struct {
	Name  string
	Email string
}

// Mailer delivers a rendered message. The core supplies recipient,
// subject, and body; transport and retry policy belong to implementations.
type Mailer interface {
	Send(ctx context.Context, to Recipient, subject, body string) error
}

// MailRenderer turns a template kind plus bindings into a message body
type MailRenderer interface {
	Render(kind MailTemplate, binding map[string]any) (string, error)
}

// TokenService signs and verifies compact, expiring, tamper-evident tokens.
// Verification is stateless; revocation is layered on top by the core.
type TokenService interface {
	Issue(claims *AuthClaims, ttl time.Duration) (string, error)
	Validate(raw string) (*AuthClaims, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds the values the auth core requires
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetEmailVerificationTokenTTL() time.Duration
	GetPasswordResetTokenTTL() time.Duration
	GetEmailVerificationURL() string
	GetPasswordResetURL() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
