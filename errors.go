package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrUserAlreadyExists is returned when a sign-up targets an email that is
// already bound to an active account.
var ErrUserAlreadyExists = errors.New("user already exists", errors.CategoryConflict).
	WithTextCode("USER_EXISTS")

// ErrUserNotFound is returned when an email or id resolves to no active user
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode("USER_NOT_FOUND")

// ErrInvalidCredentials deliberately does not say which half of the
// credential pair failed.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS")

// ErrTokenExpired is returned for structurally sound tokens past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned when a token fails signature or shape checks
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenRevoked covers both revocation paths: a blocklisted token and a
// token signed before the user's last password change.
var ErrTokenRevoked = errors.New("token is no longer valid", errors.CategoryAuth).
	WithTextCode("TOKEN_REVOKED")

// ErrTokenReused is returned when a single-use token is presented twice
var ErrTokenReused = errors.New("token already used", errors.CategoryConflict).
	WithTextCode("TOKEN_REUSED")

// ErrAlreadyVerified is returned when verifying an already verified account
var ErrAlreadyVerified = errors.New("email address already verified", errors.CategoryConflict).
	WithTextCode("ALREADY_VERIFIED")

// ErrNotVerified gates operations that require a proven email address
var ErrNotVerified = errors.New("user is not verified", errors.CategoryAuthz).
	WithTextCode("NOT_VERIFIED")

// ErrUnauthorized is returned when a request carries no usable bearer token
var ErrUnauthorized = errors.New("missing or invalid authorization token", errors.CategoryAuth).
	WithTextCode("UNAUTHORIZED")

// ErrForbidden is returned when the principal lacks the required role
var ErrForbidden = errors.New("user does not have the required role", errors.CategoryAuthz).
	WithTextCode("FORBIDDEN")

// ErrMismatchedHashAndPassword is the hasher-level mismatch error
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH")

// ErrNoEmptyString rejects empty plaintext passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
