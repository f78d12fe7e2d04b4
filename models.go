package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleCustomer can browse the market and manage their own cart and orders
	RoleCustomer UserRole = "CUSTOMER"
	// RoleSeller can manage their own items and storefront
	RoleSeller UserRole = "SELLER"
	// RoleAdmin can manage users and the whole catalog
	RoleAdmin UserRole = "ADMIN"
)

// BlockedToken is a blocklist entry: a token that must be rejected despite
// structural validity, kept until its own expiry passes.
type BlockedToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// User is the identity record the auth core operates on
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role              UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName         string         `bun:"first_name" json:"first_name,omitempty"`
	LastName          string         `bun:"last_name" json:"last_name,omitempty"`
	BusinessName      string         `bun:"business_name" json:"business_name,omitempty"`
	Email             string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone             string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash      string         `bun:"password_hash" json:"-"`
	Verified          bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	PasswordUpdatedAt *time.Time     `bun:"password_updated_at,nullzero" json:"password_updated_at,omitempty"`
	TokensBlocklist   []BlockedToken `bun:"tokens_blocklist,type:jsonb" json:"-"`
	CreatedAt         *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// DisplayName picks the recipient-facing name for outbound notifications:
// sellers go by their business name, everyone else by first name.
func (u *User) DisplayName() string {
	if u.Role == RoleSeller && u.BusinessName != "" {
		return u.BusinessName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// NormalizeEmail lowercases the email in place and returns the user
func (u *User) NormalizeEmail() *User {
	u.Email = NormalizeEmail(u.Email)
	return u
}

// IsTokenBlocked reports whether the exact token string is on the blocklist
func (u *User) IsTokenBlocked(token string) bool {
	for _, entry := range u.TokensBlocklist {
		if entry.Token == token {
			return true
		}
	}
	return false
}

// BlockToken appends a token to the blocklist with its embedded expiry
func (u *User) BlockToken(token string, expiresAt time.Time) *User {
	u.TokensBlocklist = append(u.TokensBlocklist, BlockedToken{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
	return u
}

// PruneBlocklist drops entries whose expiry already passed. It reports
// whether anything was removed so callers can skip a redundant write.
func (u *User) PruneBlocklist(now time.Time) bool {
	cutoff := now.Unix()
	kept := u.TokensBlocklist[:0]
	for _, entry := range u.TokensBlocklist {
		if entry.ExpiresAt > cutoff {
			kept = append(kept, entry)
		}
	}
	changed := len(kept) != len(u.TokensBlocklist)
	u.TokensBlocklist = kept
	return changed
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// every stored record goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserInfo is the caller-facing identity summary
type UserInfo struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// TokenPair holds the access/refresh tokens returned after sign-up,
// sign-in, and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthInfo is the result of a successful sign-up or sign-in
type AuthInfo struct {
	UserInfo UserInfo  `json:"user_info"`
	Tokens   TokenPair `json:"tokens"`
}

func (u *User) toUserInfo() UserInfo {
	return UserInfo{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  u.Role,
	}
}
