package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// Operation identifies the protected operation being gated. Passing it
// explicitly replaces any URL sniffing: the sign-out carve-out for
// unverified users hangs off this identifier.
type Operation string

const (
	// OpSignOut lets unverified users revoke their own tokens
	OpSignOut Operation = "auth.sign_out"
)

// RoleRequirement is the role gate for a protected operation. An empty
// Roles slice admits any authenticated principal. Disclaimer, when set, is
// surfaced verbatim on role mismatch.
type RoleRequirement struct {
	Roles      []UserRole
	Disclaimer string
}

// Authorize is the gate in front of every protected operation. It checks
// the bearer token structurally, then authoritatively (directory resolve,
// blocklist, password epoch), applies the verified-account and role gates,
// and returns a context carrying the resolved principal. This is the only
// path that writes the principal into the request context.
func (s *Service) Authorize(ctx context.Context, authorization string, op Operation, req RoleRequirement) (context.Context, *User, error) {
	token := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if token == "" {
		return ctx, nil, ErrUnauthorized.Clone()
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return ctx, nil, errors.Wrap(err, ErrUnauthorized.Category, ErrUnauthorized.Message).
			WithTextCode(ErrUnauthorized.TextCode)
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(claims.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return ctx, nil, ErrUnauthorized.Clone()
		}
		return ctx, nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve token identity")
	}

	if tokenPredatesPasswordChange(claims, user) || user.IsTokenBlocked(token) {
		return ctx, nil, ErrTokenRevoked.Clone()
	}

	if !user.Verified && op != OpSignOut {
		return ctx, nil, ErrNotVerified.Clone().
			WithMetadata(map[string]any{"email": user.Email})
	}

	if len(req.Roles) > 0 && !user.Role.OneOf(req.Roles) {
		forbidden := ErrForbidden.Clone()
		if req.Disclaimer != "" {
			forbidden.Message = req.Disclaimer
		}
		return ctx, nil, forbidden
	}

	return WithPrincipal(ctx, user), user, nil
}
