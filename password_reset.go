package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// SendPasswordResetLink issues a single-purpose reset token and mails the
// reset callback to the account. Only verified accounts may request resets.
func (s *Service) SendPasswordResetLink(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound.Clone()
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if !user.Verified {
		return ErrNotVerified.Clone().
			WithMetadata(map[string]any{"email": email})
	}

	return s.sendCallbackMail(ctx, user, MailTemplatePasswordReset)
}

// ResetPassword consumes a reset token and installs a new password. The
// token is blocklisted on first use, and the password epoch moves forward
// so every access/refresh token issued before this moment becomes invalid.
// That is how "log out everywhere" works without enumerating prior tokens.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "invalid reset token")
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(claims.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound.Clone()
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if !user.Verified {
		return ErrNotVerified.Clone().
			WithMetadata(map[string]any{"email": user.Email})
	}

	if user.IsTokenBlocked(token) {
		return ErrTokenReused.Clone()
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	s.logger.Info("resetting password", "user_id", user.ID.String())

	now := s.now()
	user.PasswordHash = hash
	user.PasswordUpdatedAt = &now
	user.BlockToken(token, claims.Expires())

	if err := s.store.Update(ctx, user); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist password reset")
	}

	return nil
}

// UpdatePassword changes the password of the principal already on the
// request context, gated by their current password instead of a token.
func (s *Service) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	user, ok := PrincipalFromContext(ctx)
	if !ok {
		return ErrUnauthorized.Clone()
	}

	if err := ComparePasswordAndHash(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials.Clone()
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	s.logger.Info("updating password", "user_id", user.ID.String())

	now := s.now()
	user.PasswordHash = hash
	user.PasswordUpdatedAt = &now

	if err := s.store.Update(ctx, user); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist password change")
	}

	return nil
}
