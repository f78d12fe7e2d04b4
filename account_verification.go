package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// VerifyEmail proves ownership of the address a verification token was
// sent to. A user flips to verified exactly once.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "invalid verification token")
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(claims.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound.Clone()
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if user.Verified {
		return ErrAlreadyVerified.Clone().
			WithMetadata(map[string]any{"email": user.Email})
	}

	s.logger.Info("verifying email address", "email", user.Email)

	user.Verified = true
	if err := s.store.Update(ctx, user); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist verification")
	}

	return nil
}
