package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmail(t *testing.T) {
	t.Run("flips the account to verified", func(t *testing.T) {
		h := newTestHarness()
		h.signUpCustomer(t, "maya@market.test", "hunter22!")

		token := tokenFromMailBody(t, h.mailer.last(t).Body)

		require.NoError(t, h.svc.VerifyEmail(context.Background(), token))
		assert.True(t, h.storedUser(t, "maya@market.test").Verified)
	})

	t.Run("verifying twice conflicts", func(t *testing.T) {
		h := newTestHarness()
		h.signUpCustomer(t, "maya@market.test", "hunter22!")

		token := tokenFromMailBody(t, h.mailer.last(t).Body)

		require.NoError(t, h.svc.VerifyEmail(context.Background(), token))

		err := h.svc.VerifyEmail(context.Background(), token)
		require.Error(t, err)
		assertTextCode(t, err, "ALREADY_VERIFIED")
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		h := newTestHarness()

		err := h.svc.VerifyEmail(context.Background(), "garbage")
		require.Error(t, err)
		assertCategory(t, err, errors.CategoryAuth)
	})

	t.Run("rejects an expired verification token", func(t *testing.T) {
		h := newTestHarness()
		h.signUpCustomer(t, "maya@market.test", "hunter22!")

		token := tokenFromMailBody(t, h.mailer.last(t).Body)

		h.clock.Advance(49 * time.Hour)

		err := h.svc.VerifyEmail(context.Background(), token)
		require.Error(t, err)
		assertCategory(t, err, errors.CategoryAuth)
		assert.False(t, h.storedUser(t, "maya@market.test").Verified)
	})

	t.Run("rejects a token for a deleted account", func(t *testing.T) {
		h := newTestHarness()
		h.signUpCustomer(t, "maya@market.test", "hunter22!")

		token := tokenFromMailBody(t, h.mailer.last(t).Body)

		h.store.mu.Lock()
		delete(h.store.users, "maya@market.test")
		h.store.mu.Unlock()

		err := h.svc.VerifyEmail(context.Background(), token)
		require.Error(t, err)
		assertTextCode(t, err, "USER_NOT_FOUND")
	})
}
