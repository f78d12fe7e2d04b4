package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/fouad-abdeen/sustainable-market-auth"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	clock := newTestClock()
	signingKey := []byte(strings.Repeat("k", 32))
	svc := auth.NewTokenService(signingKey, "sustainable-market", nil).WithClock(clock.Now)

	t.Run("round trips the claim set", func(t *testing.T) {
		signedAt := jwt.NewNumericDate(clock.Now())
		raw, err := svc.Issue(&auth.AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			RequestID:        "req-1",
			UID:              "user-1",
			Email:            "shopper@market.test",
			SignedAt:         signedAt,
		}, 15*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, raw)

		claims, err := svc.Validate(raw)
		require.NoError(t, err)

		assert.Equal(t, "user-1", claims.IdentityID())
		assert.Equal(t, "req-1", claims.RequestID)
		assert.Equal(t, "shopper@market.test", claims.Email)
		assert.Equal(t, "sustainable-market", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
		assert.Equal(t, clock.Now().Add(15*time.Minute).Unix(), claims.Expires().Unix())

		got, ok := claims.SignedAtTime()
		require.True(t, ok)
		assert.Equal(t, signedAt.Unix(), got.Unix())
	})

	t.Run("omitted signed_at stays absent", func(t *testing.T) {
		raw, err := svc.Issue(&auth.AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
			Email:            "shopper@market.test",
		}, time.Hour)
		require.NoError(t, err)

		claims, err := svc.Validate(raw)
		require.NoError(t, err)

		_, ok := claims.SignedAtTime()
		assert.False(t, ok)
	})

	t.Run("rejects nil claims", func(t *testing.T) {
		_, err := svc.Issue(nil, time.Minute)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive TTL", func(t *testing.T) {
		_, err := svc.Issue(&auth.AuthClaims{}, 0)
		assert.Error(t, err)
	})
}

func TestTokenServiceValidateFailures(t *testing.T) {
	clock := newTestClock()
	signingKey := []byte(strings.Repeat("k", 32))
	svc := auth.NewTokenService(signingKey, "sustainable-market", nil).WithClock(clock.Now)

	issue := func(t *testing.T, ttl time.Duration) string {
		t.Helper()
		raw, err := svc.Issue(&auth.AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			Email:            "shopper@market.test",
		}, ttl)
		require.NoError(t, err)
		return raw
	}

	t.Run("expired token", func(t *testing.T) {
		raw := issue(t, time.Minute)

		clock.Advance(2 * time.Minute)
		defer clock.Advance(-2 * time.Minute)

		_, err := svc.Validate(raw)
		require.Error(t, err)
		assert.True(t, auth.IsTokenExpiredError(err))
		assertTextCode(t, err, "TOKEN_EXPIRED")
	})

	t.Run("tampered token", func(t *testing.T) {
		raw := issue(t, time.Hour)

		_, err := svc.Validate(raw[:len(raw)-3] + "xxx")
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
		assertTextCode(t, err, "TOKEN_MALFORMED")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		raw := issue(t, time.Hour)

		other := auth.NewTokenService([]byte(strings.Repeat("x", 32)), "sustainable-market", nil).
			WithClock(clock.Now)

		_, err := other.Validate(raw)
		require.Error(t, err)
		assertTextCode(t, err, "TOKEN_MALFORMED")
	})

	t.Run("wrong issuer", func(t *testing.T) {
		raw := issue(t, time.Hour)

		other := auth.NewTokenService(signingKey, "someone-else", nil).WithClock(clock.Now)

		_, err := other.Validate(raw)
		require.Error(t, err)
		assertTextCode(t, err, "TOKEN_MALFORMED")
	})
}
