package auth_test

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/fouad-abdeen/sustainable-market-auth"
	"github.com/google/uuid"
)

// testClock is a hand-cranked time source for deterministic expiry tests
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Unix(1700000000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// memStore is an in-memory UserStore. It hands out copies so tests behave
// like a real directory: mutations only stick after Update.
type memStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*auth.User{}}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrUserNotFound.Clone()
	}
	return copyUser(user), nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == id {
			return copyUser(user), nil
		}
	}
	return nil, auth.ErrUserNotFound.Clone()
}

func (s *memStore) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.NormalizeEmail()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = auth.RoleCustomer
	}

	s.users[user.Email] = copyUser(user)
	return copyUser(user), nil
}

func (s *memStore) Update(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for email, existing := range s.users {
		if existing.ID == user.ID {
			if email != user.Email {
				delete(s.users, email)
			}
			s.users[user.Email] = copyUser(user)
			return nil
		}
	}
	return auth.ErrUserNotFound.Clone()
}

func copyUser(u *auth.User) *auth.User {
	cp := *u
	cp.TokensBlocklist = append([]auth.BlockedToken(nil), u.TokensBlocklist...)
	return &cp
}

type sentMail struct {
	To      auth.Recipient
	Subject string
	Body    string
}

// fakeMailer records outbound messages and can be told to fail
type fakeMailer struct {
	mu       sync.Mutex
	sendErr  error
	messages []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to auth.Recipient, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.messages...)
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	msgs := m.sent()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

// fakeRenderer embeds the callback URL in the body so tests can pull the
// single-purpose token back out.
type fakeRenderer struct{}

func (fakeRenderer) Render(kind auth.MailTemplate, binding map[string]any) (string, error) {
	target, _ := binding["call_to_action_url"].(string)
	return string(kind) + "|" + target, nil
}

func tokenFromMailBody(t *testing.T, body string) string {
	t.Helper()

	parts := strings.SplitN(body, "|", 2)
	require.Len(t, parts, 2)

	parsed, err := url.Parse(parts[1])
	require.NoError(t, err)

	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

func testConfig() *auth.SimpleConfig {
	cfg := auth.DefaultConfig()
	cfg.SigningKey = strings.Repeat("s3cret-k", 4)
	cfg.EmailVerificationURL = "https://market.test/verify-email"
	cfg.PasswordResetURL = "https://market.test/reset-password"
	return cfg
}

type testHarness struct {
	svc    *auth.Service
	store  *memStore
	mailer *fakeMailer
	clock  *testClock
}

func newTestHarness() *testHarness {
	store := newMemStore()
	mailer := &fakeMailer{}
	clock := newTestClock()

	svc := auth.NewService(store, mailer, fakeRenderer{}, testConfig()).
		WithClock(clock.Now)

	return &testHarness{svc: svc, store: store, mailer: mailer, clock: clock}
}

func (h *testHarness) signUpCustomer(t *testing.T, email, password string) *auth.AuthInfo {
	t.Helper()

	info, err := h.svc.SignUp(context.Background(), auth.SignUpRequest{
		Email:     email,
		Password:  password,
		Role:      auth.RoleCustomer,
		FirstName: "Maya",
		LastName:  "Haddad",
	})
	require.NoError(t, err)
	return info
}

func (h *testHarness) verifyUser(t *testing.T, email string) {
	t.Helper()

	user, err := h.store.FindByEmail(context.Background(), email)
	require.NoError(t, err)

	user.Verified = true
	require.NoError(t, h.store.Update(context.Background(), user))
}

func (h *testHarness) storedUser(t *testing.T, email string) *auth.User {
	t.Helper()

	user, err := h.store.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// stubTokenService stands in for a custom codec installed by a host
type stubTokenService struct{}

func (*stubTokenService) Issue(*auth.AuthClaims, time.Duration) (string, error) {
	return "stub-token", nil
}

func (*stubTokenService) Validate(string) (*auth.AuthClaims, error) {
	return &auth.AuthClaims{}, nil
}

func assertTextCode(t *testing.T, err error, textCode string) {
	t.Helper()

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr), "expected a rich error, got %v", err)
	assert.Equal(t, textCode, richErr.TextCode)
}

func assertCategory(t *testing.T, err error, category any) {
	t.Helper()

	var richErr *errors.Error
	require.True(t, errors.As(err, &richErr), "expected a rich error, got %v", err)
	assert.Equal(t, category, richErr.Category)
}
