package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// Service orchestrates the auth flows: sign-up, sign-in, sign-out, token
// refresh, authorization gating, email verification, and the password
// lifecycle. It owns no storage; the UserStore does.
type Service struct {
	store    UserStore
	mailer   Mailer
	renderer MailRenderer
	tokens   TokenService
	cfg      Config
	logger   Logger
	now      func() time.Time
}

// NewService wires a Service from its collaborators
func NewService(store UserStore, mailer Mailer, renderer MailRenderer, cfg Config) *Service {
	return &Service{
		store:    store,
		mailer:   mailer,
		renderer: renderer,
		cfg:      cfg,
		logger:   defLogger{},
		now:      time.Now,
		tokens:   NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), defLogger{}),
	}
}

// WithLogger sets the logger on the service and, when the codec supports
// it, the codec as well. The codec itself is left in place so an earlier
// WithTokenService or WithClock survives.
func (s *Service) WithLogger(logger Logger) *Service {
	if logger == nil {
		return s
	}
	s.logger = logger
	if impl, ok := s.tokens.(*TokenServiceImpl); ok {
		impl.WithLogger(logger)
	}
	return s
}

// WithTokenService sets a custom token codec
func (s *Service) WithTokenService(tokens TokenService) *Service {
	s.tokens = tokens
	return s
}

// WithClock overrides the time source for the service and, when the codec
// supports it, the codec as well.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now == nil {
		return s
	}
	s.now = now
	if impl, ok := s.tokens.(*TokenServiceImpl); ok {
		impl.WithClock(now)
	}
	return s
}

// TokenService returns the token codec used by this Service
func (s *Service) TokenService() TokenService {
	return s.tokens
}

// SignUpRequest carries the attributes of a new account
type SignUpRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Role         UserRole `json:"role"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	BusinessName string   `json:"business_name"`
	Phone        string   `json:"phone"`
}

// Validate will validate the payload
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Role, validation.Required, validation.By(validateRole)),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.BusinessName, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(validatePhone)),
	)
}

func validateRole(value any) error {
	role, _ := value.(UserRole)
	if !role.IsValid() {
		return fmt.Errorf("must be one of %v", GetAllRoles())
	}
	return nil
}

// validatePhone accepts empty values; non-empty numbers must be E.164
func validatePhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return fmt.Errorf("must be an E.164 phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("must be a valid phone number")
	}
	return nil
}

// SignUp creates a new account, dispatches the email-verification message,
// and returns the user info with a fresh token pair.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid sign-up payload")
	}
	if req.Role == RoleSeller && req.BusinessName == "" {
		return nil, errors.New("sellers must provide a business name", errors.CategoryValidation).
			WithTextCode("BUSINESS_NAME_REQUIRED")
	}

	email := NormalizeEmail(req.Email)
	s.logger.Info("attempting to sign up user", "email", email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists.Clone().
			WithMetadata(map[string]any{"email": email})
	} else if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check for existing user")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user, err := s.store.Create(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}

	if err := s.sendCallbackMail(ctx, user, MailTemplateEmailVerification); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthInfo{UserInfo: user.toUserInfo(), Tokens: *tokens}, nil
}

// SignIn authenticates an email/password pair and returns fresh tokens.
// The blocklist is pruned here, on read, rather than by a background sweep.
// Unverified users may sign in; verification gates nothing at this layer.
func (s *Service) SignIn(ctx context.Context, email, password string) (*AuthInfo, error) {
	email = NormalizeEmail(email)
	s.logger.Info("attempting to sign in user", "email", email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if user.PruneBlocklist(s.now()) {
		if err := s.store.Update(ctx, user); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to prune token blocklist")
		}
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials.Clone()
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthInfo{UserInfo: user.toUserInfo(), Tokens: *tokens}, nil
}

// SignOut revokes a token pair by appending both tokens to the owning
// user's blocklist. Blocklisting does not affect a token's structural
// validity, so a repeated sign-out with the same pair only fails once the
// tokens have naturally expired.
func (s *Service) SignOut(ctx context.Context, tokens TokenPair) error {
	accessClaims, err := s.tokens.Validate(tokens.AccessToken)
	if err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "failed to verify access token")
	}

	refreshClaims, err := s.tokens.Validate(tokens.RefreshToken)
	if err != nil {
		return errors.Wrap(err, errors.CategoryAuth, "failed to verify refresh token")
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(accessClaims.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrUserNotFound.Clone()
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	s.logger.Info("blocklisting token pair", "user_id", user.ID.String())

	user.BlockToken(tokens.AccessToken, accessClaims.Expires())
	user.BlockToken(tokens.RefreshToken, refreshClaims.Expires())

	if err := s.store.Update(ctx, user); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist token blocklist")
	}

	return nil
}

// RefreshAccessToken mints a new access token against a refresh token. The
// refresh token is checked against the blocklist and the password epoch, so
// it dies with a password reset like any other token.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "failed to verify refresh token")
	}

	user, err := s.store.FindByEmail(ctx, NormalizeEmail(claims.Email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrTokenRevoked.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up user")
	}

	if user.IsTokenBlocked(refreshToken) || tokenPredatesPasswordChange(claims, user) {
		return nil, ErrTokenRevoked.Clone()
	}

	_, requestID := EnsureRequestID(ctx)

	accessToken, err := s.tokens.Issue(&AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: claims.IdentityID()},
		RequestID:        requestID,
		UID:              claims.IdentityID(),
		Email:            claims.Email,
		SignedAt:         jwt.NewNumericDate(s.now()),
	}, s.cfg.GetAccessTokenTTL())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	_, requestID := EnsureRequestID(ctx)
	signedAt := jwt.NewNumericDate(s.now())

	issue := func(ttl time.Duration) (string, error) {
		return s.tokens.Issue(&AuthClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String()},
			RequestID:        requestID,
			UID:              user.ID.String(),
			Email:            user.Email,
			SignedAt:         signedAt,
		}, ttl)
	}

	accessToken, err := issue(s.cfg.GetAccessTokenTTL())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue access token")
	}

	refreshToken, err := issue(s.cfg.GetRefreshTokenTTL())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue refresh token")
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// sendCallbackMail issues a single-purpose token for the user and delivers
// the matching templated message with a callback URL embedding the token.
func (s *Service) sendCallbackMail(ctx context.Context, user *User, kind MailTemplate) error {
	_, requestID := EnsureRequestID(ctx)

	ttl := s.cfg.GetEmailVerificationTokenTTL()
	baseURL := s.cfg.GetEmailVerificationURL()
	subject := SubjectEmailVerification
	if kind == MailTemplatePasswordReset {
		ttl = s.cfg.GetPasswordResetTokenTTL()
		baseURL = s.cfg.GetPasswordResetURL()
		subject = SubjectPasswordReset
	}

	token, err := s.tokens.Issue(&AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String()},
		RequestID:        requestID,
		UID:              user.ID.String(),
		Email:            user.Email,
	}, ttl)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to issue callback token")
	}

	name := user.DisplayName()
	body, err := s.renderer.Render(kind, map[string]any{
		"user_name":          name,
		"call_to_action_url": fmt.Sprintf("%s?token=%s", baseURL, url.QueryEscape(token)),
	})
	if err != nil {
		return err
	}

	s.logger.Info("dispatching notification", "kind", string(kind), "email", user.Email)

	if err := s.mailer.Send(ctx, Recipient{Name: name, Email: user.Email}, subject, body); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to deliver notification").
			WithMetadata(map[string]any{"kind": string(kind)})
	}

	return nil
}

// tokenPredatesPasswordChange reports whether the token was signed before
// the user's last password change. Single-purpose tokens carry no SignedAt
// and are exempt from the epoch check.
func tokenPredatesPasswordChange(claims *AuthClaims, user *User) bool {
	signedAt, ok := claims.SignedAtTime()
	if !ok || user.PasswordUpdatedAt == nil {
		return false
	}
	return signedAt.Before(*user.PasswordUpdatedAt)
}
