package auth

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// HTTPController binds the auth core's operations to plain fiber handlers.
// It only parses payloads and maps errors; every rule lives in the core.
type HTTPController struct {
	core   *Service
	logger Logger
	Debug  bool
}

// NewHTTPController creates the controller for the given core
func NewHTTPController(core *Service) *HTTPController {
	return &HTTPController{
		core:   core,
		logger: defLogger{},
	}
}

func (h *HTTPController) WithLogger(logger Logger) *HTTPController {
	h.logger = logger
	return h
}

// RegisterRoutes mounts the auth endpoints on the app
func (h *HTTPController) RegisterRoutes(app *fiber.App) {
	grp := app.Group("/auth")
	grp.Post("/signup", h.SignUp)
	grp.Post("/signin", h.SignIn)
	grp.Post("/signout", h.SignOut)
	grp.Post("/refresh", h.Refresh)
	grp.Post("/verify-email", h.VerifyEmail)
	grp.Post("/password-reset/request", h.RequestPasswordReset)
	grp.Post("/password-reset", h.ResetPassword)
	grp.Put("/password", h.UpdatePassword)
}

// SignInPayload is the sign-in request body
type SignInPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p SignInPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// SignOutPayload carries the token pair to revoke
type SignOutPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Validate will validate the payload
func (p SignOutPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.AccessToken, validation.Required),
		validation.Field(&p.RefreshToken, validation.Required),
	)
}

// RefreshPayload carries the refresh token
type RefreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate will validate the payload
func (p RefreshPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RefreshToken, validation.Required),
	)
}

// PasswordResetRequestPayload asks for a reset link
type PasswordResetRequestPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (p PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ResetPasswordPayload consumes a reset token
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
	)
}

// UpdatePasswordPayload changes the current principal's password
type UpdatePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate will validate the payload
func (p UpdatePasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CurrentPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

func (h *HTTPController) SignUp(c *fiber.Ctx) error {
	var payload SignUpRequest
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed sign-up payload"))
	}

	info, err := h.core.SignUp(h.requestContext(c), payload)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(info)
}

func (h *HTTPController) SignIn(c *fiber.Ctx) error {
	var payload SignInPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed sign-in payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid sign-in payload"))
	}

	info, err := h.core.SignIn(h.requestContext(c), payload.Email, payload.Password)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(info)
}

func (h *HTTPController) SignOut(c *fiber.Ctx) error {
	var payload SignOutPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed sign-out payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid sign-out payload"))
	}

	if err := h.core.SignOut(h.requestContext(c), TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPController) Refresh(c *fiber.Ctx) error {
	var payload RefreshPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed refresh payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid refresh payload"))
	}

	tokens, err := h.core.RefreshAccessToken(h.requestContext(c), payload.RefreshToken)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(tokens)
}

func (h *HTTPController) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return h.renderError(c, errors.New("missing verification token", errors.CategoryBadInput))
	}

	if err := h.core.VerifyEmail(h.requestContext(c), token); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPController) RequestPasswordReset(c *fiber.Ctx) error {
	var payload PasswordResetRequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed reset request payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid reset request payload"))
	}

	if err := h.core.SendPasswordResetLink(h.requestContext(c), payload.Email); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *HTTPController) ResetPassword(c *fiber.Ctx) error {
	var payload ResetPasswordPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed reset payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid reset payload"))
	}

	if err := h.core.ResetPassword(h.requestContext(c), payload.Token, payload.Password); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPController) UpdatePassword(c *fiber.Ctx) error {
	var payload UpdatePasswordPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "malformed password payload"))
	}
	if err := payload.Validate(); err != nil {
		return h.renderError(c, errors.Wrap(err, errors.CategoryValidation, "invalid password payload"))
	}

	ctx, _, err := h.core.Authorize(h.requestContext(c), c.Get(fiber.HeaderAuthorization), "", RoleRequirement{})
	if err != nil {
		return h.renderError(c, err)
	}

	if err := h.core.UpdatePassword(ctx, payload.CurrentPassword, payload.NewPassword); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPController) requestContext(c *fiber.Ctx) context.Context {
	ctx, _ := EnsureRequestID(c.UserContext())
	return ctx
}

func (h *HTTPController) renderError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	if h.Debug {
		fmt.Println("================")
		fmt.Println(print.MaybePrettyJSON(richErr))
		fmt.Println("================")
	}

	return c.Status(httpStatusFor(richErr)).JSON(fiber.Map{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}
