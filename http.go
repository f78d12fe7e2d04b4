package auth

import (
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteGuard adapts the Authorize gate to router middleware. It reads the
// bearer header, runs the gate, and propagates the principal-bearing
// context to downstream handlers.
type RouteGuard struct {
	core         *Service
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

// NewRouteGuard creates a guard around the given auth core
func NewRouteGuard(core *Service) *RouteGuard {
	g := &RouteGuard{
		core:   core,
		Logger: defLogger{},
	}
	g.ErrorHandler = g.defaultErrHandler
	return g
}

// Protected gates a route on the given operation and role requirement
func (g *RouteGuard) Protected(op Operation, req RoleRequirement) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			seeded, requestID := EnsureRequestID(c.Context())

			ctx, _, err := g.core.Authorize(seeded, c.Header("Authorization"), op, req)
			if err != nil {
				g.Logger.Info("authorization rejected",
					"request_id", requestID,
					"path", c.Path(),
					"error", err.Error(),
				)
				return g.ErrorHandler(c, err)
			}

			c.SetContext(ctx)
			return c.Next()
		}
	}
}

func (g *RouteGuard) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	return c.JSON(httpStatusFor(richErr), map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// httpStatusFor maps the error taxonomy onto HTTP statuses: 401 for auth
// failures, 403 for authorization, 404/409 for directory conflicts, 400
// for bad payloads.
func httpStatusFor(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
