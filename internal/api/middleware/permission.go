package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/service"
)

// RequirePermission rejects requests whose identity lacks p. It must run after
// Identity. Denials are audited like any other permission decision.
func RequirePermission(log zerolog.Logger, p domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := service.Authorize(log, IdentityFrom(c), p)
			switch {
			case errors.Is(err, domain.ErrUnauthorized):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case errors.Is(err, domain.ErrForbidden):
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			case err != nil:
				return err
			}
			return next(c)
		}
	}
}
