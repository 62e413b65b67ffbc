package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

const identityKey = "identity"

// Identity resolves the caller from the session cookie or the Authorization
// header and stores the result in the echo context. Requests with no valid
// credentials stop here with 401; resolution faults go to the error handler.
func Identity(auth ports.AuthService, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds := ports.RequestCredentials{
				Authorization: c.Request().Header.Get(echo.HeaderAuthorization),
			}
			if cookie, err := c.Cookie(cookieName); err == nil {
				creds.SessionToken = cookie.Value
			}

			id, err := auth.ResolveIdentity(c.Request().Context(), creds)
			if errors.Is(err, domain.ErrUnauthorized) {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="cogere"`)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if err != nil {
				return err
			}

			c.Set(identityKey, id)
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Identity, or nil.
func IdentityFrom(c echo.Context) domain.Identity {
	id, _ := c.Get(identityKey).(domain.Identity)
	return id
}

// SetIdentity stores id in c. Handlers never call this; it exists for tests
// and for routes that resolve identity some other way.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}
