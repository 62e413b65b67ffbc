package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cogere/artifact-host/internal/api/middleware"
	"github.com/cogere/artifact-host/internal/core/domain"
)

// currentIdentity returns the identity resolved by the Identity middleware.
// A missing identity means the route was registered without it, so the
// request is refused rather than treated as anonymous.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
