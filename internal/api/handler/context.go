package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/api/middleware"
	"github.com/skyline-residence/building-api/internal/core/domain"
)

// ctxClaims returns the verified token claims. Their absence means the route
// was registered without the token guard, so the request is rejected with 401.
func ctxClaims(c echo.Context) (*domain.TokenClaims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.Email == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
	}
	return claims, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
