package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

const claimsKey = "auth_claims"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.TokenClaims, error)
}

// TokenGuard validates the bearer token and stores its claims on the context.
func TokenGuard(verifier TokenVerifier) Guard {
	return Guard{
		Name: "token",
		Check: func(c echo.Context) Decision {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return Deny(http.StatusUnauthorized, "unauthorized access",
					fmt.Errorf("%w: missing authorization header", domain.ErrUnauthorized))
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return Deny(http.StatusUnauthorized, "unauthorized access",
					fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthorized))
			}

			claims, err := verifier.VerifyToken(parts[1])
			if err != nil {
				return Deny(http.StatusUnauthorized, "unauthorized access", err)
			}

			c.Set(claimsKey, claims)
			return Allow()
		},
	}
}

// Auth validates the JWT and injects claims into context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return Chain(TokenGuard(verifier))
}

// ClaimsFrom returns the claims stored by TokenGuard.
func ClaimsFrom(c echo.Context) (*domain.TokenClaims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.TokenClaims)
	return claims, ok && claims != nil
}
