package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/core/domain"
)

// RoleLookup reads an identity's stored role.
type RoleLookup interface {
	HasRole(ctx context.Context, email string, role domain.Role) (bool, error)
}

// RoleGuard allows the request only when the caller's stored role equals
// role. The role is read on every request; the token carries none. Must run
// after TokenGuard.
func RoleGuard(lookup RoleLookup, role domain.Role) Guard {
	return Guard{
		Name: "role:" + string(role),
		Check: func(c echo.Context) Decision {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "unauthorized access",
					fmt.Errorf("%w: no verified claims", domain.ErrUnauthorized))
			}

			has, err := lookup.HasRole(c.Request().Context(), claims.Email, role)
			if err != nil {
				return Fail(fmt.Errorf("role lookup: %w", err))
			}
			if !has {
				return Deny(http.StatusForbidden, "forbidden access",
					fmt.Errorf("%w: %s is not %s", domain.ErrForbidden, claims.Email, role))
			}
			return Allow()
		},
	}
}

// RBAC enforces role-based access control.
func RBAC(lookup RoleLookup, role domain.Role) echo.MiddlewareFunc {
	return Chain(RoleGuard(lookup, role))
}

// SelfGuard allows the request only when the path parameter param equals the
// token email. Must run after TokenGuard.
func SelfGuard(param string) Guard {
	return Guard{
		Name: "self",
		Check: func(c echo.Context) Decision {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return Deny(http.StatusUnauthorized, "unauthorized access",
					fmt.Errorf("%w: no verified claims", domain.ErrUnauthorized))
			}
			if PathEmail(c, param) != claims.Email {
				return Deny(http.StatusForbidden, "forbidden access",
					fmt.Errorf("%w: path email does not match token", domain.ErrForbidden))
			}
			return Allow()
		},
	}
}

// PathEmail returns the unescaped path parameter name.
func PathEmail(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
