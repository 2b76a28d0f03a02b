package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyline-residence/building-api/internal/api/metrics"
)

// Decision is the outcome of a single guard.
//
// A denial with a non-zero Status is rendered as an HTTP error carrying Reason.
// A denial with Status 0 means the guard itself failed; Err is returned as is
// and the central error handler decides the response.
type Decision struct {
	Allow  bool
	Status int
	Reason string
	Err    error
}

func Allow() Decision { return Decision{Allow: true} }

func Deny(status int, reason string, err error) Decision {
	return Decision{Status: status, Reason: reason, Err: err}
}

func Fail(err error) Decision { return Decision{Err: err} }

// Guard is a named request predicate. Name labels denial metrics.
type Guard struct {
	Name  string
	Check func(c echo.Context) Decision
}

// Chain runs guards in order and stops at the first denial. Later guards may
// rely on values set by earlier ones, so order matters.
func Chain(guards ...Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, g := range guards {
				d := g.Check(c)
				if d.Allow {
					continue
				}
				if d.Status == 0 {
					metrics.GuardDenialsTotal.WithLabelValues(g.Name, "error").Inc()
					return d.Err
				}
				metrics.GuardDenialsTotal.WithLabelValues(g.Name, strconv.Itoa(d.Status)).Inc()
				he := echo.NewHTTPError(d.Status, d.Reason)
				if d.Err != nil {
					he = he.SetInternal(d.Err)
				}
				return he
			}
			return next(c)
		}
	}
}
